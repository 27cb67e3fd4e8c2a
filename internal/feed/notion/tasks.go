package notion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/seen"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// MinInterval is the shortest allowed polling interval.
const MinInterval = 10 * time.Second

// Properties names the database columns that hold task fields. An empty
// Title means the database's title column.
type Properties struct {
	Title  string `mapstructure:"title" json:"title,omitempty"`
	Done   string `mapstructure:"done" json:"done,omitempty"`
	Status string `mapstructure:"status" json:"status,omitempty"`
	Due    string `mapstructure:"due" json:"due,omitempty"`
}

// DefaultProperties returns the default column names.
func DefaultProperties() Properties {
	return Properties{Done: "Done", Status: "Status", Due: "Due"}
}

func (p Properties) withDefaults() Properties {
	def := DefaultProperties()
	if p.Done == "" {
		p.Done = def.Done
	}
	if p.Status == "" {
		p.Status = def.Status
	}
	if p.Due == "" {
		p.Due = def.Due
	}
	return p
}

// Task is a normalized database row.
type Task struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Done    bool       `json:"done"`
	Status  string     `json:"status,omitempty"`
	Due     *time.Time `json:"due,omitempty"`
	Created time.Time  `json:"created"`
}

// Identity is the key under which the task is tracked as seen.
func (t Task) Identity() string {
	return seen.Identity(t.ID, t.URL, t.Title)
}

// ToTask maps a page onto a Task using props.
func ToTask(page Page, props Properties) Task {
	props = props.withDefaults()
	task := Task{
		ID:      page.ID,
		URL:     page.URL,
		Created: page.CreatedTime,
	}

	if name := titleProperty(page.Properties, props.Title); name != "" {
		prop := page.Properties[name]
		task.Title = plainText(prop.Title)
	}

	if prop, ok := page.Properties[props.Done]; ok && prop.Checkbox != nil {
		task.Done = *prop.Checkbox
	}

	if prop, ok := page.Properties[props.Status]; ok {
		switch {
		case prop.Select != nil:
			task.Status = prop.Select.Name
		case prop.Status != nil:
			task.Status = prop.Status.Name
		}
	}

	if prop, ok := page.Properties[props.Due]; ok && prop.Date != nil {
		if due, ok := parseDate(prop.Date.Start); ok {
			task.Due = &due
		}
	}

	return task
}

// titleProperty returns configured when set, otherwise the first
// title-typed property by name.
func titleProperty(properties map[string]Property, configured string) string {
	if configured != "" {
		return configured
	}
	names := make([]string, 0, len(properties))
	for name, prop := range properties {
		if prop.Type == "title" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortTasks orders dated tasks by due date ascending, followed by undated
// tasks ordered by title, case-insensitively.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Due != nil && b.Due != nil:
			return a.Due.Before(*b.Due)
		case a.Due != nil:
			return true
		case b.Due != nil:
			return false
		default:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	})
}

// Pending counts tasks that are not done.
func Pending(tasks []Task) int {
	n := 0
	for _, task := range tasks {
		if !task.Done {
			n++
		}
	}
	return n
}

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	DatabaseID    string
	Properties    Properties
	ShowCompleted bool
}

// Tracker turns a Notion database into a task list.
type Tracker struct {
	client        *Client
	databaseID    string
	props         Properties
	showCompleted bool
	log           *logger.Logger

	mu            sync.Mutex
	titleField    string
	statusType    string
	statusOptions []string
}

// NewTracker creates a Tracker over client.
func NewTracker(client *Client, cfg TrackerConfig, log *logger.Logger) *Tracker {
	props := cfg.Properties.withDefaults()
	return &Tracker{
		client:        client,
		databaseID:    cfg.DatabaseID,
		props:         props,
		showCompleted: cfg.ShowCompleted,
		log:           log.With("component", "notion"),
		titleField:    props.Title,
	}
}

// Fetch returns the sorted task list. Completed tasks are omitted unless
// ShowCompleted is set.
func (t *Tracker) Fetch(ctx context.Context) ([]Task, error) {
	pages, err := t.client.QueryDatabase(ctx, t.databaseID)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(pages))
	for _, page := range pages {
		if page.Archived {
			continue
		}
		t.rememberFields(page)
		task := ToTask(page, t.props)
		if task.Done && !t.showCompleted {
			continue
		}
		tasks = append(tasks, task)
	}

	SortTasks(tasks)
	return tasks, nil
}

// SetDone toggles the done checkbox of a task.
func (t *Tracker) SetDone(ctx context.Context, taskID string, done bool) error {
	_, err := t.client.UpdatePage(ctx, taskID, map[string]any{
		t.props.Done: map[string]any{"checkbox": done},
	})
	return err
}

// SetStatus sets the status column of a task. The payload follows the
// column's type, which is either "select" or Notion's "status". A select
// is cleared by an empty status; a status column cannot be cleared.
func (t *Tracker) SetStatus(ctx context.Context, taskID, status string) error {
	kind, err := t.statusKind(ctx)
	if err != nil {
		return err
	}

	var value any
	if status != "" {
		value = map[string]string{"name": status}
	} else if kind == "status" {
		return tberrors.NewValidationError(t.props.Status, "a status property cannot be cleared", nil)
	}
	_, err = t.client.UpdatePage(ctx, taskID, map[string]any{
		t.props.Status: map[string]any{kind: value},
	})
	return err
}

// StatusOptions returns the options of the status column in database
// order. The schema is read once and cached.
func (t *Tracker) StatusOptions(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	options := t.statusOptions
	t.mu.Unlock()
	if options != nil {
		return options, nil
	}
	if err := t.loadStatusSchema(ctx); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusOptions, nil
}

// NextStatus returns the option after current, wrapping around. An unknown
// current value yields the first option.
func NextStatus(options []string, current string) string {
	if len(options) == 0 {
		return ""
	}
	for i, option := range options {
		if strings.EqualFold(option, current) {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (t *Tracker) statusKind(ctx context.Context) (string, error) {
	t.mu.Lock()
	kind := t.statusType
	t.mu.Unlock()
	if kind != "" {
		return kind, nil
	}
	if err := t.loadStatusSchema(ctx); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusType, nil
}

func (t *Tracker) loadStatusSchema(ctx context.Context) error {
	db, err := t.client.RetrieveDatabase(ctx, t.databaseID)
	if err != nil {
		return err
	}
	schema, ok := db.Properties[t.props.Status]
	if !ok {
		return tberrors.NewValidationError(t.props.Status, "status property not found in database", nil)
	}
	if schema.Type != "select" && schema.Type != "status" {
		return tberrors.NewValidationError(t.props.Status, fmt.Sprintf("property is %s, want select or status", schema.Type), nil)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusType = schema.Type
	t.statusOptions = schema.OptionNames()
	if t.statusOptions == nil {
		t.statusOptions = []string{}
	}
	return nil
}

// Create adds a task with the given title.
func (t *Tracker) Create(ctx context.Context, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, errors.New("task title is empty")
	}

	field, err := t.resolveTitleField(ctx)
	if err != nil {
		return Task{}, err
	}

	page, err := t.client.CreatePage(ctx, t.databaseID, map[string]any{
		field: map[string]any{
			"title": []map[string]any{{"text": map[string]string{"content": title}}},
		},
	})
	if err != nil {
		return Task{}, err
	}
	return ToTask(*page, t.props), nil
}

// Check retrieves the database schema and reports which configured
// properties are missing or have the wrong type.
func (t *Tracker) Check(ctx context.Context) (*Database, []string, error) {
	db, err := t.client.RetrieveDatabase(ctx, t.databaseID)
	if err != nil {
		return nil, nil, err
	}

	var problems []string
	expect := func(name, kind string, alternatives ...string) {
		schema, ok := db.Properties[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing %s property %q", kind, name))
			return
		}
		for _, allowed := range append([]string{kind}, alternatives...) {
			if schema.Type == allowed {
				return
			}
		}
		problems = append(problems, fmt.Sprintf("property %q is %s, want %s", name, schema.Type, kind))
	}

	if t.props.Title != "" {
		expect(t.props.Title, "title")
	} else if !hasType(db.Properties, "title") {
		problems = append(problems, "database has no title property")
	}
	expect(t.props.Done, "checkbox")
	expect(t.props.Status, "select", "status")
	expect(t.props.Due, "date")

	return db, problems, nil
}

func hasType(props map[string]PropertySchema, kind string) bool {
	for _, schema := range props {
		if schema.Type == kind {
			return true
		}
	}
	return false
}

func (t *Tracker) rememberFields(page Page) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.titleField == "" {
		t.titleField = titleProperty(page.Properties, "")
	}
	if t.statusType == "" {
		if prop, ok := page.Properties[t.props.Status]; ok && (prop.Type == "select" || prop.Type == "status") {
			t.statusType = prop.Type
		}
	}
}

func (t *Tracker) resolveTitleField(ctx context.Context) (string, error) {
	t.mu.Lock()
	field := t.titleField
	t.mu.Unlock()
	if field != "" {
		return field, nil
	}

	db, err := t.client.RetrieveDatabase(ctx, t.databaseID)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(db.Properties))
	for name, schema := range db.Properties {
		if schema.Type == "title" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", errors.New("database has no title property")
	}
	sort.Strings(names)

	t.mu.Lock()
	t.titleField = names[0]
	t.mu.Unlock()
	return names[0], nil
}
