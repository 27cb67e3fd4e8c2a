package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

func page(id, title string, done bool, due string) map[string]any {
	props := map[string]any{
		"Name": map[string]any{"id": "title", "type": "title", "title": []map[string]any{{"plain_text": title}}},
		"Done": map[string]any{"id": "d", "type": "checkbox", "checkbox": done},
	}
	if due != "" {
		props["Due"] = map[string]any{"id": "due", "type": "date", "date": map[string]any{"start": due}}
	}
	return map[string]any{
		"object":       "page",
		"id":           id,
		"url":          "https://notion.so/" + id,
		"created_time": "2024-01-01T00:00:00.000Z",
		"properties":   props,
	}
}

type fakeNotion struct {
	t        *testing.T
	mu       sync.Mutex
	patches  []map[string]any
	creates  []map[string]any
	queries  int
	schemas  int
	pages    [][]map[string]any
	failWith int

	// statusType is the schema type of the Status column, rich_text when
	// empty.
	statusType string
}

func (f *fakeNotion) statusSchema() map[string]any {
	if f.statusType == "" {
		return map[string]any{"id": "s", "name": "Status", "type": "rich_text"}
	}
	options := []map[string]any{{"name": "Todo"}, {"name": "Doing"}, {"name": "Done"}}
	return map[string]any{
		"id":         "s",
		"name":       "Status",
		"type":       f.statusType,
		f.statusType: map[string]any{"options": options},
	}
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "Bearer secret", r.Header.Get("Authorization"))
	assert.Equal(f.t, APIVersion, r.Header.Get("Notion-Version"))

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		_, _ = w.Write([]byte(`{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`))
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/databases/db1/query":
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		sorts := body["sorts"].([]any)
		assert.Equal(f.t, "created_time", sorts[0].(map[string]any)["timestamp"])

		idx := f.queries
		f.queries++
		if idx > 0 {
			assert.Equal(f.t, "cursor-1", body["start_cursor"])
		}
		resp := map[string]any{"results": f.pages[idx], "has_more": idx+1 < len(f.pages)}
		if idx+1 < len(f.pages) {
			resp["next_cursor"] = "cursor-1"
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/databases/db1":
		f.schemas++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "db1",
			"title": []map[string]any{{"plain_text": "Tasks"}},
			"properties": map[string]any{
				"Name":   map[string]any{"id": "title", "name": "Name", "type": "title"},
				"Done":   map[string]any{"id": "d", "name": "Done", "type": "checkbox"},
				"Status": f.statusSchema(),
			},
		})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/v1/pages/"):
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		body["id"] = strings.TrimPrefix(r.URL.Path, "/v1/pages/")
		f.patches = append(f.patches, body)
		_ = json.NewEncoder(w).Encode(page(body["id"].(string), "patched", true, ""))
	case r.Method == http.MethodPost && r.URL.Path == "/v1/pages":
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.creates = append(f.creates, body)
		_ = json.NewEncoder(w).Encode(page("new-1", "Created", false, ""))
	default:
		http.NotFound(w, r)
	}
}

func newTestTracker(t *testing.T, fake *fakeNotion, cfg TrackerConfig) *Tracker {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{Token: "secret", BaseURL: server.URL, Rate: rate.Inf}, server.Client())
	cfg.DatabaseID = "db1"
	return NewTracker(client, cfg, logger.Nop())
}

func TestSortTasks(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	tasks := []Task{
		{Title: "zebra"},
		{Title: "later", Due: day(20)},
		{Title: "Apple"},
		{Title: "sooner", Due: day(2)},
		{Title: "banana"},
	}

	SortTasks(tasks)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"sooner", "later", "Apple", "banana", "zebra"}, titles)
}

func TestToTask(t *testing.T) {
	raw, err := json.Marshal(page("p1", "Write report", true, "2024-06-01"))
	require.NoError(t, err)

	var p Page
	require.NoError(t, json.Unmarshal(raw, &p))
	p.Properties["Status"] = Property{Type: "select", Select: &SelectOption{Name: "In progress"}}

	task := ToTask(p, Properties{})
	assert.Equal(t, "p1", task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.True(t, task.Done)
	assert.Equal(t, "In progress", task.Status)
	require.NotNil(t, task.Due)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *task.Due)

	custom := ToTask(p, Properties{Title: "Missing"})
	assert.Empty(t, custom.Title)
}

func TestPending(t *testing.T) {
	assert.Equal(t, 2, Pending([]Task{{Done: false}, {Done: true}, {Done: false}}))
	assert.Equal(t, 0, Pending(nil))
}

func TestTrackerFetchPaginatesAndHidesCompleted(t *testing.T) {
	fake := &fakeNotion{t: t, pages: [][]map[string]any{
		{page("a", "undated b", false, ""), page("b", "done", true, "2024-01-01")},
		{page("c", "dated", false, "2024-03-01"), page("d", "Undated A", false, "")},
	}}
	tracker := newTestTracker(t, fake, TrackerConfig{})

	tasks, err := tracker.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.queries)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"dated", "Undated A", "undated b"}, titles)
}

func TestTrackerShowCompleted(t *testing.T) {
	fake := &fakeNotion{t: t, pages: [][]map[string]any{
		{page("a", "open", false, ""), page("b", "done", true, "")},
	}}
	tracker := newTestTracker(t, fake, TrackerConfig{ShowCompleted: true})

	tasks, err := tracker.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 1, Pending(tasks))
}

func TestTrackerMutations(t *testing.T) {
	fake := &fakeNotion{t: t, statusType: "select"}
	tracker := newTestTracker(t, fake, TrackerConfig{})
	ctx := context.Background()

	require.NoError(t, tracker.SetDone(ctx, "p1", true))
	require.NoError(t, tracker.SetStatus(ctx, "p2", "Blocked"))

	require.Len(t, fake.patches, 2)
	assert.Equal(t, "p1", fake.patches[0]["id"])
	props := fake.patches[0]["properties"].(map[string]any)
	assert.Equal(t, true, props["Done"].(map[string]any)["checkbox"])

	status := fake.patches[1]["properties"].(map[string]any)["Status"].(map[string]any)
	assert.Equal(t, "Blocked", status["select"].(map[string]any)["name"])

	task, err := tracker.Create(ctx, "  Created  ")
	require.NoError(t, err)
	assert.Equal(t, "new-1", task.ID)

	require.Len(t, fake.creates, 1)
	parent := fake.creates[0]["parent"].(map[string]any)
	assert.Equal(t, "db1", parent["database_id"])
	_, ok := fake.creates[0]["properties"].(map[string]any)["Name"]
	assert.True(t, ok, "title discovered from the database schema")

	_, err = tracker.Create(ctx, "   ")
	assert.Error(t, err)
}

func TestTrackerSetStatusFollowsPropertyType(t *testing.T) {
	ctx := context.Background()

	t.Run("select", func(t *testing.T) {
		fake := &fakeNotion{t: t, statusType: "select"}
		tracker := newTestTracker(t, fake, TrackerConfig{})

		require.NoError(t, tracker.SetStatus(ctx, "p1", "Doing"))
		require.NoError(t, tracker.SetStatus(ctx, "p1", ""))

		require.Len(t, fake.patches, 2)
		set := fake.patches[0]["properties"].(map[string]any)["Status"].(map[string]any)
		assert.Equal(t, map[string]any{"select": map[string]any{"name": "Doing"}}, set)
		cleared := fake.patches[1]["properties"].(map[string]any)["Status"].(map[string]any)
		assert.Equal(t, map[string]any{"select": nil}, cleared)
		assert.Equal(t, 1, fake.schemas, "schema is read once")
	})

	t.Run("status", func(t *testing.T) {
		fake := &fakeNotion{t: t, statusType: "status"}
		tracker := newTestTracker(t, fake, TrackerConfig{})

		options, err := tracker.StatusOptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Todo", "Doing", "Done"}, options)

		require.NoError(t, tracker.SetStatus(ctx, "p1", "Doing"))
		require.Len(t, fake.patches, 1)
		set := fake.patches[0]["properties"].(map[string]any)["Status"].(map[string]any)
		assert.Equal(t, map[string]any{"status": map[string]any{"name": "Doing"}}, set)

		var validationErr *tberrors.ValidationError
		require.ErrorAs(t, tracker.SetStatus(ctx, "p1", ""), &validationErr)
		assert.Len(t, fake.patches, 1)
	})

	t.Run("type learned from fetched pages", func(t *testing.T) {
		row := page("a", "Plan", false, "")
		row["properties"].(map[string]any)["Status"] = map[string]any{
			"id": "s", "type": "status", "status": map[string]any{"name": "Todo"},
		}
		fake := &fakeNotion{t: t, pages: [][]map[string]any{{row}}}
		tracker := newTestTracker(t, fake, TrackerConfig{})

		tasks, err := tracker.Fetch(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Todo", tasks[0].Status)

		require.NoError(t, tracker.SetStatus(ctx, "a", "Done"))
		set := fake.patches[0]["properties"].(map[string]any)["Status"].(map[string]any)
		assert.Contains(t, set, "status")
		assert.Zero(t, fake.schemas)
	})

	t.Run("unsupported type", func(t *testing.T) {
		fake := &fakeNotion{t: t}
		tracker := newTestTracker(t, fake, TrackerConfig{})

		var validationErr *tberrors.ValidationError
		require.ErrorAs(t, tracker.SetStatus(ctx, "p1", "Doing"), &validationErr)
		assert.Empty(t, fake.patches)
	})
}

func TestNextStatus(t *testing.T) {
	options := []string{"Todo", "Doing", "Done"}
	assert.Equal(t, "Doing", NextStatus(options, "todo"))
	assert.Equal(t, "Todo", NextStatus(options, "Done"))
	assert.Equal(t, "Todo", NextStatus(options, ""))
	assert.Empty(t, NextStatus(nil, "Todo"))
}

func TestTrackerCheck(t *testing.T) {
	fake := &fakeNotion{t: t}
	tracker := newTestTracker(t, fake, TrackerConfig{})

	db, problems, err := tracker.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tasks", db.Name())
	assert.ElementsMatch(t, []string{
		`property "Status" is rich_text, want select`,
		`missing date property "Due"`,
	}, problems)
}

func TestClientErrors(t *testing.T) {
	fake := &fakeNotion{t: t, failWith: http.StatusUnauthorized}
	tracker := newTestTracker(t, fake, TrackerConfig{})

	_, err := tracker.Fetch(context.Background())
	var fetchErr *tberrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.Status)
	assert.Contains(t, err.Error(), "API token is invalid.")
}

func TestClientRelayPrefix(t *testing.T) {
	var target string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target = r.URL.Query().Get("url")
		_, _ = w.Write([]byte(`{"results":[],"has_more":false}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		Token: "secret",
		Relay: server.URL + "/?url=",
		Rate:  rate.Inf,
	}, server.Client())

	pages, err := client.QueryDatabase(context.Background(), "db9")
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Equal(t, "https://api.notion.com/v1/databases/db9/query", target)
}

func TestClientRespectsContext(t *testing.T) {
	client := NewClient(ClientConfig{Token: "secret", BaseURL: "http://127.0.0.1:0", Rate: 0.001}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.QueryDatabase(ctx, "db1")
	assert.Error(t, err)
}
