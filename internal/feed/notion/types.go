package notion

import (
	"strings"
	"time"
)

type queryRequest struct {
	PageSize    int         `json:"page_size,omitempty"`
	StartCursor string      `json:"start_cursor,omitempty"`
	Sorts       []querySort `json:"sorts,omitempty"`
}

type querySort struct {
	Timestamp string `json:"timestamp,omitempty"`
	Property  string `json:"property,omitempty"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Page is a database row.
type Page struct {
	ID          string              `json:"id"`
	URL         string              `json:"url"`
	CreatedTime time.Time           `json:"created_time"`
	Archived    bool                `json:"archived"`
	Properties  map[string]Property `json:"properties"`
}

// Property is a page property value. Only the fields for the types tilebar
// reads are decoded.
type Property struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Checkbox *bool         `json:"checkbox,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
}

// RichText is one run of text.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// SelectOption is a select or status value.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue is a date property value. Start is either a date or a
// date-time.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Database is the schema returned by the retrieve endpoint.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

// PropertySchema describes a database column. Select and Status carry
// the allowed options for those types.
type PropertySchema struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Select *OptionSchema `json:"select,omitempty"`
	Status *OptionSchema `json:"status,omitempty"`
}

// OptionSchema lists the options of a select or status column.
type OptionSchema struct {
	Options []SelectOption `json:"options"`
}

// OptionNames returns the option names in database order.
func (p PropertySchema) OptionNames() []string {
	var schema *OptionSchema
	switch p.Type {
	case "select":
		schema = p.Select
	case "status":
		schema = p.Status
	}
	if schema == nil {
		return nil
	}
	names := make([]string, 0, len(schema.Options))
	for _, option := range schema.Options {
		names = append(names, option.Name)
	}
	return names
}

// Name returns the database title as plain text.
func (d Database) Name() string {
	return plainText(d.Title)
}

func plainText(runs []RichText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.PlainText)
	}
	return strings.TrimSpace(b.String())
}
