package errors

import (
	"encoding/json"
	"encoding/xml"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorLocatesJSONOffset(t *testing.T) {
	t.Parallel()

	data := []byte("{\n  \"columns\": nope\n}")
	var target map[string]any
	underlying := json.Unmarshal(data, &target)
	require.Error(t, underlying)

	err := NewParseError("tilebar.layout.i3", data, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "tilebar.layout.i3", parseErr.Source)
	require.Equal(t, 2, parseErr.Line)
	require.Equal(t, 15, parseErr.Column)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "tilebar.layout.i3:2:15")
}

func TestParseErrorLocatesYAMLAndXMLLines(t *testing.T) {
	t.Parallel()

	yamlErr := NewParseError("layout.yaml", nil, stdErrors.New("yaml: line 3: mapping values are not allowed in this context"))
	require.Contains(t, yamlErr.Error(), "layout.yaml:3:")

	wrapped := fmt.Errorf("rss: %w", &xml.SyntaxError{Msg: "unexpected EOF", Line: 7})
	var parseErr *ParseError
	require.ErrorAs(t, NewParseError("https://example.com/feed.xml", []byte("<rss>"), wrapped), &parseErr)
	require.Equal(t, 7, parseErr.Line)
	require.Zero(t, parseErr.Column)
}

func TestParseErrorWithoutPosition(t *testing.T) {
	t.Parallel()

	err := NewParseError("tilebar.layout.i3", nil, stdErrors.New("deadline 5 exceeded"))
	require.Equal(t, "parse error: tilebar.layout.i3: deadline 5 exceeded", err.Error())
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("columns[1].components[0].options", "invalid JSON", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "columns[1].components[0].options", validationErr.Field)
	require.Contains(t, validationErr.Message, "invalid JSON")
}

func TestFetchErrorIncludesStatus(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("unauthorized")
	err := NewFetchError("notion", 401, underlying)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "notion", fetchErr.Source)
	require.Equal(t, 401, fetchErr.Status)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "status 401")
}

func TestFetchErrorWithoutStatus(t *testing.T) {
	t.Parallel()

	err := NewFetchError("https://example.com/feed.xml", 0, stdErrors.New("connection refused"))
	require.Equal(t, "fetch error [https://example.com/feed.xml]: connection refused", err.Error())
}
