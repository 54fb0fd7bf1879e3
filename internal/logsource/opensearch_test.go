package logsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenSearch(t *testing.T, handler http.HandlerFunc) *OpenSearchSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src, err := NewOpenSearchSource(OpenSearchConfig{
		URL:   server.URL,
		Index: "telhawk-events-*",
		Field: "message",
		Size:  50,
	})
	require.NoError(t, err)
	return src
}

func TestOpenSearchSource_Related(t *testing.T) {
	var captured map[string]interface{}

	src := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/_search"), r.URL.Path)
		assert.Contains(t, r.URL.Path, "telhawk-events-*")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"message":"  user bob logged in from 1.2.3.4 "}},
			{"_source":{"message":"fuzzy match 1.2.3.45"}},
			{"_source":{"message":"wildcard false positive"}},
			{"_source":{"other":"no message field"}}
		]}}`))
	})

	lines, err := src.Related(context.Background(), []string{"1.2.3.4", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"user bob logged in from 1.2.3.4", "fuzzy match 1.2.3.45"}, lines)

	assert.EqualValues(t, 50, captured["size"])
	query := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := query["should"].([]interface{})
	require.Len(t, should, 1)
	wildcard := should[0].(map[string]interface{})["wildcard"].(map[string]interface{})["message"].(map[string]interface{})
	assert.Equal(t, "*1.2.3.4*", wildcard["value"])

	sort := captured["sort"].([]interface{})[0].(map[string]interface{})["@timestamp"].(map[string]interface{})
	assert.Equal(t, "asc", sort["order"])
}

func TestOpenSearchSource_ErrorStatus(t *testing.T) {
	src := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})

	lines, err := src.Related(context.Background(), []string{"bob"})
	assert.Error(t, err)
	assert.Empty(t, lines)
}

func TestOpenSearchSource_NoKeysSkipsRequest(t *testing.T) {
	called := false
	src := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	lines, err := src.Related(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Nil(t, lines)
	assert.False(t, called)
}

func TestOpenSearchSource_Ping(t *testing.T) {
	src := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":{"number":"2.11.0","distribution":"opensearch"}}`))
	})
	assert.NoError(t, src.Ping(context.Background()))
}

func TestEscapeWildcard(t *testing.T) {
	assert.Equal(t, `a\*b\?c\\d`, escapeWildcard(`a*b?c\d`))
}

func TestFieldText(t *testing.T) {
	src := map[string]interface{}{
		"event.original": "flat",
		"event":          map[string]interface{}{"raw": "nested"},
		"count":          3,
	}

	v, ok := fieldText(src, "event.original")
	assert.True(t, ok)
	assert.Equal(t, "flat", v)

	v, ok = fieldText(src, "event.raw")
	assert.True(t, ok)
	assert.Equal(t, "nested", v)

	_, ok = fieldText(src, "count")
	assert.False(t, ok)

	_, ok = fieldText(src, "event.missing")
	assert.False(t, ok)
}
