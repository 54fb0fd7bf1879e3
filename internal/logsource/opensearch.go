package logsource

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
)

// OpenSearchConfig configures an OpenSearchSource.
type OpenSearchConfig struct {
	URL      string
	Username string
	Password string
	Insecure bool
	Index    string
	// Field holds the raw log text; dotted paths address nested fields.
	Field string
	Size  int
}

// OpenSearchSource searches indexed events for related lines. The wildcard
// query narrows candidates; the same literal substring rule as FileSource
// decides what is returned.
type OpenSearchSource struct {
	client *opensearch.Client
	index  string
	field  string
	size   int
}

// NewOpenSearchSource creates the client. No request is made until Related
// or Ping is called.
func NewOpenSearchSource(cfg OpenSearchConfig) (*OpenSearchSource, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Insecure,
		},
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	size := cfg.Size
	if size <= 0 {
		size = 500
	}
	field := cfg.Field
	if field == "" {
		field = "message"
	}

	return &OpenSearchSource{client: client, index: cfg.Index, field: field, size: size}, nil
}

// Ping checks that the cluster answers.
func (s *OpenSearchSource) Ping(ctx context.Context) error {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch returned error: %s", res.Status())
	}
	return nil
}

// Related implements Source.
func (s *OpenSearchSource) Related(ctx context.Context, keys []string) ([]string, error) {
	keys = usableKeys(keys)
	if len(keys) == 0 {
		return nil, nil
	}

	bodyBytes, err := json.Marshal(s.buildQuery(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search logs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("opensearch error: %s - %s", res.Status(), string(body))
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var related []string
	for _, hit := range searchResult.Hits.Hits {
		line, ok := fieldText(hit.Source, s.field)
		if !ok || !matchesAny(line, keys) {
			continue
		}
		related = append(related, strings.TrimSpace(line))
	}
	return related, nil
}

func (s *OpenSearchSource) buildQuery(keys []string) map[string]interface{} {
	should := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		should = append(should, map[string]interface{}{
			"wildcard": map[string]interface{}{
				s.field: map[string]interface{}{
					"value": "*" + escapeWildcard(k) + "*",
				},
			},
		})
	}

	return map[string]interface{}{
		"size": s.size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"sort": []map[string]interface{}{
			{"@timestamp": map[string]string{"order": "asc", "unmapped_type": "date"}},
		},
		"_source": []string{s.field},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

// fieldText resolves a dotted path in a hit's source. Flat keys containing
// dots are checked first since many shippers write them that way.
func fieldText(src map[string]interface{}, path string) (string, bool) {
	if v, ok := src[path]; ok {
		s, ok := v.(string)
		return s, ok
	}

	var cur interface{} = src
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return "", false
		}
		if cur, ok = obj[part]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
