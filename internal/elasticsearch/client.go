package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/DeafMist/pakgpt-news/backend/internal/store"
)

// Client wraps go-elasticsearch as a collection-oriented document store.
// Each collection lives in its own index named "<database>_<collection>".
type Client struct {
	es       *elasticsearch.Client
	database string
	log      *slog.Logger
}

var _ store.Store = (*Client)(nil)
var _ store.Inspector = (*Client)(nil)

// New instantiates the Elasticsearch client.
func New(addr, database string, logger *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{es: es, database: database, log: logger}, nil
}

// IndexName maps a collection to its backing index.
func (c *Client) IndexName(collection string) string {
	return c.database + "_" + collection
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the collection's index with the given mapping when it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context, collection string, mapping []byte) error {
	index := c.IndexName(collection)

	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", index, res.Status())
	}

	res, err = c.es.Indices.Create(index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// another replica may have created it first
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s failed: %s", index, strings.TrimSpace(string(body)))
	}

	c.log.Info("created index", slog.String("index", index))
	return nil
}

// Create writes a document under a fresh id and returns that id.
func (c *Client) Create(ctx context.Context, collection string, doc any) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}

	id := uuid.NewString()
	req := esapi.IndexRequest{
		Index:      c.IndexName(collection),
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		OpType:     "create",
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return "", fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}

	return id, nil
}

// Query returns up to limit documents matching filter, in the order Elasticsearch returns them.
// A collection whose index does not exist yields no documents.
func (c *Client) Query(ctx context.Context, collection string, filter store.Filter, limit int) ([]store.Document, error) {
	payload, err := json.Marshal(BuildQuery(filter, limit))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.IndexName(collection)),
		c.es.Search.WithBody(bytes.NewReader(payload)),
		c.es.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]store.Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, store.Document{ID: hit.ID, Source: hit.Source})
	}

	return docs, nil
}

// BuildQuery translates a store filter into an Elasticsearch search body.
func BuildQuery(filter store.Filter, limit int) map[string]any {
	if limit <= 0 {
		limit = 10
	}

	filters := make([]map[string]any, 0, len(filter.Equals)+len(filter.AnyOf))

	for _, field := range sortedKeys(filter.Equals) {
		filters = append(filters, map[string]any{
			"term": map[string]any{field: filter.Equals[field]},
		})
	}

	for _, field := range sortedKeys(filter.AnyOf) {
		values := filter.AnyOf[field]
		if len(values) == 0 {
			continue
		}
		filters = append(filters, map[string]any{
			"terms": map[string]any{field: values},
		})
	}

	boolQuery := map[string]any{}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	} else {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	return map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": boolQuery,
		},
	}
}

// Collections lists the collections stored under this database, sorted by name.
func (c *Client) Collections(ctx context.Context) ([]string, error) {
	prefix := c.database + "_"
	res, err := c.es.Cat.Indices(
		c.es.Cat.Indices.WithContext(ctx),
		c.es.Cat.Indices.WithIndex(prefix+"*"),
		c.es.Cat.Indices.WithFormat("json"),
		c.es.Cat.Indices.WithH("index"),
	)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("list indices failed: %s", strings.TrimSpace(string(data)))
	}

	var rows []struct {
		Index string `json:"index"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode indices response: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := strings.CutPrefix(row.Index, prefix); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
