package elasticsearch

// NewsMapping declares filter fields as keywords so term queries match exact values.
var NewsMapping = []byte(`{
  "mappings": {
    "properties": {
      "source":       {"type": "keyword"},
      "title":        {"type": "text"},
      "url":          {"type": "keyword"},
      "published_at": {"type": "date"},
      "city":         {"type": "keyword"},
      "interests":    {"type": "keyword"},
      "urgency":      {"type": "keyword"},
      "language":     {"type": "keyword"},
      "bullets":      {"type": "text"},
      "impact":       {"type": "text"},
      "fact_status":  {"type": "keyword"},
      "risk_score":   {"type": "integer"},
      "thumbnail":    {"type": "keyword", "index": false},
      "source_id":    {"type": "keyword"}
    }
  }
}`)
