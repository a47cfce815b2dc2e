// Command esinit installs the index template for query audit indices so that
// usernames and sectors are indexed as keywords and timestamps as dates.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"kpi-dashboard-backend/config"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
	})
	if err != nil {
		log.Fatalf("Error creating Elasticsearch client: %v", err)
	}

	template := fmt.Sprintf(`{
  "index_patterns": ["%s-*"],
  "template": {
    "mappings": {
      "properties": {
        "@timestamp":    {"type": "date"},
        "id":            {"type": "keyword"},
        "username":      {"type": "keyword"},
        "sector":        {"type": "keyword"},
        "connection":    {"type": "keyword"},
        "natural_query": {"type": "text"},
        "sql_query":     {"type": "text"},
        "row_count":     {"type": "integer"},
        "duration_ms":   {"type": "long"},
        "error":         {"type": "text"}
      }
    }
  }
}`, cfg.Elasticsearch.AuditIndex)

	templateName := cfg.Elasticsearch.AuditIndex + "-template"
	req := esapi.IndicesPutIndexTemplateRequest{
		Name: templateName,
		Body: strings.NewReader(template),
	}

	res, err := req.Do(context.Background(), es)
	if err != nil {
		log.Fatalf("Error installing index template %s: %v", templateName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Fatalf("Error response from Elasticsearch for template %s: %s", templateName, res.String())
	}
	fmt.Printf("Installed index template %s successfully\n", templateName)
}
