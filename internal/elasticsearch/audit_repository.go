package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/rs/zerolog/log"

	"kpi-dashboard-backend/config"
	"kpi-dashboard-backend/internal/dto"
	"kpi-dashboard-backend/internal/model"
	"kpi-dashboard-backend/internal/repository"
)

type elasticsearchAuditRepository struct {
	esTypedClient *elasticsearch.TypedClient
	indexPrefix   string
}

// NewElasticsearchAuditRepository builds the typed client used for audit
// trail searches. Returns nil when the audit trail is disabled.
func NewElasticsearchAuditRepository(cfg *config.Config) (repository.AuditRepository, error) {
	if !cfg.Audit.Enabled {
		log.Info().Msg("Query audit trail disabled, skipping Elasticsearch audit repository")
		return nil, nil
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	esCfgForTyped := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Transport: transport,
	}

	typedClient, err := elasticsearch.NewTypedClient(esCfgForTyped)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Typed Elasticsearch Client in Repository")
		return nil, err
	}

	return &elasticsearchAuditRepository{
		esTypedClient: typedClient,
		indexPrefix:   cfg.Elasticsearch.AuditIndex,
	}, nil
}

func (r *elasticsearchAuditRepository) Search(ctx context.Context, req dto.AuditSearchRequest) (*dto.AuditSearchResponse, error) {
	indexPattern := fmt.Sprintf("%s-*", r.indexPrefix)
	queryParts := []types.Query{}

	startTimeStr := req.StartTime.Format(time.RFC3339)
	endTimeStr := req.EndTime.Format(time.RFC3339)

	queryParts = append(queryParts, types.Query{
		Range: map[string]types.RangeQuery{
			"@timestamp": types.DateRangeQuery{
				Gte: &startTimeStr,
				Lte: &endTimeStr,
			},
		},
	})

	if req.Username != "" {
		queryParts = append(queryParts, types.Query{
			Term: map[string]types.TermQuery{
				"username.keyword": {Value: req.Username},
			},
		})
	}

	if req.Query != "" {
		queryParts = append(queryParts, types.Query{
			QueryString: &types.QueryStringQuery{
				Query:  req.Query,
				Fields: []string{"natural_query", "sql_query", "connection"},
				DefaultOperator: &operator.Operator{
					Name: "AND",
				},
			},
		})
	}

	from := (req.Page - 1) * req.Size
	order := sortorder.Desc
	if req.SortOrder == "asc" {
		order = sortorder.Asc
	}

	searchRequest := &search.Request{
		Query: &types.Query{
			Bool: &types.BoolQuery{
				Filter: queryParts,
			},
		},
		Size: &req.Size,
		From: &from,
		Sort: []types.SortCombinations{
			types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					"@timestamp": {Order: &order},
				},
			},
		},
	}

	res, err := r.esTypedClient.Search().
		Index(indexPattern).
		Request(searchRequest).
		Do(ctx)

	if err != nil {
		log.Error().Err(err).Msg("Error executing Elasticsearch search via TypedClient")
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}

	events := make([]model.QueryAuditEvent, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var event model.QueryAuditEvent
		if hit.Source_ != nil {
			if err := json.Unmarshal(hit.Source_, &event); err != nil {
				log.Error().Err(err).Msg("Error unmarshalling Elasticsearch hit source")
				continue
			}
			events = append(events, event)
		}
	}

	response := &dto.AuditSearchResponse{
		Events:     events,
		TotalCount: res.Hits.Total.Value,
		Page:       req.Page,
		Size:       req.Size,
	}

	log.Debug().Int64("total_hits", response.TotalCount).Int("returned_hits", len(response.Events)).Msg("Elasticsearch audit search successful")
	return response, nil
}
