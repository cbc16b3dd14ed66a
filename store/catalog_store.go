package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"download-request-service/cache"
	"download-request-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	orderKeyPrefix       = "order:"
	orderCustomerIdxKey  = "orders:customer:" // + lowercased email, zset scored by creation time
	projectKeyPrefix     = "project:"
	projectDocsKeySuffix = ":documents" // list of document ids under project:{id}
	documentKeyPrefix    = "document:"

	docsCacheKeyPrefix = "docs:"
	docsCacheEntryCost = 1024
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProjectNotFound = errors.New("project not found")
)

// CatalogStore provides read-mostly access to orders, projects and documents.
// Orders are indexed per customer so the resolver never scans the full order
// set; document lists sit behind the in-process cache.
type CatalogStore struct {
	redis *redis.Client
	cache *cache.Cache
}

// NewCatalogStore creates a catalog store. cacheClient may be nil.
func NewCatalogStore(rdb *redis.Client, cacheClient *cache.Cache) *CatalogStore {
	return &CatalogStore{
		redis: rdb,
		cache: cacheClient,
	}
}

// AddOrder stores an order and indexes it under the customer's email.
func (s *CatalogStore) AddOrder(ctx context.Context, order model.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, orderKeyPrefix+order.ID, payload, 0)
		pipe.ZAdd(ctx, customerOrdersKey(order.CustomerEmail), &redis.Z{
			Score:  float64(order.CreatedAt.UnixNano()),
			Member: order.ID,
		})
		return nil
	})
	return err
}

// AddProject stores a project record.
func (s *CatalogStore) AddProject(ctx context.Context, project model.Project) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, projectKeyPrefix+project.ID, payload, 0).Err()
}

// GetProject looks up a project by id.
func (s *CatalogStore) GetProject(ctx context.Context, id string) (model.Project, error) {
	data, err := s.redis.Get(ctx, projectKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return model.Project{}, ErrProjectNotFound
	} else if err != nil {
		return model.Project{}, err
	}

	var project model.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

// AddDocument stores a document and appends it to its project's document list.
func (s *CatalogStore) AddDocument(ctx context.Context, doc model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, documentKeyPrefix+doc.ID, payload, 0)
		pipe.RPush(ctx, projectKeyPrefix+doc.ProjectID+projectDocsKeySuffix, doc.ID)
		return nil
	})
	if err != nil {
		return err
	}

	// Drop any cached document list for this project
	if s.cache != nil {
		s.cache.Delete(docsCacheKeyPrefix + doc.ProjectID)
	}
	return nil
}

// GetOrder looks up an order by exact id.
func (s *CatalogStore) GetOrder(ctx context.Context, id string) (model.Order, error) {
	data, err := s.redis.Get(ctx, orderKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return model.Order{}, ErrOrderNotFound
	} else if err != nil {
		return model.Order{}, err
	}

	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// LatestOrder returns the most recently created order for the customer email,
// restricted to projectTitle when it is non-empty. Newest wins on ties in the
// zset ordering.
func (s *CatalogStore) LatestOrder(ctx context.Context, customerEmail, projectTitle string) (model.Order, error) {
	ids, err := s.redis.ZRevRange(ctx, customerOrdersKey(customerEmail), 0, -1).Result()
	if err != nil {
		return model.Order{}, err
	}

	for _, id := range ids {
		order, err := s.GetOrder(ctx, id)
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("Stale customer order index entry")
			continue
		}
		if err != nil {
			return model.Order{}, err
		}
		if projectTitle != "" && order.ProjectTitle != projectTitle {
			continue
		}
		return order, nil
	}

	return model.Order{}, ErrOrderNotFound
}

// ProjectDocuments returns the documents catalogued for a project, in the
// order they were added. Results are served from the cache when possible.
func (s *CatalogStore) ProjectDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	cacheKey := docsCacheKeyPrefix + projectID
	if cached, found := s.cache.Get(cacheKey); found {
		if docs, ok := cached.([]model.Document); ok {
			log.Debug().Str("project_id", projectID).Msg("Document list cache hit")
			return docs, nil
		}
	}

	ids, err := s.redis.LRange(ctx, projectKeyPrefix+projectID+projectDocsKeySuffix, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = documentKeyPrefix + id
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("document %s referenced by project %s is missing", ids[i], projectID)
		}
		var doc model.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	s.cache.Set(cacheKey, docs, docsCacheEntryCost)
	return docs, nil
}

func customerOrdersKey(email string) string {
	return orderCustomerIdxKey + strings.ToLower(email)
}
