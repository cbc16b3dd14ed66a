package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"download-request-service/config"
	"download-request-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	requestKeyPrefix      = "request:"
	requestIndexKey       = "requests:by_created" // zset scored by creation time
	requestStatusSetKey   = "requests:status:"    // + status value
)

var (
	ErrRequestNotFound = errors.New("download link request not found")

	// ErrStatusConflict means the stored status no longer matches the
	// expected pre-state, i.e. another actor already transitioned the request.
	ErrStatusConflict = errors.New("request status changed by another actor")
)

// RequestStore persists download link requests in Redis. Each request is a
// JSON blob under request:{id}; a creation-time zset preserves listing order
// and per-status sets back the status filter and the stats counters.
type RequestStore struct {
	redis   *redis.Client
	timeout time.Duration
}

// NewRequestStore creates a request store backed by the given Redis client.
func NewRequestStore(rdb *redis.Client, cfg config.RedisConfig) *RequestStore {
	return &RequestStore{
		redis:   rdb,
		timeout: time.Duration(cfg.OperationTimeout) * time.Second,
	}
}

// Create persists a new request in the pending state. A missing ID is
// assigned a UUID; CreatedAt is stamped server-side.
func (s *RequestStore) Create(ctx context.Context, req model.DownloadLinkRequest) (model.DownloadLinkRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	req.CreatedAt = time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return model.DownloadLinkRequest{}, err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, requestKeyPrefix+req.ID, payload, 0)
		pipe.ZAdd(ctx, requestIndexKey, &redis.Z{
			Score:  float64(req.CreatedAt.UnixNano()),
			Member: req.ID,
		})
		pipe.SAdd(ctx, requestStatusSetKey+string(req.Status), req.ID)
		return nil
	})
	if err != nil {
		return model.DownloadLinkRequest{}, fmt.Errorf("storing request: %w", err)
	}

	log.Info().
		Str("request_id", req.ID).
		Str("customer_email", req.CustomerEmail).
		Str("order_id", req.OrderID).
		Str("priority", string(req.Priority)).
		Msg("Download link request created")

	return req, nil
}

// Get fetches a single request by id.
func (s *RequestStore) Get(ctx context.Context, id string) (model.DownloadLinkRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.redis.Get(ctx, requestKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return model.DownloadLinkRequest{}, ErrRequestNotFound
	} else if err != nil {
		return model.DownloadLinkRequest{}, err
	}

	var req model.DownloadLinkRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.DownloadLinkRequest{}, err
	}
	return req, nil
}

// List returns requests ordered by creation time, optionally filtered by a
// single status. An empty status returns everything.
func (s *RequestStore) List(ctx context.Context, status model.RequestStatus) ([]model.DownloadLinkRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ids, err := s.redis.ZRange(ctx, requestIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.DownloadLinkRequest{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = requestKeyPrefix + id
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	requests := make([]model.DownloadLinkRequest, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a record; skip stale id
			log.Warn().Str("request_id", ids[i]).Msg("Stale request index entry")
			continue
		}
		var req model.DownloadLinkRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			log.Error().Err(err).Str("request_id", ids[i]).Msg("Failed to unmarshal request")
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// UpdateStatus transitions a request to next if and only if its stored status
// is one of the expected pre-states and the transition is legal. The check and
// write run under WATCH so a concurrent transition surfaces as
// ErrStatusConflict instead of a lost update. linksGenerated is recorded only
// on completion.
func (s *RequestStore) UpdateStatus(ctx context.Context, id string, expected []model.RequestStatus, next model.RequestStatus, actor, message string, linksGenerated int) (model.DownloadLinkRequest, error) {
	if !next.Valid() {
		return model.DownloadLinkRequest{}, fmt.Errorf("invalid target status %q", next)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := requestKeyPrefix + id
	var updated model.DownloadLinkRequest

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrRequestNotFound
		} else if err != nil {
			return err
		}

		var req model.DownloadLinkRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}

		allowed := false
		for _, st := range expected {
			if req.Status == st {
				allowed = true
				break
			}
		}
		if !allowed || !req.Status.CanTransition(next) {
			return ErrStatusConflict
		}

		prev := req.Status
		now := time.Now()

		req.Status = next
		req.AdminNotes = message
		req.ProcessedBy = actor
		if next.Terminal() {
			req.ProcessedAt = now
		}
		if next == model.StatusCompleted {
			req.LinksGeneratedCount = linksGenerated
			req.NewLinksSentAt = now
		}

		payload, err := json.Marshal(req)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.SRem(ctx, requestStatusSetKey+string(prev), id)
			pipe.SAdd(ctx, requestStatusSetKey+string(next), id)
			return nil
		})
		if err == nil {
			updated = req
		}
		return err
	}

	err := s.redis.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return model.DownloadLinkRequest{}, ErrStatusConflict
	}
	if err != nil {
		return model.DownloadLinkRequest{}, err
	}

	log.Info().
		Str("request_id", id).
		Str("status", string(next)).
		Str("processed_by", actor).
		Int("links_generated", linksGenerated).
		Msg("Request status updated")

	return updated, nil
}

// Counts returns the total number of requests and a per-status breakdown.
func (s *RequestStore) Counts(ctx context.Context) (int64, map[model.RequestStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.redis.ZCard(ctx, requestIndexKey).Result()
	if err != nil {
		return 0, nil, err
	}

	counts := make(map[model.RequestStatus]int64, len(model.Statuses))
	for _, status := range model.Statuses {
		n, err := s.redis.SCard(ctx, requestStatusSetKey+string(status)).Result()
		if err != nil {
			return 0, nil, err
		}
		counts[status] = n
	}

	return total, counts, nil
}
