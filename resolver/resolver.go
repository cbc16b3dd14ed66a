package resolver

import (
	"context"
	"errors"

	"download-request-service/model"
	"download-request-service/store"

	"github.com/rs/zerolog/log"
)

// UnknownOrderID is the sentinel customers submit when they no longer know
// their order id.
const UnknownOrderID = "unknown"

var (
	ErrNoOrderFound     = errors.New("no matching order for customer and project")
	ErrNoDocumentsFound = errors.New("order resolved but project has no documents")
)

// Resolution is a successfully resolved order with its deliverable documents.
type Resolution struct {
	Order     model.Order
	Documents []model.Document
}

// Resolver maps a possibly-incomplete request to a concrete order and its
// document set. It is read-only and deterministic for a given catalog.
type Resolver struct {
	catalog *store.CatalogStore
}

func New(catalog *store.CatalogStore) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve finds the order behind a request. An exact order id is looked up
// directly; a missing or "unknown" id falls back to the customer's newest
// order, restricted to the request's project title when present. The two
// failure modes are distinct: ErrNoOrderFound when no order matches,
// ErrNoDocumentsFound when the resolved project has an empty document set.
func (r *Resolver) Resolve(ctx context.Context, req model.DownloadLinkRequest) (Resolution, error) {
	var (
		order model.Order
		err   error
	)

	if req.OrderID != "" && req.OrderID != UnknownOrderID {
		order, err = r.catalog.GetOrder(ctx, req.OrderID)
	} else {
		order, err = r.catalog.LatestOrder(ctx, req.CustomerEmail, req.ProjectTitle)
	}
	if errors.Is(err, store.ErrOrderNotFound) {
		log.Info().
			Str("request_id", req.ID).
			Str("customer_email", req.CustomerEmail).
			Str("order_id", req.OrderID).
			Msg("No order matched request")
		return Resolution{}, ErrNoOrderFound
	}
	if err != nil {
		return Resolution{}, err
	}

	docs, err := r.catalog.ProjectDocuments(ctx, order.ProjectID)
	if err != nil {
		return Resolution{}, err
	}
	if len(docs) == 0 {
		log.Info().
			Str("request_id", req.ID).
			Str("order_id", order.ID).
			Str("project_id", order.ProjectID).
			Msg("Resolved order has no documents")
		return Resolution{}, ErrNoDocumentsFound
	}

	return Resolution{Order: order, Documents: docs}, nil
}
