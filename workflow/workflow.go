package workflow

import (
	"context"
	"errors"
	"fmt"

	"download-request-service/email"
	"download-request-service/model"
	"download-request-service/resolver"
	"download-request-service/store"
	"download-request-service/token"

	"github.com/rs/zerolog/log"
)

// Default transition messages shown to the customer when the operator
// supplies none.
const (
	processingMessage       = "Processing request and generating new download links..."
	defaultRejectionMessage = "Request rejected by admin."
	noOrderMessage          = "No valid order found for this customer and project."
	noDocumentsMessage      = "No documents found for this order/project. Please check the order details."

	fallbackProjectTitle = "Project Documents"
	fallbackCustomerName = "Customer"
)

var (
	// ErrIssuanceFailed wraps token minting or persistence errors. The
	// request stays in processing; the operator retries the approval.
	ErrIssuanceFailed = errors.New("token issuance failed")

	// ErrDispatchFailed wraps email transport errors. Tokens minted before
	// the failure remain durable and redeemable; the request stays in
	// processing and a retry mints a fresh batch.
	ErrDispatchFailed = errors.New("secure delivery dispatch failed")
)

// Mailer is the notification transport boundary.
type Mailer interface {
	SendSecureDocumentDelivery(d email.Delivery) error
	SendRequestAcknowledgment(req model.DownloadLinkRequest, message string) error
	SendRequestCompletion(req model.DownloadLinkRequest, message string) error
}

// Manager owns the request lifecycle state machine: pending -> processing ->
// (completed | rejected), plus the direct pending -> rejected path. Every
// transition goes through the store's conditional update, so two operators
// acting on the same request cannot both win.
type Manager struct {
	requests *store.RequestStore
	resolver *resolver.Resolver
	issuer   *token.Issuer
	mailer   Mailer
	policy   token.Policy
}

// NewManager wires the lifecycle manager.
func NewManager(requests *store.RequestStore, res *resolver.Resolver, issuer *token.Issuer, mailer Mailer, policy token.Policy) *Manager {
	return &Manager{
		requests: requests,
		resolver: res,
		issuer:   issuer,
		mailer:   mailer,
		policy:   policy,
	}
}

// ApprovalResult reports the outcome of an approval action. When resolution
// fails the request comes back rejected with the failure message in
// AdminNotes and Tokens empty.
type ApprovalResult struct {
	Request model.DownloadLinkRequest
	Tokens  []model.SecureDownloadToken
}

// Approve drives a request through resolution, token issuance and delivery.
// A request already in processing (an earlier attempt failed mid-flight) is
// picked up where it left off; there is no automatic reversion to pending.
func (m *Manager) Approve(ctx context.Context, id, actor, message string) (ApprovalResult, error) {
	req, err := m.requests.Get(ctx, id)
	if err != nil {
		return ApprovalResult{}, err
	}

	switch req.Status {
	case model.StatusPending:
		req, err = m.requests.UpdateStatus(ctx, id,
			[]model.RequestStatus{model.StatusPending},
			model.StatusProcessing, actor, processingMessage, 0)
		if err != nil {
			return ApprovalResult{}, err
		}
	case model.StatusProcessing:
		// Operator retry after an issuance or dispatch failure
		log.Info().Str("request_id", id).Msg("Re-approving request already in processing")
	default:
		return ApprovalResult{}, store.ErrStatusConflict
	}

	res, err := m.resolver.Resolve(ctx, req)
	if err != nil {
		if errors.Is(err, resolver.ErrNoOrderFound) || errors.Is(err, resolver.ErrNoDocumentsFound) {
			rejected, rejErr := m.requests.UpdateStatus(ctx, id,
				[]model.RequestStatus{model.StatusProcessing},
				model.StatusRejected, actor, rejectionMessageFor(err), 0)
			if rejErr != nil {
				return ApprovalResult{}, rejErr
			}
			return ApprovalResult{Request: rejected}, nil
		}
		return ApprovalResult{}, err
	}

	tokens, err := m.issuer.Issue(ctx, res.Documents, req.CustomerEmail, res.Order.ID, m.policy)
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}

	if err := m.mailer.SendSecureDocumentDelivery(m.buildDelivery(req, res, tokens, message)); err != nil {
		return ApprovalResult{}, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	completion := message
	if completion == "" {
		completion = fmt.Sprintf("New download links have been generated and sent to your email address. Generated %d secure links.", len(tokens))
	}

	req, err = m.requests.UpdateStatus(ctx, id,
		[]model.RequestStatus{model.StatusProcessing},
		model.StatusCompleted, actor, completion, len(tokens))
	if err != nil {
		return ApprovalResult{}, err
	}

	return ApprovalResult{Request: req, Tokens: tokens}, nil
}

// Reject declines a pending request with the operator's message.
func (m *Manager) Reject(ctx context.Context, id, actor, message string) (model.DownloadLinkRequest, error) {
	if message == "" {
		message = defaultRejectionMessage
	}
	return m.requests.UpdateStatus(ctx, id,
		[]model.RequestStatus{model.StatusPending},
		model.StatusRejected, actor, message, 0)
}

func (m *Manager) buildDelivery(req model.DownloadLinkRequest, res resolver.Resolution, tokens []model.SecureDownloadToken, adminMessage string) email.Delivery {
	docsByID := make(map[string]model.Document, len(res.Documents))
	for _, doc := range res.Documents {
		docsByID[doc.ID] = doc
	}

	secureDocs := make([]email.SecureDocument, 0, len(tokens))
	for _, tok := range tokens {
		doc := docsByID[tok.DocumentID]
		secureDocs = append(secureDocs, email.SecureDocument{
			DocumentName: tok.DocumentName,
			SecureURL:    tok.SecureURL,
			Category:     valueOr(doc.Category, "document"),
			ReviewStage:  valueOr(doc.ReviewStage, "review_1"),
			Size:         doc.Size,
		})
	}

	return email.Delivery{
		RecipientEmail: req.CustomerEmail,
		RecipientName:  valueOr(res.Order.CustomerName, valueOr(req.CustomerName, fallbackCustomerName)),
		OrderID:        res.Order.ID,
		ProjectTitle:   valueOr(res.Order.ProjectTitle, valueOr(req.ProjectTitle, fallbackProjectTitle)),
		Documents:      secureDocs,
		ExpiresAt:      tokens[0].ExpiresAt,
		MaxDownloads:   m.policy.MaxDownloads,
		AdminMessage:   adminMessage,
	}
}

func rejectionMessageFor(err error) string {
	if errors.Is(err, resolver.ErrNoOrderFound) {
		return noOrderMessage
	}
	return noDocumentsMessage
}

func valueOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
