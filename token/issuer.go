package token

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"download-request-service/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	tokenLength    = 43
	maxRetries     = 5
	charset        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
	tokenKeyPrefix = "token:"
)

var (
	ErrMaxRetriesExceeded = errors.New("failed to generate unique download token after maximum retries")
	ErrNoDocuments        = errors.New("document list cannot be empty")
)

// Policy controls how long and how often an issued token may be redeemed.
type Policy struct {
	ExpirationHours          int
	MaxDownloads             int
	RequireEmailVerification bool
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if p.ExpirationHours <= 0 {
		return errors.New("expirationHours must be positive")
	}
	if p.MaxDownloads <= 0 {
		return errors.New("maxDownloads must be positive")
	}
	return nil
}

// Issuer mints secure download tokens and records them in Redis. Token
// records carry a TTL equal to their expiry window, so the download-serving
// subsystem only ever sees redeemable tokens.
type Issuer struct {
	redis   *redis.Client
	baseURL string
}

// NewIssuer creates an issuer. baseURL is the public prefix of secure URLs.
func NewIssuer(rdb *redis.Client, baseURL string) *Issuer {
	return &Issuer{
		redis:   rdb,
		baseURL: baseURL,
	}
}

// Issue mints exactly one token per input document, bound to the recipient
// email and order. The returned batch preserves the input order and every
// token is persisted before the batch is returned, so a crash between
// issuance and email dispatch still leaves redeemable tokens behind.
func (i *Issuer) Issue(ctx context.Context, docs []model.Document, recipientEmail, orderID string, policy Policy) ([]model.SecureDownloadToken, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	issuedAt := time.Now()
	expiresAt := issuedAt.Add(time.Duration(policy.ExpirationHours) * time.Hour)

	tokens := make([]model.SecureDownloadToken, 0, len(docs))
	for _, doc := range docs {
		code, err := i.generateUniqueToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("minting token for document %s: %w", doc.ID, err)
		}

		tok := model.SecureDownloadToken{
			Token:                    code,
			DocumentID:               doc.ID,
			DocumentName:             doc.Name,
			SecureURL:                fmt.Sprintf("%s/download/%s", i.baseURL, code),
			RecipientEmail:           recipientEmail,
			OrderID:                  orderID,
			IssuedAt:                 issuedAt,
			ExpiresAt:                expiresAt,
			MaxDownloads:             policy.MaxDownloads,
			RequireEmailVerification: policy.RequireEmailVerification,
		}

		payload, err := json.Marshal(tok)
		if err != nil {
			return nil, err
		}
		if err := i.redis.Set(ctx, tokenKeyPrefix+code, payload, time.Until(expiresAt)).Err(); err != nil {
			return nil, fmt.Errorf("storing token for document %s: %w", doc.ID, err)
		}

		tokens = append(tokens, tok)
	}

	log.Info().
		Str("order_id", orderID).
		Str("recipient", recipientEmail).
		Int("tokens", len(tokens)).
		Time("expires_at", expiresAt).
		Int("max_downloads", policy.MaxDownloads).
		Msg("Secure download tokens issued")

	return tokens, nil
}

// Exists reports whether a token is currently redeemable.
func (i *Issuer) Exists(ctx context.Context, code string) (bool, error) {
	n, err := i.redis.Exists(ctx, tokenKeyPrefix+code).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// generateUniqueToken generates a cryptographically random token with
// collision detection against already-stored tokens.
func (i *Issuer) generateUniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := generateRandomString(tokenLength)
		if err != nil {
			return "", err
		}

		exists, err := i.redis.Exists(ctx, tokenKeyPrefix+code).Result()
		if err != nil {
			return "", err
		}
		if exists == 0 {
			return code, nil
		}

		log.Warn().Int("attempt", attempt+1).Msg("Token collision detected, retrying")
	}

	return "", ErrMaxRetriesExceeded
}

// generateRandomString generates a cryptographically secure random string
func generateRandomString(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
