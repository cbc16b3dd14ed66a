package model

import "time"

// SecureDownloadToken grants one recipient email the right to fetch one
// document a bounded number of times before expiry. The token value itself is
// the unguessable part of SecureURL.
type SecureDownloadToken struct {
	Token                    string    `json:"token"`
	DocumentID               string    `json:"documentID"`
	DocumentName             string    `json:"documentName"`
	SecureURL                string    `json:"secureURL"`
	RecipientEmail           string    `json:"recipientEmail"`
	OrderID                  string    `json:"orderID"`
	IssuedAt                 time.Time `json:"issuedAt"`
	ExpiresAt                time.Time `json:"expiresAt"`
	MaxDownloads             int       `json:"maxDownloads"`
	RequireEmailVerification bool      `json:"requireEmailVerification"`
}
