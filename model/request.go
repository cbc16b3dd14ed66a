package model

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a download link request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusRejected   RequestStatus = "rejected"
)

// Statuses lists every valid lifecycle state in display order.
var Statuses = []RequestStatus{StatusPending, StatusProcessing, StatusCompleted, StatusRejected}

// Valid reports whether s is a known lifecycle state.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Pending may become processing or rejected; processing may resolve to
// completed or rejected. Terminal states never transition.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusRejected
	case StatusProcessing:
		return next == StatusCompleted || next == StatusRejected
	}
	return false
}

// RequestReason is the customer's justification category for needing new links.
type RequestReason string

const (
	ReasonLinkExpired    RequestReason = "link_expired"
	ReasonLostEmail      RequestReason = "lost_email"
	ReasonDownloadFailed RequestReason = "download_failed"
	ReasonDeviceChange   RequestReason = "device_change"
	ReasonOther          RequestReason = "other"
)

// Valid reports whether r is a known reason.
func (r RequestReason) Valid() bool {
	switch r {
	case ReasonLinkExpired, ReasonLostEmail, ReasonDownloadFailed, ReasonDeviceChange, ReasonOther:
		return true
	}
	return false
}

// Human returns the display form of the reason ("link_expired" -> "Link Expired").
func (r RequestReason) Human() string {
	return titleWords(strings.ReplaceAll(string(r), "_", " "))
}

// RequestPriority is the operator-facing urgency of a request.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Human returns the display form of the priority ("urgent" -> "Urgent").
func (p RequestPriority) Human() string {
	return titleWords(string(p))
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// DownloadLinkRequest is a customer's request for replacement download links.
type DownloadLinkRequest struct {
	ID                  string          `json:"id"`
	CustomerEmail       string          `json:"customerEmail"`
	CustomerName        string          `json:"customerName,omitempty"`
	OrderID             string          `json:"orderID"`
	ProjectTitle        string          `json:"projectTitle,omitempty"`
	Reason              RequestReason   `json:"reason"`
	Priority            RequestPriority `json:"priority"`
	CustomerMessage     string          `json:"customerMessage,omitempty"`
	Status              RequestStatus   `json:"status"`
	AdminNotes          string          `json:"adminNotes,omitempty"`
	ProcessedBy         string          `json:"processedBy,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	ProcessedAt         time.Time       `json:"processedAt,omitempty"`
	NewLinksSentAt      time.Time       `json:"newLinksSentAt,omitempty"`
	LinksGeneratedCount int             `json:"linksGeneratedCount,omitempty"`
}
