package model

import "time"

// Order is a completed purchase of a project.
type Order struct {
	ID            string    `json:"id"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName,omitempty"`
	ProjectID     string    `json:"projectID"`
	ProjectTitle  string    `json:"projectTitle"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Project is a digital-goods listing with deliverable documents.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is a deliverable file catalogued under a project.
type Document struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectID"`
	Name        string `json:"name"`
	URL         string `json:"url"` // canonical storage locator, never exposed to customers
	Category    string `json:"category,omitempty"`
	ReviewStage string `json:"reviewStage,omitempty"`
	Size        int64  `json:"size,omitempty"`
}
