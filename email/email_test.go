package email

import (
	"strings"
	"testing"
	"time"

	"download-request-service/config"
	"download-request-service/model"
)

func sampleRequest() model.DownloadLinkRequest {
	return model.DownloadLinkRequest{
		ID:            "req-1",
		CustomerEmail: "customer@example.com",
		CustomerName:  "Jordan Example",
		OrderID:       "TC-1001",
		ProjectTitle:  "E-Commerce Platform",
		Reason:        model.ReasonLinkExpired,
		Priority:      model.PriorityHigh,
	}
}

func TestAcknowledgmentBody(t *testing.T) {
	body := AcknowledgmentBody(sampleRequest())

	wantFragments := []string{
		"Dear Jordan Example",
		"Order ID: TC-1001",
		"Project: E-Commerce Platform",
		"Reason: Link Expired",
		"Priority: High",
		"Review Time: 24-48 hours",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(body, fragment) {
			t.Errorf("AcknowledgmentBody() missing %q", fragment)
		}
	}
}

func TestAcknowledgmentBody_Fallbacks(t *testing.T) {
	req := sampleRequest()
	req.CustomerName = ""
	req.ProjectTitle = ""

	body := AcknowledgmentBody(req)

	if !strings.Contains(body, "Dear Customer") {
		t.Error("AcknowledgmentBody() should fall back to \"Customer\"")
	}
	if !strings.Contains(body, "Project: Download Links") {
		t.Error("AcknowledgmentBody() should fall back to \"Download Links\"")
	}
}

func TestCompletionBody(t *testing.T) {
	body := CompletionBody(sampleRequest())

	wantFragments := []string{
		"Dear Jordan Example",
		"Order ID: TC-1001",
		"Project: E-Commerce Platform",
		"Time-limited (72 hours)",
		"Download-limited (5 downloads per document)",
		"Secure Documents Ready",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(body, fragment) {
			t.Errorf("CompletionBody() missing %q", fragment)
		}
	}
}

func TestSendEmails_DisabledServiceIsNoOp(t *testing.T) {
	es := NewEmailService(config.SMTPConfig{Enabled: false})

	if err := es.SendRequestAcknowledgment(sampleRequest(), ""); err != nil {
		t.Errorf("SendRequestAcknowledgment() error = %v, want nil when disabled", err)
	}
	if err := es.SendRequestCompletion(sampleRequest(), ""); err != nil {
		t.Errorf("SendRequestCompletion() error = %v, want nil when disabled", err)
	}

	delivery := Delivery{
		RecipientEmail: "customer@example.com",
		RecipientName:  "Jordan Example",
		OrderID:        "TC-1001",
		ProjectTitle:   "E-Commerce Platform",
		Documents: []SecureDocument{
			{DocumentName: "Report.pdf", SecureURL: "https://downloads.example.com/download/abc", Category: "report", ReviewStage: "review_1", Size: 2048},
		},
		ExpiresAt:    time.Now().Add(72 * time.Hour),
		MaxDownloads: 5,
	}
	if err := es.SendSecureDocumentDelivery(delivery); err != nil {
		t.Errorf("SendSecureDocumentDelivery() error = %v, want nil when disabled", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{"Megabytes", 5 << 20, "5.0 MB"},
		{"Kilobytes", 2048, "2.0 KB"},
		{"Bytes", 512, "512 B"},
		{"Zero", 0, "unknown size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSize(tt.size); got != tt.want {
				t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}
