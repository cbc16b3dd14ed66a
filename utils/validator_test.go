package utils

import (
	"testing"

	"download-request-service/model"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{
			name:    "Valid address",
			email:   "customer@example.com",
			wantErr: nil,
		},
		{
			name:    "Valid address with plus tag",
			email:   "customer+orders@example.com",
			wantErr: nil,
		},
		{
			name:    "Valid address with subdomain",
			email:   "ops@mail.example.co.uk",
			wantErr: nil,
		},
		{
			name:    "Empty address",
			email:   "",
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "Missing at sign",
			email:   "customer.example.com",
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Missing domain dot",
			email:   "customer@localhost",
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Display name form",
			email:   "Customer <customer@example.com>",
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Missing local part",
			email:   "@example.com",
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Spaces",
			email:   "not an email",
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if err != tt.wantErr {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateReason(t *testing.T) {
	valid := []model.RequestReason{
		model.ReasonLinkExpired,
		model.ReasonLostEmail,
		model.ReasonDownloadFailed,
		model.ReasonDeviceChange,
		model.ReasonOther,
	}
	for _, reason := range valid {
		if err := ValidateReason(reason); err != nil {
			t.Errorf("ValidateReason(%q) = %v, want nil", reason, err)
		}
	}

	if err := ValidateReason(model.RequestReason("forgot")); err != ErrInvalidReason {
		t.Errorf("ValidateReason(forgot) = %v, want %v", err, ErrInvalidReason)
	}
	if err := ValidateReason(""); err != ErrInvalidReason {
		t.Errorf("ValidateReason(\"\") = %v, want %v", err, ErrInvalidReason)
	}
}

func TestValidatePriority(t *testing.T) {
	if err := ValidatePriority(model.PriorityUrgent); err != nil {
		t.Errorf("ValidatePriority(urgent) = %v, want nil", err)
	}
	if err := ValidatePriority(model.RequestPriority("asap")); err != ErrInvalidPriority {
		t.Errorf("ValidatePriority(asap) = %v, want %v", err, ErrInvalidPriority)
	}
}
