// Package email sends recommendation digests through a transactional email
// vendor's HTTP API. Sending is fire and forget from the pipeline's point
// of view: failures are logged, never propagated.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nexora/opportunity-agent/internal/types"
)

// DefaultTimeout bounds one vendor API call.
const DefaultTimeout = 15 * time.Second

// Mailer delivers digest emails.
type Mailer interface {
	SendDigest(ctx context.Context, to, name string, ranked *types.RankedMatches) error
}

// VendorMailer posts messages to a transactional email vendor API
// (Resend-compatible request shape).
type VendorMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// NewVendorMailer creates a mailer. endpoint and apiKey must be set; from
// is the sender address.
func NewVendorMailer(endpoint, apiKey, from string) (*VendorMailer, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("email endpoint and API key are required")
	}
	if from == "" {
		from = "digest@nexora.app"
	}
	return &VendorMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: DefaultTimeout},
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendDigest renders the ranked matches into an HTML digest and posts it
// to the vendor.
func (m *VendorMailer) SendDigest(ctx context.Context, to, name string, ranked *types.RankedMatches) error {
	subject := fmt.Sprintf("Your Opportunity Digest - %s", time.Now().Format("January 2, 2006"))
	payload := sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    renderDigest(name, ranked),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email vendor returned status %d", resp.StatusCode)
	}
	return nil
}

// SendTest sends a minimal message to verify vendor credentials.
func (m *VendorMailer) SendTest(ctx context.Context, to string) error {
	return m.SendDigest(ctx, to, "there", &types.RankedMatches{})
}
