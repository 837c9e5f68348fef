package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/iwvelando/rate-impact/pkg/constants"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

var notificationTemplate = template.Must(template.New("lead").Parse(`<h2>New Lead</h2>
<p><b>Name:</b> {{.Name}}</p>
<p><b>Email:</b> {{.Email}}</p>
<p><b>Phone:</b> {{.Phone}}</p>
<p><b>State:</b> {{.Region}}</p>
<p><b>Product:</b> {{.Product}}</p>
<p><b>Δ bps:</b> {{.DeltaBps}}</p>
<p><b>Δ income (est):</b> {{.EstimatedDeltaIncome}}</p>
<p><b>Consent:</b> {{if .ConsentGranted}}Yes{{else}}No{{end}}</p>
<p><b>UTM:</b> {{.Attribution}}</p>
`))

// ResendConfig configures team notification emails.
type ResendConfig struct {
	APIKey string
	From   string
	To     string
}

// ResendNotifier emails the team through the Resend API.
type ResendNotifier struct {
	cfg      ResendConfig
	endpoint string
	client   *http.Client
}

// ResendOption configures the notifier.
type ResendOption func(*ResendNotifier)

// WithResendHTTPClient sets a custom HTTP client.
func WithResendHTTPClient(client *http.Client) ResendOption {
	return func(n *ResendNotifier) { n.client = client }
}

// WithResendEndpoint overrides the send endpoint.
func WithResendEndpoint(endpoint string) ResendOption {
	return func(n *ResendNotifier) { n.endpoint = strings.TrimRight(endpoint, "/") }
}

// NewResendNotifier creates a notifier. The API key and recipient are required.
func NewResendNotifier(cfg ResendConfig, opts ...ResendOption) (*ResendNotifier, error) {
	if cfg.APIKey == "" || cfg.To == "" {
		return nil, fmt.Errorf("%w: resend api key and recipient are required", ErrNotConfigured)
	}
	if cfg.From == "" {
		cfg.From = constants.DefaultFromEmail
	}
	n := &ResendNotifier{
		cfg:      cfg,
		endpoint: defaultResendEndpoint,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type resendEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Notify sends the lead summary email.
func (n *ResendNotifier) Notify(ctx context.Context, rec Record) error {
	var html bytes.Buffer
	if err := notificationTemplate.Execute(&html, rec); err != nil {
		return fmt.Errorf("resend: render email: %w", err)
	}

	data, err := json.Marshal(resendEmail{
		From:    n.cfg.From,
		To:      n.cfg.To,
		Subject: constants.NotificationSubject,
		HTML:    html.String(),
	})
	if err != nil {
		return fmt.Errorf("resend: marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, snippet(raw))
	}
	return nil
}
