package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iwvelando/rate-impact/pkg/constants"
)

var (
	// ErrNotConfigured is returned when a collaborator is missing credentials.
	ErrNotConfigured = errors.New("lead sink not configured")

	// ErrCRMRejected is returned when the CRM answers without creating the lead.
	ErrCRMRejected = errors.New("crm rejected lead")
)

// ZohoConfig holds the OAuth client and refresh token for the Zoho CRM API.
type ZohoConfig struct {
	DC           string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// ZohoCRM creates leads through the Zoho CRM v2 API. Each lead exchanges the
// refresh token for a fresh access token.
type ZohoCRM struct {
	cfg         ZohoConfig
	accountsURL string
	apiURL      string
	client      *http.Client
}

// ZohoOption configures the Zoho client.
type ZohoOption func(*ZohoCRM)

// WithZohoHTTPClient sets a custom HTTP client.
func WithZohoHTTPClient(client *http.Client) ZohoOption {
	return func(z *ZohoCRM) { z.client = client }
}

// WithZohoBaseURLs overrides the accounts and API hosts.
func WithZohoBaseURLs(accounts, api string) ZohoOption {
	return func(z *ZohoCRM) {
		z.accountsURL = strings.TrimRight(accounts, "/")
		z.apiURL = strings.TrimRight(api, "/")
	}
}

// NewZohoCRM creates a Zoho CRM client.
func NewZohoCRM(cfg ZohoConfig, opts ...ZohoOption) (*ZohoCRM, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("%w: zoho client id, secret and refresh token are required", ErrNotConfigured)
	}
	if cfg.DC == "" {
		cfg.DC = constants.DefaultZohoDC
	}
	z := &ZohoCRM{
		cfg:         cfg,
		accountsURL: "https://accounts.zoho." + cfg.DC,
		apiURL:      "https://www.zohoapis." + cfg.DC,
		client:      &http.Client{},
	}
	for _, opt := range opts {
		opt(z)
	}
	return z, nil
}

type zohoToken struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error,omitempty"`
}

type zohoLead struct {
	LastName    string `json:"Last_Name"`
	FirstName   string `json:"First_Name"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone"`
	State       string `json:"State"`
	LeadSource  string `json:"Lead_Source"`
	Description string `json:"Description"`
}

type zohoLeadRequest struct {
	Data    []zohoLead `json:"data"`
	Trigger []string   `json:"trigger"`
}

type zohoLeadResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

// CreateLead creates the lead and returns its Zoho record ID.
func (z *ZohoCRM) CreateLead(ctx context.Context, rec Record) (string, error) {
	token, err := z.accessToken(ctx)
	if err != nil {
		return "", err
	}

	first, last := rec.SplitName()
	body := zohoLeadRequest{
		Data: []zohoLead{{
			LastName:    last,
			FirstName:   first,
			Email:       rec.Email,
			Phone:       rec.Phone,
			State:       rec.Region,
			LeadSource:  constants.LeadSource,
			Description: rec.Description(),
		}},
		Trigger: []string{"workflow"},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("zoho: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.apiURL+"/crm/v2/Leads", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoho: create lead: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrCRMRejected, resp.StatusCode, snippet(raw))
	}

	var result zohoLeadResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("zoho: decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].Status != "success" {
		return "", fmt.Errorf("%w: %s", ErrCRMRejected, snippet(raw))
	}
	return result.Data[0].Details.ID, nil
}

func (z *ZohoCRM) accessToken(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("refresh_token", z.cfg.RefreshToken)
	q.Set("client_id", z.cfg.ClientID)
	q.Set("client_secret", z.cfg.ClientSecret)
	q.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.accountsURL+"/oauth/v2/token?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("zoho: token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("zoho: token refresh failed: status %d: %s", resp.StatusCode, snippet(raw))
	}

	var tok zohoToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("zoho: decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("zoho: token refresh returned no access token: %s", tok.Error)
	}
	return tok.AccessToken, nil
}

func snippet(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
