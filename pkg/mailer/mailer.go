package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"divisadero-api/pkg/apperr"
	"divisadero-api/pkg/config"
)

const defaultBaseURL = "https://api.resend.com"

// Client sends transactional email through the hosted email API.
type Client struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	FromName    string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// NewClient creates a new email client instance
func NewClient(cfg *config.EmailConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:     defaultBaseURL,
		APIKey:      cfg.APIKey,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		Logger:      logger,
	}
}

// Enabled reports whether an API key is configured. Callers skip sending
// when it is not; that is not a hard failure.
func (c *Client) Enabled() bool {
	return c.APIKey != ""
}

// Send dispatches a single HTML email from the configured sender identity.
func (c *Client) Send(to, subject, html string) error {
	payload := map[string]interface{}{
		"from":    fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress),
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Email request failed", zap.Error(err))
		return apperr.Wrap(apperr.Upstream, "email API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to read email API response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Error("Email send failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)))
		return apperr.Newf(apperr.Upstream, "email API error (%d): %s", resp.StatusCode, string(body))
	}

	c.Logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
