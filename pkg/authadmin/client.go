package authadmin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"divisadero-api/pkg/apperr"
)

// ErrUserExists reports that the identity provider already has a user
// registered for the email.
var ErrUserExists = errors.New("email already registered")

// CreateUserParams are the inputs to the admin create-user endpoint.
// Organization hints go into both metadata maps so the invited user's
// session token carries them.
type CreateUserParams struct {
	Email        string
	UserMetadata map[string]interface{}
	AppMetadata  map[string]interface{}
	RedirectTo   string
}

// AdminUser is the provider's representation of a created user.
type AdminUser struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	ConfirmationSentAt *time.Time `json:"confirmation_sent_at,omitempty"`
	InvitedAt          *time.Time `json:"invited_at,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

// EmailDispatched reports whether the provider already sent an invitation
// or confirmation email for this user.
func (u *AdminUser) EmailDispatched() bool {
	return u.ConfirmationSentAt != nil || u.InvitedAt != nil
}

type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e *errorResponse) text() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	default:
		return e.ErrorDescription
	}
}

// Client talks to the identity provider's administrative API using the
// elevated service key.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new admin API client instance
func NewClient(baseURL, serviceKey string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// Configured reports whether the client has everything it needs to talk
// to the provider.
func (c *Client) Configured() bool {
	return c.BaseURL != "" && c.ServiceKey != ""
}

// CreateUser creates a user through the admin API without requiring a
// password. ErrUserExists is returned when the email is already taken.
func (c *Client) CreateUser(params CreateUserParams) (*AdminUser, error) {
	c.Logger.Info("Creating user via admin API", zap.String("email", params.Email))

	payload := map[string]interface{}{
		"email":         params.Email,
		"email_confirm": false,
		"user_metadata": params.UserMetadata,
		"app_metadata":  params.AppMetadata,
	}
	if params.RedirectTo != "" {
		payload["redirect_to"] = params.RedirectTo
	}

	body, status, err := c.post("/auth/v1/admin/users", payload)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.text()
		if strings.Contains(strings.ToLower(msg), "already") {
			return nil, ErrUserExists
		}
		c.Logger.Error("Admin create user failed",
			zap.Int("status_code", status),
			zap.String("response", string(body)))
		return nil, apperr.Newf(apperr.Upstream, "admin API error (%d): %s", status, msg)
	}

	var user AdminUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to parse admin API response", err)
	}
	return &user, nil
}

// GenerateLink asks the provider for an action link of the given type
// ("invite", "recovery", ...) and returns it.
func (c *Client) GenerateLink(linkType, email, redirectTo string) (string, error) {
	c.Logger.Info("Generating action link",
		zap.String("type", linkType),
		zap.String("email", email))

	payload := map[string]interface{}{
		"type":  linkType,
		"email": email,
	}
	if redirectTo != "" {
		payload["redirect_to"] = redirectTo
	}

	body, status, err := c.post("/auth/v1/admin/generate_link", payload)
	if err != nil {
		return "", err
	}

	if status < 200 || status >= 300 {
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		c.Logger.Error("Generate link failed",
			zap.Int("status_code", status),
			zap.String("response", string(body)))
		return "", apperr.Newf(apperr.Upstream, "admin API error (%d): %s", status, errResp.text())
	}

	var resp struct {
		ActionLink string `json:"action_link"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperr.Wrap(apperr.Upstream, "failed to parse generate link response", err)
	}
	if resp.ActionLink == "" {
		return "", apperr.New(apperr.Upstream, "admin API returned no action link")
	}
	return resp.ActionLink, nil
}

func (c *Client) post(path string, payload interface{}) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s%s", c.BaseURL, path), bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Admin API request failed", zap.String("path", path), zap.Error(err))
		return nil, 0, apperr.Wrap(apperr.Upstream, "admin API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Upstream, "failed to read admin API response", err)
	}
	return body, resp.StatusCode, nil
}
