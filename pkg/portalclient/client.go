package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second

	loginPath  = "/users/login"
	logoutPath = "/users/logout"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	AppName string
}

// APIError is a non-2xx answer from the portal API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("portal api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("portal api %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL  string
	appName  string
	http     *http.Client
	identity *IdentitySession
	notifier *Notifier
	logger   *slog.Logger
}

func NewClient(config Config, identity *IdentitySession, notifier *Notifier, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		appName:  config.AppName,
		http:     &http.Client{Timeout: timeout},
		identity: identity,
		notifier: notifier,
		logger:   logger,
	}
}

func (c *Client) Identity() *IdentitySession {
	return c.identity
}

// do sends one request and decodes the envelope's data into out.
// A 401 publishes a session timeout unless the call was login or logout.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.identity.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.appName != "" {
		req.Header.Set("X-App-Name", c.appName)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			if apiErr.Message == "" {
				apiErr.Message = env.Error.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && signalsExpiry(path) {
			c.logger.Warn("portal session rejected", "path", path, "code", apiErr.Code)
			c.notifier.Publish(SessionExpired{Reason: ReasonSessionTimeout})
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

// signalsExpiry reports whether a 401 on path means the cached session is gone.
// Login answers 401 for bad credentials; logout may hit an already dead session.
func signalsExpiry(path string) bool {
	return path != loginPath && path != logoutPath
}

type LoginResult struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Avatar     *string   `json:"avatar"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	UserType   string    `json:"user_type"`
	SessionID  int64     `json:"session_id,omitempty"`
}

// Login authenticates and caches the identity. If the server did not open a session
// the client asks for one; failing that is logged and ignored.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var result LoginResult
	err := c.do(ctx, http.MethodPost, loginPath, map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.SessionID == 0 {
		var created struct {
			ID int64 `json:"id"`
		}
		if err := c.identity.persistent.Set(KeyToken, result.Token); err != nil {
			return nil, fmt.Errorf("failed to cache token: %w", err)
		}
		sessionErr := c.do(ctx, http.MethodPost, "/sessions", map[string]interface{}{
			"user_id":    result.ID,
			"user_name":  result.Name,
			"user_email": result.Email,
			"department": result.Department,
			"role":       result.Role,
			"app_name":   c.appName,
		}, &created)
		if sessionErr != nil {
			c.logger.Warn("failed to register session after login", "user_id", result.ID, "error", sessionErr)
		} else {
			result.SessionID = created.ID
		}
	}

	snapshot := UserSnapshot{
		ID:         result.ID,
		Name:       result.Name,
		Email:      result.Email,
		Role:       result.Role,
		Department: result.Department,
		Position:   result.Position,
		Avatar:     result.Avatar,
		SessionID:  result.SessionID,
	}
	if err := c.identity.Save(result.Token, result.UserType, email, snapshot); err != nil {
		if clearErr := c.identity.Clear(); clearErr != nil {
			c.logger.Error("failed to drop partial identity", "user_id", result.ID, "error", clearErr)
		}
		return nil, fmt.Errorf("failed to cache identity: %w", err)
	}
	if err := c.identity.Remember(email, remember); err != nil {
		return nil, fmt.Errorf("failed to cache remembered email: %w", err)
	}

	return &result, nil
}

type TerminateResult struct {
	SessionID         int64 `json:"session_id"`
	UserID            int64 `json:"user_id,omitempty"`
	Deleted           bool  `json:"deleted"`
	AlreadyGone       bool  `json:"already_gone"`
	RemainingSessions int   `json:"remaining_sessions"`
}

// TerminateSession is the admin action; errors go back to the caller untouched.
func (c *Client) TerminateSession(ctx context.Context, id int64) (*TerminateResult, error) {
	var result TerminateResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/sessions/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TerminateOwnSession ends one of the caller's sessions and raises a force logout
// when the server reports none are left.
func (c *Client) TerminateOwnSession(ctx context.Context, id int64) (*TerminateResult, error) {
	result, err := c.TerminateSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RemainingSessions == 0 {
		c.notifier.Publish(SessionExpired{Reason: ReasonForceLogout})
	}
	return result, nil
}

// Logout asks the server to drop the session, then clears local state regardless.
func (c *Client) Logout(ctx context.Context) string {
	if c.identity.IsAuthenticated() {
		if err := c.do(ctx, http.MethodPost, logoutPath, nil, nil); err != nil {
			c.logger.Warn("logout request failed", "error", err)
		}
	}
	if err := c.identity.Clear(); err != nil {
		c.logger.Warn("failed to clear identity", "error", err)
	}
	return LoginPath
}
