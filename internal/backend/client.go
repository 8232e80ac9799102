// Package backend wraps the hosted auth/database service. The app owns no
// business logic here: requests go out, JSON comes back, failures map to
// sentinel errors that task bodies fold into Results.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kalev/gymdesk/internal/logging"
)

const requestTimeout = 10 * time.Second

var (
	ErrInvalidCredentials = fmt.Errorf("backend: invalid email or password")
	ErrEmailTaken         = fmt.Errorf("backend: email already registered")
	ErrUnauthorized       = fmt.Errorf("backend: session expired or invalid")
	ErrNotFound           = fmt.Errorf("backend: not found")
)

// Client talks to one service project, identified by its base URL and
// public (anon) API key.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     *logging.Logger
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: requestTimeout},
		log:     logging.New[Client](),
	}
}

// User is the service-side identity record.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated session as returned by the auth endpoints.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	User         User      `json:"user"`
	ExpiresAt    time.Time `json:"-"`
}

// Expired reports whether the access token is past (or within a minute of)
// its expiry.
func (s Session) Expired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt.Add(-time.Minute))
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account and returns its first session.
func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	c.log.Debug("auth", "sign up "+email)
	return c.sessionRequest(ctx, "/auth/v1/signup", "", credentials{Email: email, Password: password})
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	c.log.Debug("auth", "sign in "+email)
	return c.sessionRequest(ctx, "/auth/v1/token", "password", credentials{Email: email, Password: password})
}

// RefreshSession exchanges a refresh token for a fresh session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	c.log.Debug("auth", "refresh session")
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}
	return c.sessionRequest(ctx, "/auth/v1/token", "refresh_token", body)
}

// SignOut revokes the session server-side. A 401 is treated as success:
// the session was already gone.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	c.log.Debug("auth", "sign out")
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusUnauthorized {
		return c.apiError(resp)
	}
	return nil
}

func (c *Client) sessionRequest(ctx context.Context, path, grantType string, body any) (Session, error) {
	if grantType != "" {
		path += "?grant_type=" + url.QueryEscape(grantType)
	}
	resp, err := c.do(ctx, http.MethodPost, path, body, "")
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Session{}, c.apiError(resp)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Session{}, fmt.Errorf("backend: decode session: %w", err)
	}
	s.ExpiresAt = tokenExpiry(s)
	return s, nil
}

// tokenExpiry reads exp from the access token claims. The token was signed
// by the service so it is parsed without verification; the ExpiresIn field
// is the fallback.
func tokenExpiry(s Session) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if s.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// do issues one request with the project headers. accessToken may be empty
// for unauthenticated calls; the anon key is always sent.
func (c *Client) do(ctx context.Context, method, path string, body any, accessToken string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode request: %w", err)
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := accessToken
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	return resp, nil
}

type apiErrorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

func (b apiErrorBody) text() string {
	for _, s := range []string{b.ErrorDescription, b.Msg, b.Message} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) apiError(resp *http.Response) error {
	var body apiErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &body)
	text := strings.ToLower(body.text())

	switch {
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(text, "invalid login credentials"),
		body.ErrorCode == "invalid_credentials":
		return ErrInvalidCredentials
	case resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(text, "registered"),
		body.ErrorCode == "user_already_exists":
		return ErrEmailTaken
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	}
	if text == "" {
		text = resp.Status
	}
	return fmt.Errorf("backend: %s %s: %s", resp.Request.Method, resp.Request.URL.Path, text)
}
