package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/core/domain"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == code
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// Client talks to the user management API on behalf of a Session.
type Client struct {
	baseURL    string
	http       *http.Client
	session    *Session
	retries    int
	retryDelay time.Duration
	log        zerolog.Logger
}

func New(session *Session, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       hc,
		session:    session,
		retries:    max(opts.Retries, 0),
		retryDelay: opts.RetryDelay,
		log:        opts.Log,
	}
}

func (c *Client) Session() *Session { return c.session }

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// RegisterInput mirrors the registration form.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ProfileUpdate is a partial update of the signed-in user. Nil fields are
// not sent.
type ProfileUpdate struct {
	Name                 *string `json:"name,omitempty"`
	Email                *string `json:"email,omitempty"`
	CurrentPassword      *string `json:"current_password,omitempty"`
	Password             *string `json:"password,omitempty"`
	PasswordConfirmation *string `json:"password_confirmation,omitempty"`
}

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// Register creates an account and signs the session in as it.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return c.authenticate(ctx, "/register", in)
}

// Login signs the session in.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return c.authenticate(ctx, "/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if err := c.session.Set(env.Token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the token server-side. The local session is cleared even
// when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil)
	if clearErr := c.session.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// Me fetches the signed-in user and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	u, err := decodeUser(c.do(ctx, http.MethodGet, "/me", nil))
	if err != nil {
		return nil, err
	}
	if err := c.session.UpdateUser(*u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the signed-in user and merges the result into the
// session.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.User, error) {
	u, err := decodeUser(c.do(ctx, http.MethodPut, "/me", in))
	if err != nil {
		return nil, err
	}
	if err := c.session.UpdateUser(*u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := json.Unmarshal(env.Data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	return decodeUser(c.do(ctx, http.MethodPost, "/users", in))
}

func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return decodeUser(c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil))
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*domain.User, error) {
	return decodeUser(c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), in))
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	return err
}

func decodeUser(env *envelope, err error) (*domain.User, error) {
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// do sends one API call. Transport failures are retried up to c.retries
// times; any HTTP response, including 5xx, is final. A 401 clears the
// session.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = c.send(ctx, method, path, payload)
		if err == nil || attempt >= c.retries || !isNetworkError(err) {
			break
		}
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Int("attempt", attempt+1).Msg("retrying request")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			if clearErr := c.session.Clear(); clearErr != nil {
				c.log.Warn().Err(clearErr).Msg("failed to clear session")
			}
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnprocessableEntity && len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &apiErr.Fields)
		}
		return nil, apiErr
	}
	return &env, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

// isNetworkError reports failures where no HTTP response was received.
// Caller cancellation is not retried.
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &netErr) || errors.As(err, &opErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
