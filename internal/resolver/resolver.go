// Package resolver implements the remote identity resolver against the
// hosted identity provider's REST protocol: a password-grant token
// endpoint, a profile row fetch, a current-user endpoint and a logout
// endpoint.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/repository"
)

// Config carries the provider endpoint settings.
type Config struct {
	BaseURL string
	AnonKey string
	Timeout time.Duration
}

// Client talks to the hosted identity provider. It holds the provider
// access token for the lifetime of the process; the token itself is
// never persisted.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	logger *zap.Logger

	mu    sync.Mutex
	token string
}

// New creates a resolver client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
	}
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	User        authUser `json:"user"`
}

type authUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type profileRow struct {
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	IsActive       *bool      `json:"is_active"`
	UpdatedAt      *time.Time `json:"updated_at"`
	OrganizationID string     `json:"organization_id"`
	Organizations  *struct {
		Name string `json:"name"`
	} `json:"organizations"`
}

type providerError struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e providerError) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return "invalid credentials"
}

// Authenticate performs the password grant and merges the profile row
// into the resulting identity. A failed or empty profile fetch degrades
// to the member role instead of failing the login.
func (c *Client) Authenticate(ctx context.Context, handle, secret string) (*domain.Identity, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    handle,
		"password": secret,
	})

	status, resp, err := c.do(ctx, fasthttp.MethodPost, c.cfg.BaseURL+"/auth/v1/token?grant_type=password", body, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var pErr providerError
		_ = json.Unmarshal(resp, &pErr)
		if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity {
			return nil, domain.NewError(domain.ErrCodeInvalidCredentials, pErr.text())
		}
		return nil, domain.NewError(domain.ErrCodeUnknown, fmt.Sprintf("provider returned status %d", status))
	}

	var token tokenResponse
	if err := json.Unmarshal(resp, &token); err != nil || token.AccessToken == "" || token.User.ID == "" {
		return nil, domain.WrapError(domain.ErrCodeUnknown, "malformed provider response", err)
	}

	c.setToken(token.AccessToken)
	return c.resolveIdentity(ctx, token.User, token.AccessToken), nil
}

// CurrentSession re-derives the identity behind a still-valid provider
// session. The held token's expiry is checked locally before any network
// call; without a usable token the result is (nil, nil).
func (c *Client) CurrentSession(ctx context.Context) (*domain.Identity, error) {
	token := c.Token()
	if token == "" {
		return nil, nil
	}
	if expired(token) {
		c.setToken("")
		return nil, nil
	}

	status, resp, err := c.do(ctx, fasthttp.MethodGet, c.cfg.BaseURL+"/auth/v1/user", nil, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.setToken("")
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, domain.NewError(domain.ErrCodeUnknown, fmt.Sprintf("provider returned status %d", status))
	}

	var user authUser
	if err := json.Unmarshal(resp, &user); err != nil || user.ID == "" {
		return nil, domain.WrapError(domain.ErrCodeUnknown, "malformed provider response", err)
	}
	return c.resolveIdentity(ctx, user, token), nil
}

// SignOut terminates the provider-side session. The held token is
// dropped regardless of the outcome.
func (c *Client) SignOut(ctx context.Context) error {
	token := c.Token()
	c.setToken("")
	if token == "" {
		return nil
	}

	status, _, err := c.do(ctx, fasthttp.MethodPost, c.cfg.BaseURL+"/auth/v1/logout", nil, token)
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return domain.NewError(domain.ErrCodeUnknown, fmt.Sprintf("provider returned status %d", status))
	}
	return nil
}

// Ping probes the provider health endpoint. Used by the monitor only.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, fasthttp.MethodGet, c.cfg.BaseURL+"/auth/v1/health", nil, "")
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("provider health returned status %d", status)
	}
	return nil
}

// Token returns the currently held access token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// resolveIdentity merges the auth user with its profile row. Profile
// failures log a warning and fall back to the least-privileged role.
func (c *Client) resolveIdentity(ctx context.Context, user authUser, token string) *domain.Identity {
	identity := &domain.Identity{
		ID:        user.ID,
		Name:      user.Email,
		Email:     user.Email,
		Role:      domain.RoleMember,
		Active:    true,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}
	if user.UpdatedAt != nil {
		identity.UpdatedAt = *user.UpdatedAt
	}

	profile, err := c.fetchProfile(ctx, user.ID, token)
	if err != nil {
		c.logger.Warn("profile fetch failed, using default role",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return identity
	}
	if profile == nil {
		c.logger.Warn("no profile row, using default role", zap.String("user_id", user.ID))
		return identity
	}

	if profile.Name != "" {
		identity.Name = profile.Name
	}
	identity.Role = domain.ParseRole(profile.Role)
	if profile.IsActive != nil {
		identity.Active = *profile.IsActive
	}
	if profile.UpdatedAt != nil {
		identity.UpdatedAt = *profile.UpdatedAt
	}
	if identity.Role.TenantScoped() && profile.OrganizationID != "" {
		tenant := &domain.Tenant{ID: profile.OrganizationID}
		if profile.Organizations != nil {
			tenant.Name = profile.Organizations.Name
		}
		identity.Tenant = tenant
	}
	return identity
}

func (c *Client) fetchProfile(ctx context.Context, userID, token string) (*profileRow, error) {
	url := fmt.Sprintf(
		"%s/rest/v1/profiles?id=eq.%s&select=name,role,is_active,updated_at,organization_id,organizations(name)",
		c.cfg.BaseURL, userID,
	)
	status, resp, err := c.do(ctx, fasthttp.MethodGet, url, nil, token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.NewError(domain.ErrCodeProfileFetchFailed, fmt.Sprintf("profile endpoint returned status %d", status))
	}

	var rows []profileRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, domain.WrapError(domain.ErrCodeProfileFetchFailed, "malformed profile payload", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, bearer string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, domain.WrapError(domain.ErrCodeNetworkUnavailable, "identity provider unreachable", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set("apikey", c.cfg.AnonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, domain.WrapError(domain.ErrCodeNetworkUnavailable, "identity provider unreachable", err)
	}

	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

// expired reports whether the token's exp claim has passed. The claim is
// read without signature verification: the provider remains the
// authority, this only avoids a guaranteed-stale network round trip.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	return !claims.VerifyExpiresAt(time.Now().Unix(), false)
}

var _ repository.IdentityResolver = (*Client)(nil)
