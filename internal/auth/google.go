package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "mindwell-backend/internal/shared/auth"
	"mindwell-backend/internal/shared/server/respond"
	"mindwell-backend/internal/shared/telemetry"
	"mindwell-backend/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleStateTTL    = 5 * time.Minute
)

var (
	errNotConfigured = respond.NewProblem(http.StatusInternalServerError, "auth_not_configured", "Google auth not configured")
	errMissingParams = respond.NewProblem(http.StatusBadRequest, "invalid_request", "missing state or code")
	errBadState      = respond.NewProblem(http.StatusBadRequest, "invalid_request", "invalid or expired state")
	errExchange      = respond.NewProblem(http.StatusBadRequest, "invalid_request", "failed to exchange code")
	errProfile       = respond.NewProblem(http.StatusBadGateway, "auth_failed", "failed to fetch user profile")
)

// AccountLinker maps a Google identity onto a local account.
type AccountLinker interface {
	UpsertFromGoogle(ctx context.Context, subject, email string) (users.User, error)
}

type TokenSigner interface {
	Sign(subject string, claims sharedauth.Claims) (string, error)
}

// GoogleService runs the authorization-code flow and hands the UI a session token.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	stateStore  *stateStore
	accounts    AccountLinker
	tokens      TokenSigner
	userInfoURL string
}

func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, accounts AccountLinker, tokens TokenSigner) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		stateStore:  newStateStore(),
		accounts:    accounts,
		tokens:      tokens,
		userInfoURL: googleUserInfoURL,
	}
}

// Configured reports whether all OAuth client settings are present.
func (s *GoogleService) Configured() bool {
	cfg := s.oauthConfig
	return cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RedirectURL != "" && s.accounts != nil && s.tokens != nil
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.Configured() {
		respond.Fail(c, errNotConfigured)
		return
	}
	state := s.stateStore.issue(googleStateTTL)
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

func (s *GoogleService) callback(c *gin.Context) {
	target, err := s.complete(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// complete exchanges code for a profile, links the account and returns the UI redirect carrying a session token.
func (s *GoogleService) complete(ctx context.Context, state, code string) (string, error) {
	if !s.Configured() {
		return "", errNotConfigured
	}
	if state == "" || code == "" {
		return "", errMissingParams
	}
	if !s.stateStore.consume(state) {
		return "", errBadState
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", &respond.Problem{Status: errExchange.Status, Body: errExchange.Body, Wrapped: err}
	}
	profile, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return "", &respond.Problem{Status: errProfile.Status, Body: errProfile.Body, Wrapped: err}
	}

	user, err := s.accounts.UpsertFromGoogle(ctx, profile.Sub, profile.Email)
	if err != nil {
		return "", respond.Internal("internal_error", "failed to link account", err)
	}
	session, err := s.tokens.Sign(user.ID, sharedauth.Claims{
		Name:     users.DisplayName(user),
		Email:    user.Email,
		Provider: users.ProviderGoogle,
	})
	if err != nil {
		return "", respond.Internal("internal_error", "failed to issue token", err)
	}
	target, err := appendToken(s.uiRedirect, session)
	if err != nil {
		return "", respond.Internal("internal_error", "failed to redirect", err)
	}

	telemetry.Info("auth.google.login", map[string]any{"user_id": user.ID})
	return target, nil
}

type googleProfile struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := s.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	// v2 userinfo answers with "id".
	if p.Sub == "" {
		p.Sub = p.ID
	}
	if p.Sub == "" {
		return googleProfile{}, errors.New("userinfo without subject")
	}
	return p, nil
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
