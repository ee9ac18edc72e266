package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrProfileUnavailable = errors.New("could not read the Google profile")
	ErrEmailNotVerified   = errors.New("Google email is not verified")
	ErrForeignDomain      = errors.New("Google account is outside the firm domain")
	ErrOAuthNotConfigured = errors.New("Google sign-in is not configured")
)

// Identity is the part of a Google profile used to match a LexDesk account
type Identity struct {
	Subject       string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	HostedDomain  string `json:"hd"`
}

// GoogleConfig holds the OAuth client registration.
// HostedDomain, when set, limits sign-in to one Google Workspace domain.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	HostedDomain string

	// overridable in tests
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Google signs users in with their Google account
type Google struct {
	config       *oauth2.Config
	hostedDomain string
	userInfoURL  string
}

// NewGoogle creates the Google sign-in client
func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = googleUserInfoURL
	}
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		hostedDomain: strings.ToLower(cfg.HostedDomain),
		userInfoURL:  userInfo,
	}
}

// IsConfigured reports whether client credentials are present
func (g *Google) IsConfigured() bool {
	return g.config.ClientID != "" && g.config.ClientSecret != ""
}

// AuthURL returns the consent page URL carrying state
func (g *Google) AuthURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	if g.hostedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", g.hostedDomain))
	}
	return g.config.AuthCodeURL(state, opts...)
}

// Authenticate exchanges the authorization code and returns the verified identity.
func (g *Google) Authenticate(ctx context.Context, code string) (*Identity, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProfileUnavailable, resp.StatusCode, body)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))

	if !id.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}
	// hd in the consent URL is only a hint; the profile is authoritative
	if g.hostedDomain != "" && !strings.EqualFold(id.HostedDomain, g.hostedDomain) {
		return nil, ErrForeignDomain
	}
	return &id, nil
}
