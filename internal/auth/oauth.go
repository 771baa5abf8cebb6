package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

const StateCookie = "oauth_state"

var ErrUnknownProvider = errors.New("unknown oauth provider")

// Profile is what a provider tells us about the user after the code exchange.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

func Google(clientID, secret, redirectURL string) *Provider {
	return &Provider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
	}
}

func Facebook(clientID, secret, redirectURL string) *Provider {
	return &Provider{
		Name: "facebook",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
	}
}

// AuthURL asks for offline access and always shows the consent screen.
func (p *Provider) AuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange code: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: userinfo: %w", p.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: userinfo status %d", p.Name, resp.StatusCode)
	}

	var prof Profile
	if err := json.NewDecoder(resp.Body).Decode(&prof); err != nil {
		return nil, fmt.Errorf("%s: decode userinfo: %w", p.Name, err)
	}
	if prof.Email == "" {
		return nil, fmt.Errorf("%s: account has no email", p.Name)
	}
	return &prof, nil
}

// Providers holds the configured OAuth providers by name.
type Providers map[string]*Provider

func (ps Providers) Get(name string) (*Provider, error) {
	p, ok := ps[name]
	if !ok || p.Config.ClientID == "" {
		return nil, ErrUnknownProvider
	}
	return p, nil
}
