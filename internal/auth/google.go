package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	StateCookie     = "pennypal_oauth_state"
	googleUserInfo  = "https://openidconnect.googleapis.com/v1/userinfo"
	stateCookieLife = 10 * time.Minute
)

// GoogleProfile is the subset of the userinfo response used for sign-in.
type GoogleProfile struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider runs the authorisation code flow against Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	secure      bool
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string, secureCookies bool) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfo,
		secure:      secureCookies,
	}
}

// Begin sets a state cookie and returns the consent page URL.
func (g *GoogleProvider) Begin(w http.ResponseWriter) string {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(stateCookieLife.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Complete checks the state, exchanges the code and fetches the profile.
func (g *GoogleProvider) Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (GoogleProfile, error) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return GoogleProfile{}, fmt.Errorf("google sign-in: %s", e)
	}

	c, err := r.Cookie(StateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		return GoogleProfile{}, fmt.Errorf("google sign-in: state mismatch")
	}
	http.SetCookie(w, &http.Cookie{Name: StateCookie, Path: "/api/auth/google", MaxAge: -1})

	tok, err := g.config.Exchange(ctx, q.Get("code"))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("token exchange: %w", err)
	}
	return g.fetchProfile(ctx, g.config.Client(ctx, tok))
}

func (g *GoogleProvider) fetchProfile(ctx context.Context, client *http.Client) (GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var p GoogleProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.ID == "" || p.Email == "" {
		return GoogleProfile{}, fmt.Errorf("userinfo missing subject or email")
	}
	if !p.EmailVerified {
		return GoogleProfile{}, fmt.Errorf("google email %s is not verified", p.Email)
	}
	return p, nil
}
