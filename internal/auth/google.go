package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/adityar/secrets-wall/internal/models"
)

// ErrProvider wraps any failure talking to the identity provider. The
// caller logs it and redirects to /login; there are no retries.
var ErrProvider = errors.New("auth provider error")

const (
	stateCookie        = "oauthstate"
	defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleOAuth exchanges an authorization code with Google for a stable
// external identifier, then finds-or-creates the matching user.
type GoogleOAuth struct {
	Config      *oauth2.Config
	UserinfoURL string

	users UserStore
}

func NewGoogleOAuth(clientID, clientSecret, callbackURL string, users UserStore) *GoogleOAuth {
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		UserinfoURL: defaultUserinfoURL,
		users:       users,
	}
}

// Begin sets a random state cookie and redirects to the Google consent page.
func (g *GoogleOAuth) Begin(w http.ResponseWriter, r *http.Request) {
	state := newState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	http.Redirect(w, r, g.Config.AuthCodeURL(state), http.StatusFound)
}

// VerifyState compares the state echoed by the provider with the cookie set
// by Begin.
func (g *GoogleOAuth) VerifyState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" {
		return fmt.Errorf("%w: missing oauth state cookie", ErrProvider)
	}
	if r.FormValue("state") != cookie.Value {
		return fmt.Errorf("%w: oauth state mismatch", ErrProvider)
	}
	return nil
}

// Complete exchanges the authorization code, fetches the profile and
// finds-or-creates the user keyed by the stable Google id. Exactly one
// user document exists per identifier; the store's unique index resolves
// concurrent first-time callbacks.
func (g *GoogleOAuth) Complete(ctx context.Context, code string) (*models.User, error) {
	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrProvider, err)
	}

	googleID, err := g.fetchProfileID(ctx, token)
	if err != nil {
		return nil, err
	}

	return g.users.UpsertByGoogleID(ctx, googleID)
}

func (g *GoogleOAuth) fetchProfileID(ctx context.Context, token *oauth2.Token) (string, error) {
	resp, err := g.Config.Client(ctx, token).Get(g.UserinfoURL)
	if err != nil {
		return "", fmt.Errorf("%w: userinfo fetch: %v", ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: userinfo status %d", ErrProvider, resp.StatusCode)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("%w: userinfo decode: %v", ErrProvider, err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("%w: userinfo missing id", ErrProvider)
	}
	return profile.ID, nil
}

func newState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
