package auth

import (
	"context"
	"log"
	"net/http"

	"github.com/adityar/secrets-wall/internal/models"
	"github.com/adityar/secrets-wall/internal/web"
)

// Sessions is the session-store capability the handlers need.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Handler holds the login, registration and OAuth HTTP handlers. Every
// failure path logs server-side and redirects; no error text reaches the
// user.
type Handler struct {
	creds    *CredentialService
	google   *GoogleOAuth
	sessions Sessions
	render   *web.Renderer
}

func NewHandler(creds *CredentialService, google *GoogleOAuth, sessions Sessions, render *web.Renderer) *Handler {
	return &Handler{creds: creds, google: google, sessions: sessions, render: render}
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, "login.html", nil)
}

// Login authenticates a local account and establishes a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form := models.CredentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(); err != nil {
		log.Printf("login: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.creds.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		log.Printf("login: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.startSession(w, r, user, "/login")
}

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, "register.html", nil)
}

// Register creates a local account and establishes a session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := models.CredentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(); err != nil {
		log.Printf("register: %v", err)
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	user, err := h.creds.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		log.Printf("register: %v", err)
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	h.startSession(w, r, user, "/register")
}

// GoogleBegin redirects to the Google consent page.
func (h *Handler) GoogleBegin(w http.ResponseWriter, r *http.Request) {
	h.google.Begin(w, r)
}

// GoogleCallback completes the OAuth exchange and establishes a session.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if err := h.google.VerifyState(r); err != nil {
		log.Printf("google callback: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.google.Complete(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Printf("google callback: %v", err)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.startSession(w, r, user, "/login")
}

// Logout invalidates the session server-side and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// startSession creates a session for user and redirects to /secrets, or
// back to fallback when session creation fails.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, fallback string) {
	token, err := h.sessions.Create(r.Context(), user.ID.Hex())
	if err != nil {
		log.Printf("session create: %v", err)
		http.Redirect(w, r, fallback, http.StatusFound)
		return
	}
	SetSessionCookie(w, token)
	http.Redirect(w, r, "/secrets", http.StatusFound)
}
