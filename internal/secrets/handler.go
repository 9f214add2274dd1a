package secrets

import (
	"context"
	"log"
	"net/http"

	"github.com/adityar/secrets-wall/internal/middleware"
	"github.com/adityar/secrets-wall/internal/models"
	"github.com/adityar/secrets-wall/internal/web"
)

// UserStore is the slice of user persistence the secret routes need.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetSecret(ctx context.Context, id, secret string) error
	ListWithSecrets(ctx context.Context) ([]models.User, error)
}

// Handler serves the secret listing and submission routes.
type Handler struct {
	users  UserStore
	render *web.Renderer
}

func NewHandler(users UserStore, render *web.Renderer) *Handler {
	return &Handler{users: users, render: render}
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, "home.html", nil)
}

// All lists every user's secret. The wall is intentionally public:
// anyone, authenticated or not, sees it.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListWithSecrets(r.Context())
	if err != nil {
		log.Printf("list secrets: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render.HTML(w, "secrets.html", map[string]any{"Users": users})
}

// Mine lists only the current user's secret. Sits behind the auth guard.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	found, err := h.users.GetByID(r.Context(), user.ID.Hex())
	if err != nil {
		log.Printf("your secrets: %v", err)
		http.Redirect(w, r, "/secrets", http.StatusFound)
		return
	}

	var users []models.User
	if found.HasSecret() {
		users = append(users, *found)
	}
	h.render.HTML(w, "your_secrets.html", map[string]any{"Users": users})
}

// SubmitForm renders the secret-entry form. Sits behind the auth guard.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, "submit.html", nil)
}

// Submit overwrites the current user's secret. Last writer wins; there is
// no optimistic-concurrency check.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	form := models.SecretForm{Secret: r.PostFormValue("secret")}
	if err := form.Validate(); err != nil {
		log.Printf("submit: %v", err)
		http.Redirect(w, r, "/submit", http.StatusFound)
		return
	}

	if err := h.users.SetSecret(r.Context(), user.ID.Hex(), form.Secret); err != nil {
		log.Printf("submit: %v", err)
		http.Redirect(w, r, "/submit", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}
