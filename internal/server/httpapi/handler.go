// Package httpapi is the JSON boundary of the auth service. It validates
// requests, calls the user service, maps failures to HTTP statuses and
// manages the session cookie.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (*models.User, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p services.ProfileUpdate) (*models.User, error)
	Suspend(ctx context.Context, userID string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context, page models.Page) (*services.UserPage, error)
}

type Handler struct {
	svc         UserService
	log         logging.Logger
	validate    *validator.Validate
	cookie      CookieConfig
	frontendURL string
	now         func() time.Time
}

func NewHandler(svc UserService, l logging.Logger, cookie CookieConfig, frontendURL string) *Handler {
	return &Handler{
		svc:         svc,
		log:         l.With("module", "httpapi"),
		validate:    newValidator(),
		cookie:      cookie,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// Routes builds the router. Everything lives under /api/v1/auth.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "ok", nil)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/create", h.createUser)
		r.Post("/login", h.login)
		r.Post("/forgot-password", h.forgotPassword)
		r.Patch("/reset-password/{token}", h.resetPassword)

		r.Group(func(pr chi.Router) {
			pr.Use(h.protect)
			pr.Patch("/update-password/{id}", h.updatePassword)
			pr.Patch("/update/{id}", h.updateUser)
			pr.Post("/suspend/{id}", h.suspendUser)
			pr.Get("/get-all-users", h.listUsers)
			pr.Get("/get-user/{id}", h.getUser)
			pr.Post("/logout", h.logout)
		})
	})

	return r
}
