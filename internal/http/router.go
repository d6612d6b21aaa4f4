package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestaograos/auditoria/internal/config"
	httpmiddleware "github.com/gestaograos/auditoria/internal/http/middleware"
	"github.com/gestaograos/auditoria/internal/relatorio"
	"github.com/gestaograos/auditoria/internal/service"
)

// Handler agrega as dependências dos handlers HTTP.
type Handler struct {
	cfg         *config.Config
	authService *service.AuthService
	usuarios    *service.UsuarioService
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, authService *service.AuthService, usuarios *service.UsuarioService, relatorios *relatorio.Handler) (http.Handler, error) {
	h := &Handler{
		cfg:         cfg,
		authService: authService,
		usuarios:    usuarios,
	}

	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	loginLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitLogin.RequestsPerSecond, cfg.RateLimitLogin.Burst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/saude", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	// Rotas públicas: login limitado por IP para conter tentativas de força bruta.
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(publicLimiter))

		r.With(httpmiddleware.IPRateLimit(loginLimiter)).Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
	})

	// Rotas autenticadas.
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.Auth(authService.JWT()))
		r.Use(httpmiddleware.UserRateLimit(publicLimiter))

		r.Post("/auth/logout", h.Logout)
		r.Get("/me", h.Me)

		relatorio.Mount(r, relatorios)

		// Autoedição de cadastro: o serviço aplica a regra de papel.
		r.Put("/usuarios/{id}", h.UpdateUsuario)

		// Gestão de contas e log de exclusões, somente administradores.
		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireAdmin)

			r.Get("/usuarios", h.ListUsuarios)
			r.Post("/usuarios", h.CreateUsuario)
			r.Get("/usuarios/{id}", h.GetUsuario)
			relatorios.RegisterAdminRoutes(r)
		})
	})

	return r, nil
}
