package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"imagestudio/internal/http/handlers"
	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
)

func NewRouter(app *handlers.App, logger infra.Logger) http.Handler {
	var origins []string
	if app.Config != nil {
		origins = app.Config.CORSAllowedOrigins
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(origins),
	)

	r.Get("/", app.Home)
	r.Get("/healthz", app.Health)
	r.Post("/generate", app.Generate)
	r.Post("/edit", app.Edit)
	r.Get("/download/{filename}", app.Download)

	return r
}
