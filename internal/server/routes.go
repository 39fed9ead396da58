// Package server exposes the application context over HTTP.
package server

import (
	"net/http"
	"time"

	"fipe/consulta/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every page, form action and API route to a.
//
// Form posts answer 303 back to "/" once the operation finished; its outcome
// is on the notification banner.
func NewRouter(a *app.App, requestTimeout time.Duration, errorPage string) http.Handler {
	h := &handler{app: a, errorPage: errorPage}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Get("/erro.html", h.errorPageFile)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/consulta/tipo", h.selectCategory)
	r.Post("/consulta/marca", h.selectBrand)
	r.Post("/consulta/modelo", h.selectModel)
	r.Post("/consulta", h.submit)

	r.Post("/favoritos", h.addFavorite)
	r.Post("/favoritos/limpar", h.clearFavorites)
	r.Post("/favoritos/{id}/atualizar", h.refreshFavorite)
	r.Post("/favoritos/{id}/remover", h.removeFavorite)

	r.Post("/notificacao/fechar", h.dismissNotification)
	r.Get("/api/estado", h.state)
	r.Get("/preco/{code}", h.price)

	return r
}
