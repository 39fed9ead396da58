package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fipe/consulta/internal/app"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/favorites"
	"fipe/consulta/internal/view"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	app       *app.App
	errorPage string
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	page := view.BuildPage(h.app.State(r.Context(), r.URL.Query().Get("q")))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderPage(w, page); err != nil {
		log.Errorf("Failed to render page: %v", err)
	}
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	page := view.BuildPage(h.app.State(r.Context(), r.URL.Query().Get("q")))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		log.Errorf("Failed to encode state: %v", err)
	}
}

func (h *handler) selectCategory(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("tipoVeiculo")
	category, err := domain.ParseVehicleCategory(raw)
	if err != nil {
		category = domain.VehicleCategory(strings.TrimSpace(raw))
	}
	h.done(w, r, "select category", h.app.Resolver.SelectCategory(r.Context(), category))
}

func (h *handler) selectBrand(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, "select brand", h.app.Resolver.SelectBrand(r.Context(), r.FormValue("marca")))
}

func (h *handler) selectModel(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, "select model", h.app.Resolver.SelectModel(r.Context(), r.FormValue("modelo")))
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	_, err := h.app.Resolver.Submit(r.Context(), r.FormValue("ano"))
	h.done(w, r, "quote", err)
}

func (h *handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	_, err := h.app.AddCurrentFavorite(r.Context())
	h.done(w, r, "add favorite", err)
}

func (h *handler) refreshFavorite(w http.ResponseWriter, r *http.Request) {
	_, err := h.app.Favorites.Refresh(r.Context(), chi.URLParam(r, "id"))
	h.done(w, r, "refresh favorite", err)
}

func (h *handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	_, err := h.app.Favorites.Remove(r.Context(), chi.URLParam(r, "id"))
	h.done(w, r, "remove favorite", err)
}

// clearFavorites treats the confirm=yes form field as the user's answer to
// the confirmation dialog.
func (h *handler) clearFavorites(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") == "yes"
	confirm := favorites.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		return confirmed, nil
	})
	_, err := h.app.Favorites.Clear(r.Context(), confirm)
	h.done(w, r, "clear favorites", err)
}

func (h *handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	h.app.Banner.Dismiss()
	h.done(w, r, "dismiss notification", nil)
}

// price renders a single-code lookup. Any failure navigates to the static
// error page instead of raising a notification.
func (h *handler) price(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	price, err := h.app.Prices.Lookup(r.Context(), code)
	if err != nil {
		log.Warnf("Price lookup for %s failed: %v", code, err)
		http.Redirect(w, r, h.errorPage, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderPrice(w, view.RenderReferencePrice(code, price)); err != nil {
		log.Errorf("Failed to render price: %v", err)
	}
}

func (h *handler) errorPageFile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(view.ErrorPage)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := healthResponse{Status: "ok", Storage: "connected", Timestamp: time.Now()}
	status := http.StatusOK
	if err := h.app.Favorites.Ping(ctx); err != nil {
		log.Warnf("Storage ping failed: %v", err)
		response.Status = "degraded"
		response.Storage = "disconnected"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// done finishes a form post. The operation already put its outcome on the
// banner, so err is only logged.
func (h *handler) done(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if err != nil {
		log.Debugf("%s: %v", operation, err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
