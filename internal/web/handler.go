package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
)

//go:embed templates/*.html
var templates embed.FS

var indexTmpl = template.Must(template.ParseFS(templates, "templates/index.html"))

// Handler serves the catalog page and turns its form posts into controller
// operations. Every post redirects back to the page.
type Handler struct {
	ctrl   *catalog.Controller
	page   *Page
	logger zerolog.Logger
}

// NewHandler expects ctrl to have been built with page as its view.
func NewHandler(ctrl *catalog.Controller, page *Page, logger zerolog.Logger) *Handler {
	return &Handler{
		ctrl:   ctrl,
		page:   page,
		logger: logger.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.index)
	r.Post("/ui/products", h.submit)
	r.Post("/ui/products/cancel", h.cancel)
	r.Post("/ui/products/{id}/edit", h.edit)
	return r
}

type indexData struct {
	State
	Editing   bool
	EditingID string
}

// index loads the product list on every view, unless the post that
// redirected here already did.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if !h.page.TakeListed() {
		_ = h.ctrl.Load(r.Context())
	}

	mode, id := h.ctrl.Mode()
	data := indexData{
		State:     h.page.Snapshot(),
		Editing:   mode == catalog.ModeEdit,
		EditingID: id.String(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTmpl.Execute(w, data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render catalog page")
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := catalog.FormInput{
		Name:     r.PostForm.Get("name"),
		Quantity: r.PostForm.Get("quantity"),
		Price:    r.PostForm.Get("price"),
	}
	h.page.SetInput(in)
	if err := h.ctrl.Submit(r.Context(), in); err == nil || errors.Is(err, catalog.ErrLoadFailed) {
		h.page.MarkListed()
	}
	h.back(w, r)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Cancel()
	h.back(w, r)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	_ = h.ctrl.SelectForEdit(r.Context(), catalog.ID(chi.URLParam(r, "id")))
	h.back(w, r)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
