// Package api exposes the repository registry over HTTP.
//
//	GET    /repositories               list repository summaries
//	GET    /repositories/{name}        one summary
//	PUT    /repositories/{name}        register from a flat JSON settings object
//	DELETE /repositories/{name}        unregister
//	POST   /repositories/{name}/verify ping the bucket
//
// Responses never contain credentials or key material.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/s3repo/internal/errs"
	"github.com/koustreak/s3repo/internal/logger"
	"github.com/koustreak/s3repo/internal/registry"
	"github.com/koustreak/s3repo/internal/repository"
	"github.com/koustreak/s3repo/internal/settings"
)

// maxBodyBytes caps PUT request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the admin API.
type Handler struct {
	reg *registry.Registry
	log *logger.Logger
}

// NewRouter returns a chi router serving the admin API for reg.
func NewRouter(reg *registry.Registry, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{reg: reg, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/repositories", func(r chi.Router) {
		r.Get("/", h.list)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.put)
			r.Delete("/", h.delete)
			r.Post("/verify", h.verify)
		})
	})
	return r
}

// RepositoryView is the JSON form of a registered repository.
type RepositoryView struct {
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Settings repository.Summary `json:"settings"`
}

func view(repo *repository.Repository) RepositoryView {
	return RepositoryView{Name: repo.Name(), Type: repository.Type, Settings: repo.Config().Summary()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	views := []RepositoryView{}
	for _, name := range h.reg.Names() {
		repo, err := h.reg.Get(name)
		if err != nil {
			continue // unregistered meanwhile
		}
		views = append(views, view(repo))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	repo, err := h.reg.Get(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view(repo))
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.writeError(w, r, errs.Wrap(errs.ErrKindInvalidSetting, "request body must be a JSON object", err))
		return
	}
	s, err := settings.Flatten(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	repo, err := h.reg.Register(r.Context(), chi.URLParam(r, "name"), s)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view(repo))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Unregister(chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	repo, err := h.reg.Get(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := repo.Verify(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		log := h.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

		next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

		log.InfoWith("request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

type errorBody struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Repository string `json:"repository,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, nil)
	}

	body := errorBody{Error: err.Error(), Kind: kind.String()}
	var e *errs.Error
	if errors.As(err, &e) {
		body.Repository = e.Repository
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	if errs.IsConfigError(err) {
		return http.StatusBadRequest
	}
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindAlreadyExists:
		return http.StatusConflict
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindConnectionFailed, errs.ErrKindTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
