package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webpanel/pkg/types"
)

// Service defines the methods required by the HTTP API layer. An empty id
// means the active instance.
type Service interface {
	List() types.InstancesResponse
	Get(id string) (types.InstanceStatus, error)
	Open(ctx context.Context, req types.OpenRequest) (types.InstanceStatus, error)
	Navigate(ctx context.Context, id, url string) (types.InstanceStatus, error)
	Focus(ctx context.Context, id string) error
	ToggleFindBar(ctx context.Context, id string) error
	Find(ctx context.Context, id string, req types.FindRequest) error
	FindNext(ctx context.Context, id string) error
	FindPrev(ctx context.Context, id string) error
	CloseFind(ctx context.Context, id string) error
	Close(ctx context.Context, id string) error
	Purge(ctx context.Context) (int, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}

	r.Route("/instances", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.open)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.verb("close", svc.Close))
			r.Post("/navigate", h.navigate)
			r.Post("/focus", h.verb("focus", svc.Focus))
			r.Post("/findbar/toggle", h.verb("findbar_toggle", svc.ToggleFindBar))
			r.Post("/find", h.find)
			r.Post("/find/next", h.verb("find_next", svc.FindNext))
			r.Post("/find/prev", h.verb("find_prev", svc.FindPrev))
			r.Delete("/find", h.verb("find_close", svc.CloseFind))
		})
	})

	// Commands without an instance id go to the active instance.
	r.Route("/active", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/navigate", h.navigate)
		r.Post("/find/next", h.verb("find_next", svc.FindNext))
		r.Post("/find/prev", h.verb("find_prev", svc.FindPrev))
		r.Post("/findbar/toggle", h.verb("findbar_toggle", svc.ToggleFindBar))
	})

	r.Post("/purge", h.purge)

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("engine unavailable"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// instanceID is empty on /active routes.
func instanceID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, verb, id string, start time.Time, err error) {
	status := statusFor(err)
	countCommandError(verb, status)
	logCommand(r, verb, id, status, start, err)
	writeJSONError(w, status, err.Error())
}

// list godoc
// @Summary      List panel instances
// @Tags         instances
// @Produce      json
// @Success      200  {object}  types.InstancesResponse
// @Router       /instances [get]
func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.List())
}

// get godoc
// @Summary      Get one instance
// @Tags         instances
// @Produce      json
// @Param        id   path      string  true  "Instance id"
// @Success      200  {object}  types.InstanceStatus
// @Failure      404  {object}  types.ErrorResponse
// @Router       /instances/{id} [get]
func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := instanceID(r)
	st, err := h.svc.Get(id)
	if err != nil {
		h.fail(w, r, "get", id, start, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// open godoc
// @Summary      Open or activate an instance
// @Tags         instances
// @Accept       json
// @Produce      json
// @Param        body  body      types.OpenRequest  false  "Open request"
// @Success      200   {object}  types.InstanceStatus
// @Failure      400   {object}  types.ErrorResponse
// @Failure      503   {object}  types.ErrorResponse
// @Router       /instances [post]
func (h *handlers) open(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req types.OpenRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	ctx, cancel := commandContext(r)
	defer cancel()
	st, err := h.svc.Open(ctx, req)
	if err != nil {
		h.fail(w, r, "open", req.ID, start, err)
		return
	}
	logCommand(r, "open", st.ID, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, st)
}

// navigate godoc
// @Summary      Navigate an instance
// @Description  In-panel URLs navigate the instance, creating it when absent. External URLs are handed to the opener.
// @Tags         instances
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Instance id"
// @Param        body  body      types.NavigateRequest  true  "Target"
// @Success      200   {object}  types.InstanceStatus
// @Failure      400   {object}  types.ErrorResponse
// @Failure      503   {object}  types.ErrorResponse
// @Router       /instances/{id}/navigate [post]
func (h *handlers) navigate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := instanceID(r)
	var req types.NavigateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSONError(w, http.StatusBadRequest, "url is required")
		return
	}
	ctx, cancel := commandContext(r)
	defer cancel()
	st, err := h.svc.Navigate(ctx, id, req.URL)
	if err != nil {
		h.fail(w, r, "navigate", id, start, err)
		return
	}
	logCommand(r, "navigate", st.ID, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, st)
}

// find godoc
// @Summary      Start, update or close a find-in-page search
// @Tags         find
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Instance id"
// @Param        body  body      types.FindRequest  true  "Query"
// @Success      200   {object}  types.InstanceStatus
// @Failure      404   {object}  types.ErrorResponse
// @Router       /instances/{id}/find [post]
func (h *handlers) find(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := instanceID(r)
	var req types.FindRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	ctx, cancel := commandContext(r)
	defer cancel()
	if err := h.svc.Find(ctx, id, req); err != nil {
		h.fail(w, r, "find", id, start, err)
		return
	}
	h.respondInstance(w, r, "find", id, start)
}

// purge godoc
// @Summary      Remove instances whose window was destroyed
// @Tags         instances
// @Produce      json
// @Success      200  {object}  types.PurgeResponse
// @Router       /purge [post]
func (h *handlers) purge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := commandContext(r)
	defer cancel()
	n, err := h.svc.Purge(ctx)
	if err != nil {
		h.fail(w, r, "purge", "", start, err)
		return
	}
	logCommand(r, "purge", "", http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, types.PurgeResponse{Purged: n})
}

// verb adapts a body-less instance command. Successful commands answer with
// the instance status, except close which answers 204.
func (h *handlers) verb(name string, fn func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := instanceID(r)
		if name == "close" && id == "" {
			writeJSONError(w, http.StatusBadRequest, "instance id is required")
			return
		}
		ctx, cancel := commandContext(r)
		defer cancel()
		if err := fn(ctx, id); err != nil {
			h.fail(w, r, name, id, start, err)
			return
		}
		if name == "close" {
			logCommand(r, name, id, http.StatusNoContent, start, nil)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.respondInstance(w, r, name, id, start)
	}
}

func (h *handlers) respondInstance(w http.ResponseWriter, r *http.Request, verb, id string, start time.Time) {
	st, err := h.svc.Get(id)
	if err != nil {
		h.fail(w, r, verb, id, start, err)
		return
	}
	logCommand(r, verb, st.ID, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, st)
}

// decodeBody reads a JSON body. optional accepts an empty body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if optional && r.ContentLength == 0 {
		return true
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
