// Package http exposes form sessions over a REST API with a server-sent
// event stream of indicator changes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/observability"
	"github.com/aretw0/progressforms/pkg/session"
)

// Server serves one form. Sessions live in the manager's store.
type Server struct {
	mu   sync.RWMutex
	form *domain.Form

	sessions *session.Manager
	catalog  *messages.Catalog
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	navOpts  []progressforms.Option
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records navigation metrics and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithNavigatorOptions passes options to every navigator the server builds.
func WithNavigatorOptions(opts ...progressforms.Option) Option {
	return func(s *Server) {
		s.navOpts = append(s.navOpts, opts...)
	}
}

// WithCatalog replaces the embedded message catalog.
func WithCatalog(c *messages.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// NewServer validates form by building a throwaway navigator and returns a server for it.
func NewServer(form *domain.Form, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		c, err := messages.New()
		if err != nil {
			return nil, err
		}
		s.catalog = c
	}
	if err := s.SetForm(form); err != nil {
		return nil, err
	}
	if _, err := GetSwagger(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetForm swaps the served form, e.g. after the definition file changed.
// Existing sessions that no longer fit fail with a 409 on their next step.
func (s *Server) SetForm(form *domain.Form) error {
	if _, err := progressforms.New(form, memory.NewInspector(nil), s.navOpts...); err != nil {
		return err
	}
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
	return nil
}

func (s *Server) currentForm() *domain.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

// Handler returns the routed, validated HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS, validateRequests)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/form", s.getForm)
	r.Get("/events", s.subscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/advance", s.step(func(nav *progressforms.Navigator, _ StepRequest) (domain.Transition, error) {
				return nav.Advance(), nil
			}))
			r.Post("/retreat", s.step(func(nav *progressforms.Navigator, _ StepRequest) (domain.Transition, error) {
				return nav.Retreat(), nil
			}))
			r.Post("/jump", s.step(func(nav *progressforms.Navigator, req StepRequest) (domain.Transition, error) {
				if req.PanelID != "" {
					return nav.JumpToID(req.PanelID)
				}
				if req.Index == nil {
					return domain.Transition{}, errMissingTarget
				}
				return nav.JumpTo(*req.Index)
			}))
			r.Post("/click", s.step(func(nav *progressforms.Navigator, req StepRequest) (domain.Transition, error) {
				if req.Index == nil {
					return domain.Transition{}, errMissingTarget
				}
				return nav.Click(*req.Index)
			}))
		})
	})
	return r
}

var errMissingTarget = errors.New("index or panel_id is required")

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "progressforms-http",
		"version":     strings.TrimSpace(progressforms.Version),
		"api_version": apiVersion,
		"form_id":     s.currentForm().ID,
	})
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentForm())
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	form := s.currentForm()
	state, err := s.sessions.Create(r.Context(), form.ID, len(form.Panels), body.Metadata)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("session created", "session_id", state.SessionID)
	writeJSON(w, http.StatusCreated, s.view(r, form, state))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	state, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, s.currentForm(), state))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type operation func(nav *progressforms.Navigator, req StepRequest) (domain.Transition, error)

// step restores a navigator from the stored snapshot, applies op with the
// request's field values, and stores the resulting snapshot.
func (s *Server) step(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req StepRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
				return
			}
		}

		inspector := memory.NewInspector(req.Values)
		for _, name := range req.Hidden {
			inspector.Hide(name)
		}

		form := s.currentForm()
		opts := append([]progressforms.Option{progressforms.WithLogger(s.logger)}, s.navOpts...)
		if s.metrics != nil {
			opts = append(opts, progressforms.WithCallbacks(s.metrics.Callbacks()))
		}

		var (
			tr      domain.Transition
			current domain.Panel
		)
		state, err := s.sessions.Update(r.Context(), id, func(ctx context.Context, stored *domain.State) (*domain.State, error) {
			nav, err := progressforms.New(form, inspector, opts...)
			if err != nil {
				return nil, err
			}
			if err := nav.Restore(stored); err != nil {
				return nil, err
			}
			tr, err = op(nav, req)
			if err != nil {
				return nil, err
			}
			current = nav.Current()
			next := nav.Snapshot(id)
			next.Metadata = stored.Metadata
			return next, nil
		})
		if err != nil {
			s.fail(w, err)
			return
		}
		if s.metrics != nil {
			s.metrics.ObserveTransition(tr)
		}

		resp := StepResponse{Transition: tr, Session: s.view(r, form, state)}
		if tr.Blame != nil {
			loc := s.localizer(r)
			resp.Message = loc.Text(messages.RequiredFieldsMissing, nil)
			resp.Detail = loc.Blame(current, *tr.Blame)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// subscribeEvents streams the diffs of one session as server-sent events.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &id); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var watch string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	diffs, cancel := s.sessions.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: subscribed", "session_id", id)

	filter := parseWatch(watch)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", id)
			return
		case diff, ok := <-diffs:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", id)
				flusher.Flush()
				return
			}
			if !filter.keep(diff) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: failed to encode diff", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

type watchFilter map[string]bool

func parseWatch(raw string) watchFilter {
	if raw == "" {
		return nil
	}
	f := make(watchFilter)
	for _, field := range strings.Split(raw, ",") {
		f[strings.TrimSpace(field)] = true
	}
	return f
}

func (f watchFilter) keep(d *domain.StateDiff) bool {
	if len(f) == 0 {
		return true
	}
	return (f["current"] && (d.CurrentIndex != nil || d.PreviousIndex != nil || d.PreviousCleared)) ||
		(f["indicators"] && len(d.Indicators) > 0) ||
		(f["validated"] && len(d.Validated) > 0)
}

func (s *Server) localizer(r *http.Request) *messages.Localizer {
	tag := s.catalog.Match(r.Header.Get("Accept-Language"))
	return s.catalog.Localizer(tag.String())
}

func (s *Server) view(r *http.Request, form *domain.Form, state *domain.State) SessionView {
	v := SessionView{
		SessionID:    state.SessionID,
		FormID:       state.FormID,
		CurrentIndex: state.CurrentIndex,
		Indicators:   state.Indicators,
		Validated:    state.Validated,
	}
	if prev, ok := state.Previous(); ok {
		v.PreviousIndex = &prev
	}
	if n := len(form.Panels); n > 0 {
		v.Layout = 100 / float64(n)
		v.Progress = s.localizer(r).ProgressLine(state.CurrentIndex, n)
		if state.CurrentIndex >= 0 && state.CurrentIndex < n {
			p := form.Panels[state.CurrentIndex]
			v.Panel = &p
		}
	}
	return v
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var unknown *domain.UnknownPanelError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Suggestion: unknown.Suggestion})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrIndexOutOfRange), errors.Is(err, errMissingTarget):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrStateMismatch):
		writeError(w, http.StatusConflict, err)
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
