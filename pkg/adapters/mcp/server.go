// Package mcp exposes form sessions as Model Context Protocol tools so an agent
// can fill out and navigate a form.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/progressforms"
	"github.com/aretw0/progressforms/internal/logging"
	"github.com/aretw0/progressforms/internal/messages"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/runner"
	"github.com/aretw0/progressforms/pkg/session"
)

// FormURI is the resource holding the served form definition.
const FormURI = "progressforms://form"

// StatusResponse is the structured result of every tool.
type StatusResponse struct {
	SessionID    string                  `json:"session_id" jsonschema_description:"Session to pass to the next call"`
	CurrentIndex int                     `json:"current_index" jsonschema_description:"0-based index of the current panel"`
	Panel        domain.Panel            `json:"panel" jsonschema_description:"The current panel and its fields"`
	Indicators   []domain.IndicatorState `json:"indicators" jsonschema_description:"pending, active or completed per panel"`
	Progress     string                  `json:"progress"`
	Last         bool                    `json:"last" jsonschema_description:"True when the current panel is the final one"`
	Transition   *domain.Transition      `json:"transition,omitempty" jsonschema_description:"Outcome of the navigation request"`
	Message      string                  `json:"message,omitempty" jsonschema_description:"Why the step was blocked"`
}

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// StepArgs carries the field values for one navigation call.
type StepArgs struct {
	SessionID string         `json:"session_id"`
	Values    map[string]any `json:"values,omitempty"`
	Hidden    []string       `json:"hidden,omitempty"`
}

// JumpArgs targets a panel by index or ID.
type JumpArgs struct {
	StepArgs
	Index   *int   `json:"index,omitempty"`
	PanelID string `json:"panel_id,omitempty"`
}

// Server exposes one form over MCP.
type Server struct {
	form      *domain.Form
	sessions  *session.Manager
	localizer *messages.Localizer
	navOpts   []progressforms.Option
	sanitizer *runner.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNavigatorOptions passes options to every navigator the server builds.
func WithNavigatorOptions(opts ...progressforms.Option) Option {
	return func(s *Server) {
		s.navOpts = append(s.navOpts, opts...)
	}
}

// WithLocalizer sets the language of block messages.
func WithLocalizer(l *messages.Localizer) Option {
	return func(s *Server) {
		s.localizer = l
	}
}

// WithMaxInputSize bounds the field values sent with a step, in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.sanitizer = runner.NewSanitizer(n)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(form *domain.Form, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		form:      form,
		sessions:  sessions,
		logger:    logging.NewNop(),
		sanitizer: runner.NewSanitizer(0),
		mcpServer: server.NewMCPServer("progressforms-mcp", strings.TrimSpace(progressforms.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.localizer == nil {
		s.localizer = messages.MustNew().Localizer("en")
	}
	if _, err := progressforms.New(form, memory.NewInspector(nil), s.navOpts...); err != nil {
		return nil, err
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	valuesOpt := mcp.WithObject("values", mcp.Description("Current field values of the form, by field name"))
	hiddenOpt := mcp.WithArray("hidden", mcp.WithStringItems(), mcp.Description("Names of fields that are not visible"))
	sessionOpt := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_session"))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start filling out the form. Returns the first panel and a session id."),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("form_status",
		mcp.WithDescription("Show the current panel, its fields and the progress indicators."),
		sessionOpt,
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Validate the current panel with the given values and move to the next one."),
		sessionOpt, valuesOpt, hiddenOpt,
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("retreat",
		mcp.WithDescription("Move back to the previous panel."),
		sessionOpt,
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleRetreat))

	s.mcpServer.AddTool(mcp.NewTool("jump",
		mcp.WithDescription("Jump to a panel by 0-based index or by panel id. Forward jumps validate every panel on the way."),
		sessionOpt, valuesOpt, hiddenOpt,
		mcp.WithNumber("index", mcp.Description("0-based panel index")),
		mcp.WithString("panel_id", mcp.Description("Panel id, takes precedence over index")),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleJump))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (StatusResponse, error) {
	state, err := s.sessions.Create(ctx, s.form.ID, len(s.form.Panels), map[string]string{"channel": "mcp"})
	if err != nil {
		return StatusResponse{}, err
	}
	return s.status(state, nil, nil), nil
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (StatusResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return StatusResponse{}, err
	}
	return s.status(state, nil, nil), nil
}

func (s *Server) handleAdvance(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (StatusResponse, error) {
	return s.step(ctx, args, func(nav *progressforms.Navigator) (domain.Transition, error) {
		return nav.Advance(), nil
	})
}

func (s *Server) handleRetreat(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (StatusResponse, error) {
	return s.step(ctx, args, func(nav *progressforms.Navigator) (domain.Transition, error) {
		return nav.Retreat(), nil
	})
}

func (s *Server) handleJump(ctx context.Context, _ mcp.CallToolRequest, args JumpArgs) (StatusResponse, error) {
	return s.step(ctx, args.StepArgs, func(nav *progressforms.Navigator) (domain.Transition, error) {
		switch {
		case args.PanelID != "":
			return nav.JumpToID(args.PanelID)
		case args.Index != nil:
			return nav.JumpTo(*args.Index)
		}
		return domain.Transition{}, errors.New("index or panel_id is required")
	})
}

func (s *Server) step(ctx context.Context, args StepArgs, op func(*progressforms.Navigator) (domain.Transition, error)) (StatusResponse, error) {
	inspector := memory.NewInspector(nil)
	for name, v := range args.Values {
		if str, ok := v.(string); ok {
			field, found := s.form.Field(name)
			if !found {
				field = domain.Field{Name: name}
			}
			clean, err := s.sanitizer.Value(field, str)
			if err != nil {
				s.logger.Warn("MCP: input rejected", "field", name, "err", err)
				return StatusResponse{}, fmt.Errorf("input rejected: %w", err)
			}
			v = clean
		}
		inspector.Set(name, v)
	}
	inspector.Hide(args.Hidden...)

	var (
		tr      domain.Transition
		current domain.Panel
	)
	state, err := s.sessions.Update(ctx, args.SessionID, func(ctx context.Context, stored *domain.State) (*domain.State, error) {
		nav, err := progressforms.New(s.form, inspector, s.navOpts...)
		if err != nil {
			return nil, err
		}
		if err := nav.Restore(stored); err != nil {
			return nil, err
		}
		if tr, err = op(nav); err != nil {
			return nil, err
		}
		current = nav.Current()
		next := nav.Snapshot(args.SessionID)
		next.Metadata = stored.Metadata
		return next, nil
	})
	if err != nil {
		return StatusResponse{}, err
	}
	return s.status(state, &tr, &current), nil
}

func (s *Server) status(state *domain.State, tr *domain.Transition, current *domain.Panel) StatusResponse {
	n := len(s.form.Panels)
	resp := StatusResponse{
		SessionID:    state.SessionID,
		CurrentIndex: state.CurrentIndex,
		Indicators:   state.Indicators,
		Progress:     s.localizer.ProgressLine(state.CurrentIndex, n),
		Last:         state.CurrentIndex == n-1,
		Transition:   tr,
	}
	if state.CurrentIndex >= 0 && state.CurrentIndex < n {
		resp.Panel = s.form.Panels[state.CurrentIndex]
	}
	if tr != nil && tr.Blame != nil && current != nil {
		resp.Message = s.localizer.Text(messages.RequiredFieldsMissing, nil) + " " + s.localizer.Blame(*current, *tr.Blame)
	}
	return resp
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FormURI, "Form Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.form)
		if err != nil {
			return nil, fmt.Errorf("failed to encode form: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FormURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
