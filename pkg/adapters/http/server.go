package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/adapters/file"
	"github.com/aretw0/inicheck/pkg/adapters/memory"
	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var openapiSpec []byte

// maxBodyBytes caps the size of a configuration posted to /check.
const maxBodyBytes = 1 << 20

// Server serves the check API for one master schema.
type Server struct {
	master  *schema.Master
	logger  *slog.Logger
	hooks   checkers.Hooks
	metrics http.Handler

	// checkRequest is the request body schema of POST /check.
	checkRequest *openapi3.Schema
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHooks attaches checker hooks to every pass the server runs.
func WithHooks(hooks checkers.Hooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithMetrics mounts handler at GET /metrics.
func WithMetrics(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// OpenAPI loads and validates the embedded OpenAPI document.
func OpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler serving master.
func NewHandler(master *schema.Master, opts ...Option) (http.Handler, error) {
	if master == nil {
		return nil, errors.New("http: master schema is required")
	}

	doc, err := OpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	reqSchema, err := requestSchema(doc, "/check")
	if err != nil {
		return nil, err
	}

	server := &Server{
		master:       master,
		logger:       slog.Default(),
		checkRequest: reqSchema,
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.Health)
	r.Get("/schema", server.GetSchema)
	r.Post("/check", server.Check)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	return enableCORS(r), nil
}

func requestSchema(doc *openapi3.T, path string) (*openapi3.Schema, error) {
	item := doc.Paths.Find(path)
	if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
		return nil, fmt.Errorf("openapi document has no request body for POST %s", path)
	}
	media := item.Post.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("openapi document has no JSON schema for POST %s", path)
	}
	return media.Schema.Value, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>inicheck API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSchema handles GET /schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.master)
}

type checkRequest struct {
	Config json.RawMessage `json:"config"`
	Dir    string          `json:"dir"`
}

// Check handles POST /check.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Check: unreadable request body", "err", err)
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Check: invalid request body", "err", err)
		return
	}
	if err := s.checkRequest.VisitJSON(doc); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		s.logger.Warn("Check: request rejected", "err", err)
		return
	}

	var req checkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sections, err := file.Parse(req.Config, file.FormatJSON, "request")
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid configuration: %v", err), http.StatusBadRequest)
		s.logger.Warn("Check: invalid configuration", "err", err)
		return
	}

	sess, err := inicheck.New(s.master, memory.NewStore(req.Dir, sections...),
		inicheck.WithLogger(s.logger),
		inicheck.WithHooks(s.hooks),
	)
	if err != nil {
		http.Error(w, fmt.Sprintf("Check error: %v", err), http.StatusInternalServerError)
		return
	}

	report, err := sess.Check(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Check error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Check failed", "err", err)
		return
	}

	s.writeJSON(w, http.StatusOK, report.Summary())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
