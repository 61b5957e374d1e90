package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/msto63/termcore/foundation/term/executor"
	"github.com/msto63/termcore/internal/commands"
	"github.com/msto63/termcore/pkg/core/health"
	"github.com/msto63/termcore/pkg/core/logging"
)

// maxBodyBytes bounds execute request bodies
const maxBodyBytes = 64 << 10

// ExecuteRequest is the body of POST /api/v1/terminal/execute
type ExecuteRequest struct {
	Line string `json:"line"`
	Mode string `json:"mode,omitempty"`
}

// ModeListing describes one mode and the commands it resolves to
type ModeListing struct {
	commands.ModeInfo
	Commands []string `json:"commands"`
}

// ModesResponse is the body of GET /api/v1/terminal/modes
type ModesResponse struct {
	Modes    []ModeListing `json:"modes"`
	Builtins []string      `json:"builtins"`
	Total    int           `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HandlerConfig holds handler settings
type HandlerConfig struct {
	AllowedOrigins []string
	Logger         *logging.Logger
}

// Handler handles the REST endpoints of the front end
type Handler struct {
	exec    Executor
	health  *health.Registry
	origins originPolicy
	logger  *logging.Logger
}

// NewHandler creates a new API handler
func NewHandler(exec Executor, healthRegistry *health.Registry, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("termcore-handler")
	}
	return &Handler{
		exec:    exec,
		health:  healthRegistry,
		origins: newOriginPolicy(cfg.AllowedOrigins),
		logger:  logger,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && h.origins.allows(origin) {
		w.Header().Set("Access-Control-Allow-Origin", h.origins.header(origin))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.URL.Path == "/health" || r.URL.Path == "/health/" {
		h.handleHealth(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/terminal")
	path = strings.Trim(path, "/")
	if !strings.HasPrefix(r.URL.Path, "/api/v1/terminal") {
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", "")
		return
	}

	switch path {
	case "execute":
		h.handleExecute(w, r)
	case "modes":
		h.handleModes(w, r)
	case "health":
		h.handleHealth(w, r)
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", "")
	}
}

// handleExecute runs one line. Every outcome, including command errors,
// is a 200 carrying the result; only malformed requests are rejected.
func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req ExecuteRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", err.Error())
		return
	}

	result := h.exec.Execute(r.Context(), req.Line, req.Mode)
	h.writeJSON(w, http.StatusOK, result)
}

// handleModes lists every mode with the commands its registry holds
func (h *Handler) handleModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	infos := commands.Describe()
	resp := ModesResponse{
		Modes:    make([]ModeListing, 0, len(infos)),
		Builtins: executor.ReservedNames(),
		Total:    len(infos),
	}
	for _, info := range infos {
		listing := ModeListing{ModeInfo: info, Commands: []string{}}
		if reg := h.exec.Registry(r.Context(), info.Name); reg != nil {
			listing.Commands = reg.Names()
		}
		resp.Modes = append(resp.Modes, listing)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports the health registry
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := h.health.Check(ctx)
	h.writeJSON(w, report.HTTPStatus(), report)
}

// Helper methods

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// originPolicy decides which browser origins may call the API. No entries
// or a "*" entry allows every origin.
type originPolicy struct {
	any     bool
	allowed map[string]bool
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]bool, len(origins))}
	if len(origins) == 0 {
		p.any = true
	}
	for _, o := range origins {
		if o == "*" {
			p.any = true
		}
		p.allowed[strings.TrimSuffix(o, "/")] = true
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	return p.any || p.allowed[strings.TrimSuffix(origin, "/")]
}

func (p originPolicy) header(origin string) string {
	if p.any {
		return "*"
	}
	return origin
}
