package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contractview/internal/auth"
	"contractview/internal/export"
	"contractview/internal/metrics"
	"contractview/internal/rbac"
	"contractview/internal/search"
	"contractview/internal/session"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	logger     *zap.Logger
	metrics    http.Handler
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{
		service:    service,
		corsOrigin: corsOrigin,
		logger:     service.logger,
		metrics:    promhttp.Handler(),
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) forbid(w http.ResponseWriter, r *http.Request, caller Session, action rbac.Action) {
	s.logger.Info("forbidden",
		zap.String("request_id", requestID(r.Context())),
		zap.String("role", string(caller.Role)),
		zap.String("action", string(action)),
	)
	writeError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ok, checks := s.service.Ready(ctx)
		status, statusCode := "ready", http.StatusOK
		if !ok {
			status, statusCode = "not_ready", http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     ok,
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/metrics" {
		s.metrics.ServeHTTP(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/login" {
		var body struct {
			Key string `json:"key"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		caller, err := s.service.Login(r.Context(), body.Key)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":     caller.Token,
			"role":      caller.Role,
			"expiresAt": caller.ExpiresAt.UTC().Format(time.RFC3339),
		})
		return
	}

	caller, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": caller.Authenticated(),
			"role":          caller.Role,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/render" {
		if !rbac.Can(caller.Role, rbac.ActionRender) {
			s.forbid(w, r, caller, rbac.ActionRender)
			return
		}
		var body struct {
			Data   json.RawMessage   `json:"data"`
			Values map[string]string `json:"values"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if len(body.Data) == 0 {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "data is required", nil)
			return
		}
		tree, stats, err := s.service.RenderData(r.Context(), body.Data, body.Values)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tree": tree, "stats": stats})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		if !rbac.Can(caller.Role, rbac.ActionRender) {
			s.forbid(w, r, caller, rbac.ActionRender)
			return
		}
		query := r.URL.Query()
		writeJSON(w, http.StatusOK, s.service.Search(search.Query{
			Text:   strings.TrimSpace(query.Get("q")),
			Limit:  queryInt(query.Get("limit")),
			Offset: queryInt(query.Get("offset")),
		}))
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) >= 2 && parts[0] == "api" && parts[1] == "contracts" {
		s.handleContracts(w, r, caller, parts[2:])
		return
	}
	if len(parts) >= 4 && parts[0] == "api" && parts[1] == "sessions" && parts[3] == "mentions" {
		s.handleSessionMentions(w, r, caller, parts[2], parts[4:])
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleContracts(w http.ResponseWriter, r *http.Request, caller Session, parts []string) {
	if len(parts) == 0 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		if !rbac.Can(caller.Role, rbac.ActionRender) {
			s.forbid(w, r, caller, rbac.ActionRender)
			return
		}
		items, err := s.service.ListContracts(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contracts": items})
		return
	}

	if len(parts) == 1 && parts[0] == "import" && r.Method == http.MethodPost {
		if !rbac.Can(caller.Role, rbac.ActionImport) {
			s.forbid(w, r, caller, rbac.ActionImport)
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		var (
			results []ImportResult
			err     error
		)
		if name := strings.TrimSpace(body.Name); name != "" {
			var result ImportResult
			result, err = s.service.Import(r.Context(), name, caller.Subject)
			results = []ImportResult{result}
		} else {
			results, err = s.service.ImportAll(r.Context(), caller.Subject)
		}
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"imported": results})
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}
	if !rbac.Can(caller.Role, rbac.ActionRender) {
		s.forbid(w, r, caller, rbac.ActionRender)
		return
	}

	name := parts[0]
	query := r.URL.Query()

	if len(parts) == 1 {
		detail, err := s.service.GetContract(r.Context(), name)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
		return
	}
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch parts[1] {
	case "history":
		history, err := s.service.History(r.Context(), name, queryInt(query.Get("limit")))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": history})
	case "mentions":
		mentions, err := s.service.Mentions(r.Context(), name)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"mentions": mentions})
	case "render":
		rendered, err := s.service.RenderContract(r.Context(), name, query.Get("revision"), query.Get("session"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"name":       rendered.Name,
			"title":      rendered.Title,
			"revision":   rendered.Revision,
			"renderedAt": rendered.RenderedAt.Format(time.RFC3339),
			"tree":       rendered.Tree,
		})
	case "export":
		format, err := export.ParseFormat(query.Get("format"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		keep, _ := strconv.ParseBool(query.Get("store"))
		out, err := s.service.Export(r.Context(), export.Request{
			Name:      name,
			Revision:  query.Get("revision"),
			SessionID: query.Get("session"),
			Format:    format,
		}, keep)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if keep {
			writeJSON(w, http.StatusOK, map[string]any{"url": out.URL, "filename": out.Filename})
			return
		}
		w.Header().Set("Content-Type", out.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out.Data)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleSessionMentions(w http.ResponseWriter, r *http.Request, caller Session, sessionID string, parts []string) {
	if err := session.ValidateSessionID(sessionID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if r.Method == http.MethodGet && len(parts) == 0 {
		if !rbac.Can(caller.Role, rbac.ActionRender) {
			s.forbid(w, r, caller, rbac.ActionRender)
			return
		}
		values, err := s.service.SessionValues(r.Context(), sessionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if values == nil {
			values = map[string]string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessionId": sessionID, "values": values})
		return
	}

	if !rbac.Can(caller.Role, rbac.ActionEditValues) {
		s.forbid(w, r, caller, rbac.ActionEditValues)
		return
	}

	var err error
	switch {
	case r.Method == http.MethodDelete && len(parts) == 0:
		err = s.service.ClearSession(r.Context(), sessionID)
	case r.Method == http.MethodPut && len(parts) == 1:
		var body struct {
			Value *string `json:"value"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if body.Value == nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "value is required", nil)
			return
		}
		err = s.service.SetMentionValue(r.Context(), sessionID, parts[0], *body.Value)
	case r.Method == http.MethodDelete && len(parts) == 1:
		err = s.service.DeleteMentionValue(r.Context(), sessionID, parts[0])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// resolveSession returns an anonymous viewer when no token is sent. A token that
// fails to verify is rejected rather than downgraded.
func (s *HTTPServer) resolveSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return Session{Role: rbac.RoleViewer}, true
	}
	caller, err := s.service.SessionFromToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	return caller, true
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, code, message, details)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", id)

		next.ServeHTTP(writer, r)

		metrics.HTTPRequest(r.Method, writer.status)
		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", writer.status),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
		)
	})
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) || errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func queryInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
