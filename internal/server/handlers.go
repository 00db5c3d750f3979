package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"llmgate/internal/domain"
	"llmgate/internal/metrics"
)

// The denial messages are part of the client contract: callers match on
// these exact strings.
const (
	msgCommandBlocked = "Command not allowed due to security restrictions"
	msgPathBlocked    = "Path access restricted due to security settings"
)

type cliRequest struct {
	Command string `json:"command"`
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// handleCLI executes a shell command through the policy gate. The
// command comes from the JSON body, with a query parameter fallback for
// simple clients.
func (s *Server) handleCLI(w http.ResponseWriter, r *http.Request) {
	var req cliRequest
	if err := decodeBody(r, &req); err != nil && r.URL.Query().Get("command") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Command == "" {
		req.Command = r.URL.Query().Get("command")
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "command is required"})
		return
	}

	if d := s.engine.CheckCommand(req.Command); !d.Allowed {
		s.audit(r.Context(), domain.AuditEntry{
			Action:    "policy_denied",
			Operation: "cli",
			Target:    req.Command,
			Result:    "blocked",
			Details:   d.Reason,
		})
		s.writeDomainError(w, &domain.PolicyError{Target: req.Command, Reason: msgCommandBlocked})
		return
	}

	res, err := s.shell.Execute(r.Context(), req.Command)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.CommandsExecuted.Inc()
	s.audit(r.Context(), domain.AuditEntry{
		Action:    "command_executed",
		Operation: "cli",
		Target:    req.Command,
		Result:    "exit " + strconv.Itoa(res.ExitCode),
	})

	writeJSON(w, http.StatusOK, s.mediator.WrapCommand(req.Command, res))
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	if d := s.engine.CheckPath(path); !d.Allowed {
		s.audit(r.Context(), domain.AuditEntry{
			Action:    "policy_denied",
			Operation: "read_file",
			Target:    path,
			Result:    "blocked",
			Details:   d.Reason,
		})
		s.writeDomainError(w, &domain.PolicyError{Target: path, Reason: msgPathBlocked})
		return
	}

	content, err := s.files.Read(path)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.FilesRead.Inc()

	writeJSON(w, http.StatusOK, s.mediator.WrapFileRead(path, content))
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	var req writeFileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	if d := s.engine.CheckPath(req.Path); !d.Allowed {
		s.audit(r.Context(), domain.AuditEntry{
			Action:    "policy_denied",
			Operation: "write_file",
			Target:    req.Path,
			Result:    "blocked",
			Details:   d.Reason,
		})
		s.writeDomainError(w, &domain.PolicyError{Target: req.Path, Reason: msgPathBlocked})
		return
	}

	if err := s.files.Write(req.Path, req.Content); err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.FilesWritten.Inc()
	s.audit(r.Context(), domain.AuditEntry{
		Action:    "file_written",
		Operation: "write_file",
		Target:    req.Path,
		Result:    "ok",
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"path":          req.Path,
		"bytes_written": len(req.Content),
	})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "item store is disabled"})
		return
	}

	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := s.store.CreateItem(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics.ItemsCreated.Inc()

	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "item store is disabled"})
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	item, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// unifiedRequest is the single-endpoint envelope: one operation name
// plus loosely typed parameters.
type unifiedRequest struct {
	Operation string          `json:"operation"`
	Params    json.RawMessage `json:"params"`
}

// handleUnified dispatches the /api envelope onto the same handlers as
// the dedicated routes, by rewriting the request in place.
func (s *Server) handleUnified(w http.ResponseWriter, r *http.Request) {
	var req unifiedRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params := req.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	switch req.Operation {
	case "cli":
		s.handleCLI(w, rewritten(r, params))
	case "read_file":
		var p struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid params"})
			return
		}
		r2 := r.Clone(r.Context())
		q := r2.URL.Query()
		q.Set("path", p.Path)
		r2.URL.RawQuery = q.Encode()
		s.handleReadFile(w, r2)
	case "write_file":
		s.handleWriteFile(w, rewritten(r, params))
	case "create_item":
		s.handleCreateItem(w, rewritten(r, params))
	case "get_item":
		// The canonical parameter is item_id; id is accepted as an alias.
		var p struct {
			ItemID json.Number `json:"item_id"`
			ID     json.Number `json:"id"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid params"})
			return
		}
		raw := p.ItemID
		if raw == "" {
			raw = p.ID
		}
		id, err := raw.Int64()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
			return
		}
		s.getItemByID(w, r, id)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown operation: " + req.Operation,
		})
	}
}

// rewritten replaces the request body with the unified params so the
// dedicated handlers can decode it unchanged.
func rewritten(r *http.Request, params json.RawMessage) *http.Request {
	r2 := r.Clone(r.Context())
	r2.Body = io.NopCloser(strings.NewReader(string(params)))
	r2.ContentLength = int64(len(params))
	return r2
}

func (s *Server) getItemByID(w http.ResponseWriter, r *http.Request, id int64) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "item store is disabled"})
		return
	}
	item, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}
