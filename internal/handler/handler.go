// Package handler exposes the modify and query services over HTTP. The
// transport stays thin: it parses identifiers, coordinates, and paging, maps
// typed error kinds to status codes, and passes everything else through.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"chronodoc/internal/domain"
	"chronodoc/internal/service"
)

// DocumentHandler handles document API requests.
type DocumentHandler struct {
	modify *service.ModifyService
	query  *service.QueryService
	logger *zap.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(modify *service.ModifyService, query *service.QueryService, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{modify: modify, query: query, logger: logger}
}

// Register attaches all routes to the mux.
func (h *DocumentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/documents", h.handleDocuments)
	mux.HandleFunc("/api/documents/", h.handleDocument)
	mux.HandleFunc("/api/nodes/", h.handleNode)
	mux.HandleFunc("/api/search", h.handleSearch)
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type addRequest struct {
	Portfolio  *domain.Portfolio `json:"portfolio"`
	Visibility domain.Visibility `json:"visibility,omitempty"`
}

type updateRequest struct {
	Portfolio *domain.Portfolio `json:"portfolio"`
}

type uniqueIDResponse struct {
	UniqueID string `json:"unique_id"`
}

func (h *DocumentHandler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	uid, err := h.modify.Add(r.Context(), req.Portfolio, req.Visibility)
	if err != nil {
		h.serviceError(w, "Failed to add document", err)
		return
	}
	h.writeJSON(w, uniqueIDResponse{UniqueID: uid.String()}, http.StatusCreated)
}

func (h *DocumentHandler) handleDocument(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if rest == "" {
		h.writeError(w, "Document ID required", "", http.StatusBadRequest)
		return
	}
	idPart, action, _ := strings.Cut(rest, "/")

	uid, err := domain.ParseUniqueID(idPart)
	if err != nil {
		h.writeError(w, "Invalid document ID", err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getDocument(w, r, uid)
	case action == "" && r.Method == http.MethodPut:
		h.updateDocument(w, r, uid)
	case action == "" && r.Method == http.MethodDelete:
		h.removeDocument(w, r, uid)
	case action == "correct" && r.Method == http.MethodPost:
		h.correctDocument(w, r, uid)
	case action == "reinstate" && r.Method == http.MethodPost:
		h.reinstateDocument(w, r, uid)
	case action == "history" && r.Method == http.MethodGet:
		h.documentHistory(w, r, uid.ObjectID)
	default:
		h.writeError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request, uid domain.UniqueID) {
	versionAsOf, err := parseInstant(r, "version_as_of")
	if err != nil {
		h.writeError(w, "Invalid version_as_of", err.Error(), http.StatusBadRequest)
		return
	}
	correctedAsOf, err := parseInstant(r, "corrected_as_of")
	if err != nil {
		h.writeError(w, "Invalid corrected_as_of", err.Error(), http.StatusBadRequest)
		return
	}

	var doc *domain.Document
	if versionAsOf != nil || correctedAsOf != nil {
		vc := domain.VersionCorrection{VersionAsOf: versionAsOf, CorrectedAsOf: correctedAsOf}
		doc, err = h.query.GetAt(r.Context(), uid.ObjectID, vc)
	} else {
		doc, err = h.query.Get(r.Context(), uid)
	}
	if err != nil {
		h.serviceError(w, "Failed to get document", err)
		return
	}
	h.writeJSON(w, doc, http.StatusOK)
}

func (h *DocumentHandler) updateDocument(w http.ResponseWriter, r *http.Request, uid domain.UniqueID) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	newUID, err := h.modify.Update(r.Context(), uid, req.Portfolio)
	if err != nil {
		h.serviceError(w, "Failed to update document", err)
		return
	}
	h.writeJSON(w, uniqueIDResponse{UniqueID: newUID.String()}, http.StatusOK)
}

func (h *DocumentHandler) correctDocument(w http.ResponseWriter, r *http.Request, uid domain.UniqueID) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	newUID, err := h.modify.Correct(r.Context(), uid, req.Portfolio)
	if err != nil {
		h.serviceError(w, "Failed to correct document", err)
		return
	}
	h.writeJSON(w, uniqueIDResponse{UniqueID: newUID.String()}, http.StatusOK)
}

func (h *DocumentHandler) removeDocument(w http.ResponseWriter, r *http.Request, uid domain.UniqueID) {
	if err := h.modify.Remove(r.Context(), uid); err != nil {
		h.serviceError(w, "Failed to remove document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) reinstateDocument(w http.ResponseWriter, r *http.Request, uid domain.UniqueID) {
	newUID, err := h.modify.Reinstate(r.Context(), uid)
	if err != nil {
		h.serviceError(w, "Failed to reinstate document", err)
		return
	}
	h.writeJSON(w, uniqueIDResponse{UniqueID: newUID.String()}, http.StatusOK)
}

func (h *DocumentHandler) documentHistory(w http.ResponseWriter, r *http.Request, oid domain.ObjectID) {
	req := service.DefaultHistoryRequest()
	var err error
	if req.VersionsFrom, err = parseInstant(r, "versions_from"); err != nil {
		h.writeError(w, "Invalid versions_from", err.Error(), http.StatusBadRequest)
		return
	}
	if req.VersionsTo, err = parseInstant(r, "versions_to"); err != nil {
		h.writeError(w, "Invalid versions_to", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Depth, err = parseDepth(r, req.Depth); err != nil {
		h.writeError(w, "Invalid depth", err.Error(), http.StatusBadRequest)
		return
	}
	req.Paging = parsePaging(r)

	result, err := h.query.History(r.Context(), oid, req)
	if err != nil {
		h.serviceError(w, "Failed to get history", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

func (h *DocumentHandler) handleNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}
	idPart := strings.TrimPrefix(r.URL.Path, "/api/nodes/")
	uid, err := domain.ParseUniqueID(idPart)
	if err != nil {
		h.writeError(w, "Invalid node ID", err.Error(), http.StatusBadRequest)
		return
	}
	node, err := h.query.GetNode(r.Context(), uid)
	if err != nil {
		h.serviceError(w, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

func (h *DocumentHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}
	req := service.DefaultSearchRequest()
	req.Name = r.URL.Query().Get("name")
	req.Visibility = domain.Visibility(r.URL.Query().Get("visibility"))
	req.Paging = parsePaging(r)

	var err error
	if req.Depth, err = parseDepth(r, req.Depth); err != nil {
		h.writeError(w, "Invalid depth", err.Error(), http.StatusBadRequest)
		return
	}

	versionAsOf, err := parseInstant(r, "version_as_of")
	if err != nil {
		h.writeError(w, "Invalid version_as_of", err.Error(), http.StatusBadRequest)
		return
	}
	correctedAsOf, err := parseInstant(r, "corrected_as_of")
	if err != nil {
		h.writeError(w, "Invalid corrected_as_of", err.Error(), http.StatusBadRequest)
		return
	}
	req.VersionCorrection = domain.VersionCorrection{VersionAsOf: versionAsOf, CorrectedAsOf: correctedAsOf}

	if ids, ok := r.URL.Query()["object_id"]; ok {
		req.ObjectIDs = make([]domain.ObjectID, 0, len(ids))
		for _, raw := range ids {
			oid, err := domain.ParseObjectID(raw)
			if err != nil {
				h.writeError(w, "Invalid object_id", err.Error(), http.StatusBadRequest)
				return
			}
			req.ObjectIDs = append(req.ObjectIDs, oid)
		}
	}
	if ids, ok := r.URL.Query()["node_object_id"]; ok {
		for _, raw := range ids {
			oid, err := domain.ParseObjectID(raw)
			if err != nil {
				h.writeError(w, "Invalid node_object_id", err.Error(), http.StatusBadRequest)
				return
			}
			req.NodeObjectIDs = append(req.NodeObjectIDs, oid)
		}
	}

	result, err := h.query.Search(r.Context(), req)
	if err != nil {
		h.serviceError(w, "Failed to search documents", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// ============================================================================
// Helpers
// ============================================================================

func parseInstant(r *http.Request, param string) (*time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDepth reads the tree-depth knob: -1 unlimited, 0 root only.
func parseDepth(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("depth")
	if raw == "" {
		return fallback, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if depth < -1 {
		return 0, fmt.Errorf("depth %d out of range", depth)
	}
	return depth, nil
}

func parsePaging(r *http.Request) domain.PagingRequest {
	paging := domain.PagingAll()
	if first, err := strconv.Atoi(r.URL.Query().Get("first")); err == nil && first > 0 {
		paging.First = first
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && size > 0 {
		paging.Size = size
	}
	return paging
}

// serviceError maps typed error kinds to status codes.
func (h *DocumentHandler) serviceError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case domain.IsConcurrentModification(err):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		h.logger.Error(msg, zap.Error(err))
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *DocumentHandler) writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *DocumentHandler) writeError(w http.ResponseWriter, msg, details string, status int) {
	h.writeJSON(w, ErrorResponse{Error: msg, Details: details}, status)
}
