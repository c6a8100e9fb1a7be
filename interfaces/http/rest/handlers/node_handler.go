package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	pkgerrors "raven/pkg/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// NodeService is the node use-case surface the handler needs
type NodeService interface {
	Add(ctx context.Context, nodeData map[string]any) (string, error)
	Update(ctx context.Context, nodeID string, updateData map[string]any) error
	Delete(ctx context.Context, nodeID string) error
}

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	service NodeService
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(service NodeService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		service: service,
		errors:  errorHandler,
		logger:  logger,
	}
}

// CreateNodeResponse is returned by POST /nodes
type CreateNodeResponse struct {
	ID string `json:"id"`
}

// UpdateNodeResponse is returned by PATCH /nodes/{nodeID}
type UpdateNodeResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// CreateNode handles POST /nodes. The body is the node data, including "type".
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	id, err := h.service.Add(r.Context(), data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateNodeResponse{ID: id})
}

// UpdateNode handles PATCH /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	data, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), nodeID, data); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, UpdateNodeResponse{ID: nodeID, Message: "Node updated"})
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	if err := h.service.Delete(r.Context(), nodeID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads exactly one JSON object. Numbers are kept as json.Number so
// integer fields are not routed through float64.
func (h *NodeHandler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		msg := "Invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		h.errors.HandleStatus(w, r, http.StatusBadRequest, msg)
		return nil, false
	}
	if data == nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Request body must be a JSON object")
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Request body must contain a single JSON object")
		return nil, false
	}
	return data, true
}

func (h *NodeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
