package handler

import (
	"encoding/json"
	"net/http"

	"equiprent/internal/orders/service"
	httputil "equiprent/pkg/http"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OrderHandler struct {
	service service.OrderService
	log     *logger.Logger
}

func NewOrderHandler(service service.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var order model.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	result, err := h.service.Create(r.Context(), &order)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, result, result.Warnings); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, order); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.OrderStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "UpdateStatus")
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccessWithWarnings(w, result, result.Warnings); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccessWithWarnings", "error", err)
	}
}

func (h *OrderHandler) writeBadBody(w http.ResponseWriter, name string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *OrderHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *OrderHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/orders", h.Create)
	router.GET("/api/v1/orders/id/:id", h.GetByID)
	router.PATCH("/api/v1/orders/id/:id/status", h.UpdateStatus)
}
