package handler

import (
	"net/http"

	"equiprent/internal/reservations/availability"
	"equiprent/internal/reservations/repository"
	"equiprent/internal/reservations/service"
	httputil "equiprent/pkg/http"
	"equiprent/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	availability service.AvailabilityService
	reservations service.ReservationService
	log          *logger.Logger
}

func NewReservationHandler(availability service.AvailabilityService, reservations service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		availability: availability,
		reservations: reservations,
		log:          log,
	}
}

// ListSlots serves GET /api/v1/slots?equipmentType=&equipmentId=&date=
func (h *ReservationHandler) ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequireQuery(r, "equipmentType", "date")
	if err != nil {
		h.writeError(w, "ListSlots", err)
		return
	}
	h.daySlots(w, r, "ListSlots", params["equipmentType"], params["date"])
}

// ListSlotsFor serves GET /api/v1/slots/:serviceType?equipmentId=&date=
func (h *ReservationHandler) ListSlotsFor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	params, err := httputil.RequireQuery(r, "date")
	if err != nil {
		h.writeError(w, "ListSlotsFor", err)
		return
	}
	h.daySlots(w, r, "ListSlotsFor", ps.ByName("serviceType"), params["date"])
}

func (h *ReservationHandler) daySlots(w http.ResponseWriter, r *http.Request, name, serviceType, date string) {
	day, err := h.availability.GetDaySlots(r.Context(), serviceType, r.URL.Query().Get("equipmentId"), date)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, day); err != nil {
		h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", err)
	}
}

// CheckAvailability serves GET /api/v1/availability for a single interval.
func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequireQuery(r, "equipmentType", "equipmentId", "date", "startTime")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	query := r.URL.Query()

	result, err := h.availability.CheckInterval(r.Context(), availability.IntervalQuery{
		EquipmentType:   params["equipmentType"],
		EquipmentID:     params["equipmentId"],
		Date:            params["date"],
		StartTime:       params["startTime"],
		EndTime:         query.Get("endTime"),
		EndDate:         query.Get("endDate"),
		ReservationType: query.Get("reservationType"),
		ExcludeOrderID:  query.Get("excludeOrderId"),
	})
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write JSON response", "handler", "CheckAvailability", "operation", "WriteJSON", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.reservations.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Search serves GET /api/v1/reservations/search?equipmentType=&equipmentId=&orderId=&status=&from=&to=
func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	filter := repository.SearchFilter{
		EquipmentType: query.Get("equipmentType"),
		EquipmentID:   query.Get("equipmentId"),
		OrderID:       query.Get("orderId"),
		Status:        query.Get("status"),
		FromDate:      query.Get("from"),
		ToDate:        query.Get("to"),
	}

	reservations, total, err := h.reservations.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.ListSlots)
	router.GET("/api/v1/slots/:serviceType", h.ListSlotsFor)
	router.GET("/api/v1/availability", h.CheckAvailability)
	router.GET("/api/v1/reservations/search", h.Search)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
}
