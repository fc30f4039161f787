package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"stablebook/internal/reservations/service"
	"stablebook/pkg/auth"
	apperrors "stablebook/pkg/errors"
	httputil "stablebook/pkg/http"
	"stablebook/pkg/logger"
	"stablebook/pkg/model"
	"stablebook/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) CreateBatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BatchRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, "CreateBatch", decodeError(err))
		return
	}

	created, err := h.service.CreateBatch(r.Context(), auth.CallerFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "CreateBatch", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBatch", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	ownerOnly, err := httputil.ExtractBool(r, "owner_only")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	views, total, err := h.service.List(r.Context(), auth.CallerFromContext(r.Context()), service.ListQuery{
		OwnerOnly: ownerOnly,
		StableID:  sanitizer.SanitizeID(query.Get("stable_id")),
		Statuses:  sanitizer.SanitizeCSV(query.Get("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, views, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := sanitizer.SanitizeID(ps.ByName("id"))

	reservation, err := h.service.GetByID(r.Context(), auth.CallerFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations/batch", h.CreateBatch)
	router.GET("/api/v1/reservations", h.List)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func decodeError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return apperrors.InvalidInput("Request body too large")
	case errors.Is(err, io.EOF):
		return apperrors.InvalidInput("Request body is empty")
	default:
		return apperrors.InvalidInput("Invalid request body")
	}
}
