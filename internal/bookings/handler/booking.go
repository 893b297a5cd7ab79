package handler

import (
	"net/http"

	"eventhub/internal/bookings/service"
	"eventhub/pkg/auth"
	apperrors "eventhub/pkg/errors"
	httputil "eventhub/pkg/http"
	"eventhub/pkg/logger"
	"eventhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const basePath = "/api/v1/bookings"

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(basePath, h.Create)
	router.GET(basePath, h.List)
	router.GET(basePath+"/id/:id", h.GetByID)
	router.PUT(basePath+"/id/:id/status", h.Transition)
	router.POST(basePath+"/id/:id/payments", h.RecordPayment)
	router.POST(basePath+"/id/:id/refund", h.SettleRefund)
	router.POST(basePath+"/id/:id/review", h.AttachReview)
	router.POST(basePath+"/id/:id/messages", h.PostMessage)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

// principal fails the request when the authentication middleware did not run.
func (h *BookingHandler) principal(w http.ResponseWriter, r *http.Request, handler string) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("authentication required"))
		return auth.Principal{}, false
	}
	return p, true
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := h.principal(w, r, "Create")
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, ok := h.principal(w, r, "List")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		Status: model.BookingStatus(query.Get("status")),
		Venue:  query.Get("venue"),
		Limit:  limit,
		Offset: offset,
	}

	bookings, total, err := h.service.ListFor(r.Context(), p, filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "GetByID")
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), p, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "Transition")
	if !ok {
		return
	}

	var req model.TransitionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Transition", err)
		return
	}

	booking, err := h.service.Transition(r.Context(), p, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Transition", err)
		return
	}
	h.writeSuccess(w, "Transition", booking)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "RecordPayment")
	if !ok {
		return
	}

	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RecordPayment", err)
		return
	}

	booking, err := h.service.RecordPayment(r.Context(), p, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "RecordPayment", err)
		return
	}
	h.writeSuccess(w, "RecordPayment", booking)
}

func (h *BookingHandler) SettleRefund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "SettleRefund")
	if !ok {
		return
	}

	booking, err := h.service.SettleRefund(r.Context(), p, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "SettleRefund", err)
		return
	}
	h.writeSuccess(w, "SettleRefund", booking)
}

func (h *BookingHandler) AttachReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "AttachReview")
	if !ok {
		return
	}

	var req model.ReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AttachReview", err)
		return
	}

	booking, err := h.service.AttachReview(r.Context(), p, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AttachReview", err)
		return
	}
	h.writeSuccess(w, "AttachReview", booking)
}

func (h *BookingHandler) PostMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, ok := h.principal(w, r, "PostMessage")
	if !ok {
		return
	}

	var req model.MessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "PostMessage", err)
		return
	}

	booking, err := h.service.PostMessage(r.Context(), p, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "PostMessage", err)
		return
	}
	h.writeSuccess(w, "PostMessage", booking)
}
