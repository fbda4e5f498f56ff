package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/terrace-erp/terrace/internal/platform/httpx"
	"github.com/terrace-erp/terrace/internal/shared"
)

// ReceiptRenderer turns receipt HTML into a PDF document.
type ReceiptRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ReceiptBuilder produces the printable receipt markup.
type ReceiptBuilder interface {
	PaymentReceiptHTML(sale *Sale, obligation *Obligation) string
}

// Handler manages sale endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	pdf       ReceiptRenderer
	receipts  ReceiptBuilder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pdf ReceiptRenderer, receipts ReceiptBuilder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		pdf:       pdf,
		receipts:  receipts,
	}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Get("/{id}/summary", h.summary)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/payments/{obligationID}", h.recordPayment)
	r.Get("/{id}/payments/{obligationID}/receipt.pdf", h.receipt)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{Limit: 50}
	q := r.URL.Query()
	req.ProjectID, _ = strconv.ParseInt(q.Get("projectId"), 10, 64)
	req.BlockID, _ = strconv.ParseInt(q.Get("blockId"), 10, 64)
	req.CustomerID, _ = strconv.ParseInt(q.Get("customerId"), 10, 64)
	req.Status = SaleStatus(q.Get("status"))
	req.PaymentStatus = PaymentStatus(q.Get("paymentStatus"))
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 500 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		req.Offset = offset
	}

	sales, total, err := h.service.ListSales(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "list sales failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales": sales,
		"total": total,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	sale, err := h.service.CreateSale(r.Context(), req, actor.ID)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			httpx.Problem(w, http.StatusUnprocessableEntity, "invalid sale", err.Error())
			return
		}
		if errors.Is(err, shared.ErrInvalidStatus) || errors.Is(err, shared.ErrAlreadyExists) {
			httpx.Problem(w, http.StatusConflict, "block unavailable", shared.UserSafeMessage(err))
			return
		}
		h.logger.Error("create sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "create sale failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.service.GetPaymentSummary(r.Context(), id)
	if err != nil {
		h.respondError(w, "payment summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	saleID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	obligationID, ok := h.parseID(w, r, "obligationID")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	sale, err := h.service.RecordPayment(r.Context(), saleID, obligationID, req, r.Header.Get("Idempotency-Key"), actor.ID)
	if err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			httpx.Problem(w, http.StatusConflict, "duplicate request", "payment already recorded")
			return
		}
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	var req CancelSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	sale, err := h.service.CancelSale(r.Context(), id, req.Reason, actor.ID)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidStatus) {
			httpx.Problem(w, http.StatusConflict, "cannot cancel", err.Error())
			return
		}
		h.respondError(w, "cancel sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil || h.receipts == nil {
		httpx.Problem(w, http.StatusNotImplemented, "pdf disabled", "receipt rendering is not configured")
		return
	}
	saleID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	obligationID, ok := h.parseID(w, r, "obligationID")
	if !ok {
		return
	}

	sale, err := h.service.GetSale(r.Context(), saleID)
	if err != nil {
		h.respondError(w, "get sale", err)
		return
	}
	var obligation *Obligation
	for i := range sale.Payments {
		if sale.Payments[i].ID == obligationID {
			obligation = &sale.Payments[i]
			break
		}
	}
	if obligation == nil {
		httpx.Problem(w, http.StatusNotFound, "not found", "obligation not found on sale")
		return
	}

	pdf, err := h.pdf.RenderHTML(r.Context(), h.receipts.PaymentReceiptHTML(sale, obligation))
	if err != nil {
		h.logger.Error("render receipt", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "render failed", "receipt rendering unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="receipt-`+strconv.FormatInt(obligationID, 10)+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid id", "path parameter "+param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "not found", shared.UserSafeMessage(err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, op+" failed", shared.UserSafeMessage(err))
}
