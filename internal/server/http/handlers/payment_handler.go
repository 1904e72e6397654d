package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/dto"
)

// PaymentHandler serves payment polling, cancellation and gateway callbacks.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Status handles GET /api/orders/:id/payment-status.
func (h *PaymentHandler) Status(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}

	view, err := h.facade.PaymentStatus(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.PaymentStatusResponse{
		OrderID:       view.OrderID,
		Status:        string(view.Status),
		StatusDisplay: view.Status.Display(),
		TransactionID: view.TransactionID,
		PaymentMethod: string(view.PaymentMethod),
		IsExpired:     view.IsExpired,
	})
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.CancelResponse{
		Success: order.Status == model.OrderStatusCancelled,
		Status:  string(order.Status),
	})
}

// Callback handles POST /mpesa/callback. The gateway always gets HTTP 200.
func (h *PaymentHandler) Callback(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("read payment callback body", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, model.AckInvalidJSON)
		return
	}
	c.JSON(http.StatusOK, h.facade.HandlePaymentCallback(c.Request.Context(), raw))
}
