package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/dto"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// AdminHandler serves order management endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// List handles GET /api/admin/orders.
func (h *AdminHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(parsed, maxListLimit)
	}

	orders, err := h.facade.Orders(c.Request.Context(), model.OrderFilter{
		Status:        model.OrderStatus(c.Query("status")),
		PaymentMethod: model.PaymentMethod(c.Query("payment_method")),
		Limit:         limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidFilter):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Fulfill handles POST /api/admin/orders/:id/fulfill.
func (h *AdminHandler) Fulfill(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.facade.FulfillOrder(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
