package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/dto"
	"github.com/polkiloo/cakeshop-checkout/internal/usecase"
)

// CheckoutHandler turns a confirmed cart into an order.
type CheckoutHandler struct {
	facade CheckoutFacade
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade) *CheckoutHandler {
	return &CheckoutHandler{facade: facade}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), toCheckoutInput(req))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyCart),
			errors.Is(err, domainErrors.ErrInvalidCustomer),
			errors.Is(err, domainErrors.ErrInvalidPaymentMethod),
			errors.Is(err, domainErrors.ErrInvalidLineItem):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "could not place order"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		Order:         toOrderResponse(*result.Order),
		PaymentFailed: result.PaymentFailed,
		Message:       result.Message,
	})
}

// Stations handles GET /api/checkout/county-stations.
func (h *CheckoutHandler) Stations(c *gin.Context) {
	county := strings.TrimSpace(c.Query("county"))
	if county == "" {
		c.JSON(http.StatusOK, dto.StationsResponse{Stations: []string{}, Counties: h.facade.Counties()})
		return
	}
	c.JSON(http.StatusOK, dto.StationsResponse{County: county, Stations: h.facade.Stations(county)})
}

func toCheckoutInput(req dto.CheckoutRequest) usecase.CheckoutInput {
	in := usecase.CheckoutInput{
		Customer: model.Customer{
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Phone:         req.Phone,
			Email:         req.Email,
			County:        req.County,
			PickupStation: req.PickupStation,
		},
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Description:   req.Description,
	}
	for _, item := range req.Items {
		in.Cart.Lines = append(in.Cart.Lines, model.CartLine{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Size:          item.Size,
			Icing:         item.Icing,
			Eggs:          item.Eggs,
			CustomMessage: item.CustomMessage,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
		})
	}
	return in
}
