package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/dto"
)

// orderIDParam parses the :id path parameter.
func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                 order.ID,
		Status:             string(order.Status),
		StatusDisplay:      order.Status.Display(),
		PaymentMethod:      string(order.PaymentMethod),
		Total:              order.Total.StringFixed(2),
		CheckoutRequestID:  order.CheckoutRequestID,
		TransactionID:      order.TransactionID,
		PaymentInitiatedAt: order.PaymentInitiatedAt,
		CreatedAt:          order.CreatedAt,
		Customer: dto.CustomerResponse{
			FirstName:     order.Customer.FirstName,
			LastName:      order.Customer.LastName,
			Phone:         order.Customer.Phone,
			Email:         order.Customer.Email,
			County:        order.Customer.County,
			PickupStation: order.Customer.PickupStation,
		},
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Size:          item.Size,
			Icing:         item.Icing,
			Eggs:          item.Eggs,
			CustomMessage: item.CustomMessage,
			UnitPrice:     item.UnitPrice.StringFixed(2),
			Quantity:      item.Quantity,
			TotalPrice:    item.TotalPrice.StringFixed(2),
		})
	}
	return resp
}
