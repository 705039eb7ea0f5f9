package rest

import "github.com/gofiber/fiber/v2"

type paymentOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreatePaymentOrder opens an order with the payment provider
func (h *Handler) CreatePaymentOrder(c *fiber.Ctx) error {
	var req paymentOrderRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	order, err := h.uc.Payments.CreatePaymentOrder(c.UserContext(), req.Amount, req.Currency)
	if err != nil {
		return err
	}
	return c.JSON(order)
}
