package api

import (
	"net/http"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": models.PaymentMethods})
}

func (h *Handler) checkoutSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Checkout.Summary())
}

func (h *Handler) checkoutStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Checkout.Status())
}

// proceedCheckout blocks for the whole payment delay and answers with the order
func (h *Handler) proceedCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.svc.Checkout.Proceed(c.Request.Context(), req)
	if err != nil {
		fail(c, "Checkout failed", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) resetCheckout(c *gin.Context) {
	h.svc.Checkout.Reset()
	c.JSON(http.StatusOK, h.svc.Checkout.Status())
}

func (h *Handler) listHistory(c *gin.Context) {
	orders := h.svc.History.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *Handler) clearHistory(c *gin.Context) {
	if err := h.svc.History.Clear(c.Request.Context()); err != nil {
		fail(c, "Failed to clear history", err)
		return
	}
	c.Status(http.StatusNoContent)
}
