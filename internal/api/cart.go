package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) cartBody() gin.H {
	return gin.H{
		"items":     h.svc.Cart.Lines(),
		"total":     h.svc.Cart.Total(),
		"itemCount": h.svc.Cart.ItemCount(),
	}
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartBody())
}

// addCartItem snapshots the catalog product into the cart. Quantity
// defaults to 1.
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	p, err := h.svc.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		fail(c, "Product not found", err)
		return
	}

	if _, err := h.svc.Cart.AddToCart(ctx, p, req.Quantity); err != nil {
		fail(c, "Failed to add to cart", err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	_, found, err := h.svc.Cart.UpdateQuantity(c.Request.Context(), c.Param("productId"), req.Quantity)
	if err != nil {
		fail(c, "Failed to update cart", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *Handler) removeCartItem(c *gin.Context) {
	if err := h.svc.Cart.RemoveFromCart(c.Request.Context(), c.Param("productId")); err != nil {
		fail(c, "Failed to remove from cart", err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.svc.Cart.ClearCart(c.Request.Context()); err != nil {
		fail(c, "Failed to clear cart", err)
		return
	}
	c.Status(http.StatusNoContent)
}
