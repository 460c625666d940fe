package api

import (
	"net/http"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

// listProducts handles GET /products?category=&search=&sort=
func (h *Handler) listProducts(c *gin.Context) {
	mode, err := service.ParseSortMode(c.Query("sort"))
	if err != nil {
		fail(c, "Invalid sort mode", err)
		return
	}

	filter := service.Filter{
		Category: models.Category(c.Query("category")),
		Search:   c.Query("search"),
	}

	products, err := h.svc.Catalog.List(c.Request.Context(), filter, mode)
	if err != nil {
		fail(c, "Failed to list products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "Product not found", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.svc.Catalog.Add(c.Request.Context(), req)
	if err != nil {
		fail(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var patch service.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	p, found, err := h.svc.Catalog.Edit(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, "Failed to update product", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// deleteProduct answers 204 whether or not the product existed
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.svc.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, "Failed to delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}
