package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups everything the HTTP layer calls into
type Services struct {
	Catalog     *service.Catalog
	Cart        *service.Cart
	Checkout    *service.Checkout
	History     *service.History
	Accounts    *service.Accounts
	Preferences *service.Preferences
	Complaints  *service.Complaints
	Tokens      *service.TokenIssuer
}

// Handler contains HTTP handlers
type Handler struct {
	svc Services

	// authRequired makes buyer routes reject anonymous requests
	authRequired bool
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, authRequired bool) *Handler {
	return &Handler{
		svc:          svc,
		authRequired: authRequired,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	farmer := h.requireRole(true, models.UserTypeFarmer)
	buyer := h.requireRole(h.authRequired, models.UserTypeBuyer)
	seller := h.requireRole(h.authRequired, models.UserTypeFarmer)

	v1 := router.Group("/api/v1")
	v1.Use(h.authenticate())
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", farmer, h.createProduct)
		v1.PATCH("/products/:id", farmer, h.updateProduct)
		v1.DELETE("/products/:id", farmer, h.deleteProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", buyer, h.addCartItem)
		v1.PUT("/cart/items/:productId", buyer, h.updateCartItem)
		v1.DELETE("/cart/items/:productId", buyer, h.removeCartItem)
		v1.DELETE("/cart", buyer, h.clearCart)

		v1.GET("/payment-methods", h.listPaymentMethods)
		v1.GET("/checkout/summary", h.checkoutSummary)
		v1.GET("/checkout/status", h.checkoutStatus)
		v1.POST("/checkout", buyer, h.proceedCheckout)
		v1.POST("/checkout/reset", buyer, h.resetCheckout)

		v1.GET("/history", h.listHistory)
		v1.DELETE("/history", buyer, h.clearHistory)

		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)
		v1.POST("/auth/logout", h.logout)
		v1.GET("/auth/me", h.me)
		v1.PATCH("/auth/profile", h.updateProfile)

		v1.GET("/preferences", h.getPreferences)
		v1.PATCH("/preferences", h.updatePreferences)

		v1.GET("/complaints", h.listComplaints)
		v1.POST("/complaints", buyer, h.createComplaint)
		v1.PUT("/complaints/:id", buyer, h.updateComplaint)
		v1.PUT("/complaints/:id/status", seller, h.setComplaintStatus)
		v1.DELETE("/complaints/:id", buyer, h.deleteComplaint)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// fail writes err with the status its kind maps to
func fail(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrPaymentMethod):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
