package api

import (
	"fmt"
	"net/http"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type preferencesRequest struct {
	Theme    *models.ThemeMode `json:"theme"`
	Language *models.Language  `json:"language"`
}

type complaintRequest struct {
	Description string  `json:"description"`
	ProofImage  *string `json:"proofImage"`
}

type complaintStatusRequest struct {
	Status models.ComplaintStatus `json:"status" binding:"required"`
}

// respondWithToken answers with the user plus a fresh access token
func (h *Handler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, exp, err := h.svc.Tokens.Issue(*user)
	if err != nil {
		fail(c, "Failed to issue token", err)
		return
	}
	c.JSON(status, gin.H{
		"user":      user,
		"token":     token,
		"expiresAt": exp,
	})
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.svc.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, "Registration failed", err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.svc.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, "Login failed", err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Accounts.Logout(c.Request.Context()); err != nil {
		fail(c, "Logout failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.svc.Accounts.Current(c.Request.Context())
	if err != nil {
		fail(c, "Not signed in", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var patch service.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.svc.Accounts.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		fail(c, "Failed to update profile", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not signed in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) preferencesBody(c *gin.Context) gin.H {
	ctx := c.Request.Context()
	return gin.H{
		"theme":    h.svc.Preferences.Theme(ctx),
		"language": h.svc.Preferences.Language(ctx),
	}
}

func (h *Handler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.preferencesBody(c))
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.Theme != nil {
		if err := h.svc.Preferences.SetTheme(ctx, *req.Theme); err != nil {
			fail(c, "Failed to save theme", err)
			return
		}
	}
	if req.Language != nil {
		if err := h.svc.Preferences.SetLanguage(ctx, *req.Language); err != nil {
			fail(c, "Failed to save language", err)
			return
		}
	}
	c.JSON(http.StatusOK, h.preferencesBody(c))
}

func (h *Handler) listComplaints(c *gin.Context) {
	list, err := h.svc.Complaints.List(c.Request.Context())
	if err != nil {
		fail(c, "Failed to list complaints", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"complaints": list,
		"count":      len(list),
	})
}

func (h *Handler) createComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	complaint, err := h.svc.Complaints.Create(c.Request.Context(), req.Description, req.ProofImage)
	if err != nil {
		fail(c, "Failed to file complaint", err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

func (h *Handler) updateComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	found, err := h.svc.Complaints.Update(c.Request.Context(), c.Param("id"), req.Description, req.ProofImage)
	h.complaintResult(c, found, err)
}

func (h *Handler) setComplaintStatus(c *gin.Context) {
	var req complaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	found, err := h.svc.Complaints.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	h.complaintResult(c, found, err)
}

func (h *Handler) complaintResult(c *gin.Context, found bool, err error) {
	if err != nil {
		fail(c, "Failed to update complaint", err)
		return
	}
	if !found {
		fail(c, "Complaint not found", fmt.Errorf("complaint %s: %w", c.Param("id"), service.ErrNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteComplaint(c *gin.Context) {
	if err := h.svc.Complaints.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, "Failed to delete complaint", err)
		return
	}
	c.Status(http.StatusNoContent)
}
