package handlers

import (
	"errors"
	"net/http"

	"criptomain/internal/domain"
	"criptomain/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetSettings returns the caller's presentation settings.
func (h *Handler) GetSettings(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	settings := user.Settings
	if settings.DisplayName == "" {
		settings.DisplayName = user.Username
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// UpdateSettings replaces the caller's presentation settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var settings domain.UserSettings
	if err := c.BindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no data provided"})
		return
	}

	if err := h.UserRepo.UpdateSettings(c.Request.Context(), userID, settings); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "settings updated successfully"})
}

// MyTransactions lists the caller's balance movements, newest first.
func (h *Handler) MyTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	txs, err := h.TransactionRepo.GetByUserID(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// MyReferrals lists the users the caller has referred.
func (h *Handler) MyReferrals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	referrals, err := h.ReferralRepo.GetByReferrer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referrals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"referrals":       referrals,
		"bonus_per_refer": domain.ReferralBonusIncrement,
	})
}
