package handlers

import (
	"errors"
	"net/http"

	"criptomain/internal/db"
	"criptomain/internal/domain"
	"criptomain/internal/http/middleware"
	"criptomain/internal/repository"

	"github.com/gin-gonic/gin"
)

// RecordTap applies one tap for the authenticated user.
func (h *Handler) RecordTap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.TapService.RecordTap(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
		case errors.Is(err, db.ErrContention):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "busy, retry tap"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "tap failed"})
		}
		return
	}

	middleware.TapsTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"token_balance":          result.TokenBalance,
		"taps_for_next_token":    result.TapsForNextToken,
		"tokens_earned_this_tap": result.TokensEarned,
	})
}

// GameState returns everything the tap frontend needs to render.
func (h *Handler) GameState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	globalPrice, err := h.SettingsRepo.GetFloat(ctx, domain.SettingCurrentTokenPrice, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":                       user.Username,
		"token_balance":                  user.TokenBalance,
		"taps_for_next_token":            user.TapsForNextToken,
		"referral_code":                  user.ReferralCode,
		"current_global_token_price_usd": globalPrice,
		"personal_rate_bonus":            user.PersonalRateBonus,
		"effective_token_value_usd":      round3(globalPrice + user.PersonalRateBonus),
		"settings":                       user.Settings,
	})
}
