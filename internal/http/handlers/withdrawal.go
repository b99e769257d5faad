package handlers

import (
	"errors"
	"net/http"

	"criptomain/internal/db"
	"criptomain/internal/http/middleware"
	"criptomain/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalRequestBody struct {
	TokensToWithdraw float64 `json:"tokens_to_withdraw"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentDetails   string  `json:"payment_details"`
}

// RequestWithdrawal creates a pending withdrawal, escrowing the tokens out
// of the spendable balance immediately.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req WithdrawalRequestBody
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid token amount"})
		return
	}

	result, err := h.WithdrawalService.Request(c.Request.Context(), userID,
		req.TokensToWithdraw, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingPaymentInfo),
			errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, db.ErrContention):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "busy, retry withdrawal"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "withdrawal failed"})
		}
		return
	}

	middleware.WithdrawalRequestsTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "withdrawal request submitted successfully",
		"request_id":        result.Request.ID,
		"new_token_balance": result.NewTokenBalance,
		"amount_to_user_usd": round3(result.Request.AmountToUserUSD),
	})
}

// MyWithdrawals lists the caller's withdrawal requests.
func (h *Handler) MyWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawals, err := h.WithdrawalService.HistoryForUser(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}
