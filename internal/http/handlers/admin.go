package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"criptomain/internal/db"
	"criptomain/internal/domain"
	"criptomain/internal/http/middleware"
	"criptomain/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const adminPageSize = 15

// AdminDashboard returns the operational rollups.
func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := h.StatsService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	stats.CurrentPriceUSD = round3(stats.CurrentPriceUSD)
	c.JSON(http.StatusOK, stats)
}

// AdminUsers lists users with optional username/email search.
func (h *Handler) AdminUsers(c *gin.Context) {
	page := pageParam(c)
	search := c.Query("search")

	users, err := h.UserRepo.Search(c.Request.Context(), search, adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "page": page})
}

// AdminWithdrawals lists withdrawal requests filtered by status.
func (h *Handler) AdminWithdrawals(c *gin.Context) {
	page := pageParam(c)
	status := c.DefaultQuery("status", "pending")
	if status == "all" {
		status = ""
	}

	withdrawals, err := h.WithdrawalRepo.ListByStatus(c.Request.Context(), status, adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals, "page": page})
}

// AdminWithdrawalDetail returns one withdrawal request with its frozen
// valuation fields.
func (h *Handler) AdminWithdrawalDetail(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request id"})
		return
	}

	w, err := h.WithdrawalRepo.GetByID(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "withdrawal request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawal"})
		return
	}
	c.JSON(http.StatusOK, w)
}

type ProcessWithdrawalRequest struct {
	Action     string `json:"action"`
	AdminNotes string `json:"admin_notes"`
}

// AdminProcessWithdrawal moves a pending request to a terminal status.
func (h *Handler) AdminProcessWithdrawal(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request id"})
		return
	}

	var req ProcessWithdrawalRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bad request"})
		return
	}

	var status domain.WithdrawalStatus
	switch req.Action {
	case "processed":
		status = domain.WithdrawalProcessed
	case "rejected":
		status = domain.WithdrawalRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid action"})
		return
	}

	result, err := h.WithdrawalService.Process(c.Request.Context(), requestID, status, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyActioned):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "request has already been actioned"})
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "withdrawal request not found"})
		case errors.Is(err, db.ErrContention):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "busy, retry action"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "transition failed"})
		}
		return
	}

	middleware.WithdrawalTransitions.WithLabelValues(string(status)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"status":          status,
		"tokens_returned": result.TokensReturned,
	})
}

// AdminReferrals returns the referral report.
func (h *Handler) AdminReferrals(c *gin.Context) {
	report, err := h.ReferralRepo.GetReport(c.Request.Context(), adminPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// AdminTokenomics exposes all global settings and recent price history.
func (h *Handler) AdminTokenomics(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.SettingsRepo.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	history, err := h.PriceRepo.Latest(ctx, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings, "price_history": history})
}

func pageParam(c *gin.Context) int {
	page := 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	return page
}
