package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PriceHistory returns price ledger entries from the last N days,
// ascending by timestamp.
func (h *Handler) PriceHistory(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	points, err := h.PriceRepo.QuerySince(c.Request.Context(), since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	out := make([]gin.H, 0, len(points))
	for _, p := range points {
		out = append(out, gin.H{
			"timestamp": p.Timestamp.UTC().Format(time.RFC3339),
			"price_usd": round3(p.PriceUSD),
			"reason":    p.Reason,
		})
	}
	c.JSON(http.StatusOK, out)
}
