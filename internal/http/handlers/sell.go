package handlers

import (
	"net/http"

	"spotmarket/internal/domain/models"
	"spotmarket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/sell
func (h Handlers) Sell(c *gin.Context) {
	var req models.ListingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := requireCaller(c, req.PID); err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Listing
	svc.RequestID = middleware.GetRequestID(c)
	res, err := svc.Sell(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Spot listed for sale.",
		"rows":        res.Rows,
		"parkingInfo": res.Summary,
	})
}

// GET /api/transaction_history
func (h Handlers) TransactionHistory(c *gin.Context) {
	svc := h.Listing
	svc.RequestID = middleware.GetRequestID(c)

	sales, err := svc.History(c.Request.Context(), middleware.GetPID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listOfTransactions": sales})
}
