package handlers

import (
	"fmt"
	"io"
	"net/http"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var outcomeMessages = map[models.BountyOutcome]string{
	models.OutcomeAlreadyCompliant: "The car in this spot belongs to the occupant.",
	models.OutcomeRewardIssued:     "Report accepted, reward issued.",
	models.OutcomeAlreadyRewarded:  "This violation was already rewarded.",
}

// POST /api/bounty-system/ with a multipart "upload" image.
func (h Handlers) RecognizePlate(c *gin.Context) {
	svc := h.Plates
	svc.RequestID = middleware.GetRequestID(c)

	if svc.MaxBytes > 0 {
		// leave room for the multipart envelope
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, svc.MaxBytes+64<<10)
	}

	fh, err := c.FormFile("upload")
	if err != nil {
		RespondDomainError(c, domain.ImageError{Msg: "upload field is missing", Err: err})
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondDomainError(c, domain.ImageError{Msg: "upload could not be read", Err: err})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		RespondDomainError(c, domain.ImageError{Msg: "upload could not be read", Err: err})
		return
	}

	reading, err := svc.Read(c.Request.Context(), image, fh.Filename)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reading)
}

// POST /api/bounty-system/report
func (h Handlers) Report(c *gin.Context) {
	var rep models.BountyReport
	if !BindJSONOrError(c, &rep) {
		return
	}
	if err := requireCaller(c, rep.PID); err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Bounty
	svc.RequestID = middleware.GetRequestID(c)
	res, err := svc.Report(c.Request.Context(), rep)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	body := gin.H{
		"message": outcomeMessages[res.Outcome],
		"status":  res.Outcome,
	}
	if res.Reward != nil {
		body["reward"] = res.Reward
	}
	c.JSON(http.StatusOK, body)
}

// GET /api/bounty-system/rewards
func (h Handlers) ListRewards(c *gin.Context) {
	svc := h.Bounty
	svc.RequestID = middleware.GetRequestID(c)

	rewards, err := svc.ListRewards(c.Request.Context(), middleware.GetPID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// GET /api/bounty-system/rewards/:id/receipt
func (h Handlers) RewardReceipt(c *gin.Context) {
	svc := h.Receipts
	svc.RequestID = middleware.GetRequestID(c)

	data, filename, err := svc.RewardReceipt(c.Request.Context(), middleware.GetPID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
