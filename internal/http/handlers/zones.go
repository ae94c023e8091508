package handlers

import (
	"net/http"

	"spotmarket/internal/http/middleware"
	"spotmarket/internal/services"

	"github.com/gin-gonic/gin"
)

func window(c *gin.Context) (services.Window, error) {
	start, err := optionalInt64(c, "startTime")
	if err != nil {
		return services.Window{}, err
	}
	end, err := optionalInt64(c, "endTime")
	if err != nil {
		return services.Window{}, err
	}
	return services.Window{Start: start, End: end}, nil
}

// GET /api/zones/all
func (h Handlers) ListZones(c *gin.Context) {
	svc := h.Zones
	svc.RequestID = middleware.GetRequestID(c)

	zones, err := svc.ListZones(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

// GET /api/zones/:zoneId
func (h Handlers) GetZone(c *gin.Context) {
	zoneID, err := parseID(c.Param("zoneId"), "zoneId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	w, err := window(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Zones
	svc.RequestID = middleware.GetRequestID(c)
	info, err := svc.ZoneListings(c.Request.Context(), zoneID, w)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parkingInfo": info})
}

// GET /api/zones/:zoneId/spot/:spotId
func (h Handlers) GetSpot(c *gin.Context) {
	zoneID, err := parseID(c.Param("zoneId"), "zoneId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	spotID, err := parseID(c.Param("spotId"), "spotId")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	w, err := window(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Zones
	svc.RequestID = middleware.GetRequestID(c)
	rows, err := svc.SpotListings(c.Request.Context(), zoneID, spotID, w)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parkingInfo": rows})
}
