package api

import (
	stdhttp "net/http"

	intconfig "spotmarket/internal/config"
	h "spotmarket/internal/http/handlers"
	"spotmarket/internal/http/middleware"
	"spotmarket/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hs h.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	if len(env.Web.CORSOrigins) > 0 {
		r.Use(middleware.CORS(env.Web.CORSOrigins))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warnw("trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	auth := middleware.RequireAuth(hs.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hs.DBCheck)
		api.GET("/routes", h.Routes)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", hs.Register)
		authGroup.POST("/login", hs.Login)

		zones := api.Group("/zones")
		zones.GET("/all", hs.ListZones)
		zones.GET("/:zoneId", hs.GetZone)
		zones.GET("/:zoneId/spot/:spotId", hs.GetSpot)
		zones.GET("/:zoneId/events", hs.ZoneEvents)

		api.POST("/sell", auth, hs.Sell)
		api.GET("/transaction_history", auth, hs.TransactionHistory)

		bounty := api.Group("/bounty-system")
		bounty.POST("/", hs.RecognizePlate)
		bounty.POST("/report", auth, hs.Report)
		bounty.GET("/rewards", auth, hs.ListRewards)
		bounty.GET("/rewards/:id/receipt", auth, hs.RewardReceipt)
	}

	h.SetRouter(r)
	return r
}
