package handlers

import (
	"database/sql"

	"spotmarket/internal/events"
	"spotmarket/internal/services"
)

// Handlers holds the services behind the HTTP API. Each request copies the service it
// needs and stamps it with the request id.
type Handlers struct {
	Zones    services.ZoneService
	Listing  services.ListingService
	Bounty   services.BountyService
	Plates   services.PlateService
	Receipts services.ReceiptService
	Auth     services.AuthService
	Hub      *events.Hub
	DB       *sql.DB
	Dialect  string
	Origins  []string
}
