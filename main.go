package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "spotmarket/internal/config"
	intdb "spotmarket/internal/db"
	"spotmarket/internal/events"
	"spotmarket/internal/guard"
	router "spotmarket/internal/http"
	"spotmarket/internal/http/handlers"
	"spotmarket/internal/ledger"
	"spotmarket/internal/plates"
	"spotmarket/internal/repositories"
	"spotmarket/internal/services"
	"spotmarket/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var build = "develop"

func main() {
	log, err := utils.NewLogger("SPOT-MARKET", os.Getenv(intconfig.Prefix+"_LOG_LEVEL"))
	if err != nil {
		fmt.Println("constructing logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	utils.SetLogger(log)

	if err := run(log); err != nil {
		if errors.Is(err, intconfig.ErrHelpWanted) {
			return
		}
		log.Errorw("startup", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	env, err := intconfig.LoadEnv(build)
	if err != nil {
		return err
	}

	log.Infow("startup", "version", build)
	log.Infow("startup", "config", env.String())

	if env.Web.GinMode != "" {
		gin.SetMode(env.Web.GinMode)
	}

	// -------------------------------------------------------------------------
	// Database

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer intconfig.CloseDB()

	dialect := env.DB.Dialect()
	if env.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := intdb.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
		log.Infow("startup", "status", "schema ready")
	}

	// -------------------------------------------------------------------------
	// External services

	ledgerClient, err := ledger.New(ledger.Config{
		RPCURL:        env.Ledger.RPCURL,
		TokenContract: env.Ledger.TokenContract,
		IssuerAccount: env.Ledger.IssuerAccount,
		IssuerKeyPath: env.Ledger.IssuerKeyPath,
		Timeout:       env.Ledger.Timeout,
	})
	if err != nil {
		return fmt.Errorf("constructing ledger client: %w", err)
	}
	if env.Ledger.IssuerKeyPath == "" {
		log.Warnw("startup", "status", "no issuer key configured, reward transfers will fail")
	}

	rewardAmount, err := decimal.NewFromString(env.Ledger.RewardAmount)
	if err != nil {
		return fmt.Errorf("parsing reward amount %q: %w", env.Ledger.RewardAmount, err)
	}

	recognizer, err := newRecognizer(env.Plates)
	if err != nil {
		return err
	}

	ledgerGuard := guard.New("ledger", guard.Settings{Timeout: env.Ledger.Timeout})
	platesGuard := guard.New("plates", guard.Settings{Timeout: env.Plates.Timeout})

	// -------------------------------------------------------------------------
	// Services

	slots := repositories.SlotRepository{DB: db, Dialect: dialect}
	rewards := repositories.RewardRepository{DB: db, Dialect: dialect}
	users := repositories.UserRepository{DB: db, Dialect: dialect}
	zones := repositories.ZoneRepository{DB: db, Dialect: dialect}

	hub := events.New()
	defer hub.Shutdown()

	auth := services.AuthService{
		Users:  users,
		Secret: []byte(env.Auth.JWTSecret),
		TTL:    env.Auth.TokenTTL,
	}

	hs := handlers.Handlers{
		Zones: services.ZoneService{
			Zones:        zones,
			Slots:        slots,
			StoreTimeout: env.DB.QueryTimeout,
		},
		Listing: services.ListingService{
			Credentials: services.KeyValidator{
				Accounts: ledgerClient,
				Guard:    ledgerGuard,
				Skew:     env.Ledger.SignatureSkew,
			},
			Store:        slots,
			Notifier:     hub,
			StoreTimeout: env.DB.QueryTimeout,
		},
		Bounty: services.BountyService{
			Slots:        slots,
			Rewards:      rewards,
			Plates:       plates.Registry{Users: users},
			Ledger:       ledgerClient,
			Guard:        ledgerGuard,
			RewardAmount: rewardAmount,
			Symbol:       env.Ledger.Symbol,
			StoreTimeout: env.DB.QueryTimeout,
		},
		Plates: services.PlateService{
			Recognizer: recognizer,
			Guard:      platesGuard,
			MaxBytes:   env.Plates.MaxUploadBytes,
		},
		Receipts: services.ReceiptService{
			Rewards: rewards,
			Symbol:  env.Ledger.Symbol,
		},
		Auth:    auth,
		Hub:     hub,
		DB:      db,
		Dialect: dialect,
		Origins: env.Web.CORSOrigins,
	}

	// -------------------------------------------------------------------------
	// HTTP server

	srv := &http.Server{
		Addr:              env.Web.AppAddr,
		Handler:           router.NewRouter(env, hs),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       env.Web.ReadTimeout,
		WriteTimeout:      env.Web.WriteTimeout,
		IdleTimeout:       env.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "api router started", "host", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Websocket subscribers are hijacked connections that Shutdown does not wait on.
		hub.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), env.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func newRecognizer(c intconfig.PlatesConfig) (plates.Recognizer, error) {
	switch c.Provider {
	case "rekognition":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r, err := plates.NewRekognition(ctx, c.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("constructing rekognition client: %w", err)
		}
		return r, nil
	case "platerecognizer", "":
		return plates.NewPlateRecognizer(c.URL, c.Token, c.Regions, c.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown plate provider %q", c.Provider)
	}
}
