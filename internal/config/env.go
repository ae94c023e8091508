package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable, e.g. SPOTMARKET_DB_HOST.
const Prefix = "SPOTMARKET"

// ErrHelpWanted is returned by LoadEnv when --help was requested; the usage text is already printed.
var ErrHelpWanted = conf.ErrHelpWanted

type WebConfig struct {
	AppAddr         string        `conf:"default:0.0.0.0:8080"`
	GinMode         string        `conf:"default:release"`
	ReadTimeout     time.Duration `conf:"default:20s"`
	WriteTimeout    time.Duration `conf:"default:20s"`
	IdleTimeout     time.Duration `conf:"default:60s"`
	ShutdownTimeout time.Duration `conf:"default:10s"`
	CORSOrigins     []string      `conf:"default:http://localhost:3000;http://127.0.0.1:3000"`
}

type DBConfig struct {
	Driver          string        `conf:"default:mysql"`
	Host            string        `conf:"default:127.0.0.1"`
	Port            int           `conf:"default:3306"`
	User            string        `conf:"default:root"`
	Password        string        `conf:"mask"`
	Name            string        `conf:"default:spot_market"`
	SSLMode         string        `conf:"default:disable"`
	MaxOpenConns    int           `conf:"default:25"`
	MaxIdleConns    int           `conf:"default:25"`
	ConnMaxLifetime time.Duration `conf:"default:10m"`
	ConnMaxIdleTime time.Duration `conf:"default:5m"`
	QueryTimeout    time.Duration `conf:"default:5s"`
	AutoMigrate     bool          `conf:"default:false"`
}

type AuthConfig struct {
	JWTSecret string        `conf:"default:change-me-in-production,mask"`
	TokenTTL  time.Duration `conf:"default:24h"`
}

type LedgerConfig struct {
	RPCURL        string        `conf:"default:http://127.0.0.1:8888"`
	TokenContract string        `conf:"default:eosio.token"`
	IssuerAccount string        `conf:"default:parkingspot"`
	IssuerKeyPath string        `conf:"help:path to the secp256k1 key that signs reward transfers"`
	RewardAmount  string        `conf:"default:1.0000"`
	Symbol        string        `conf:"default:VTP"`
	Timeout       time.Duration `conf:"default:5s"`
	SignatureSkew time.Duration `conf:"default:5m"`
}

type PlatesConfig struct {
	Provider       string        `conf:"default:platerecognizer,help:platerecognizer or rekognition"`
	URL            string        `conf:"default:https://api.platerecognizer.com/v1/plate-reader/"`
	Token          string        `conf:"mask"`
	Regions        string        `conf:"default:us"`
	AWSRegion      string        `conf:"default:us-east-1"`
	Timeout        time.Duration `conf:"default:10s"`
	MaxUploadBytes int64         `conf:"default:8388608"`
}

type Env struct {
	conf.Version
	Web    WebConfig
	DB     DBConfig
	Auth   AuthConfig
	Ledger LedgerConfig
	Plates PlatesConfig
	Log    struct {
		Level string `conf:"default:info"`
	}
}

// LoadEnv reads an optional .env file and then parses defaults, environment
// variables and command line flags into Env.
func LoadEnv(build string) (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Env{}, fmt.Errorf("loading .env: %w", err)
	}

	env := Env{
		Version: conf.Version{
			Build: build,
			Desc:  "parking spot marketplace",
		},
	}

	help, err := conf.Parse(Prefix, &env)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return env, ErrHelpWanted
		}
		return env, fmt.Errorf("parsing config: %w", err)
	}

	return env, nil
}

// String renders the configuration with secrets masked, for the startup log.
func (e Env) String() string {
	out, err := conf.String(&e)
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return out
}
