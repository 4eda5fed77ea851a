package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/yousefm/sallasync/internal/env"
)

type Config struct {
	Port      string             `env:"PORT" envDefault:"8080"`
	Env       appenv.Environment `env:"ENV" envDefault:"development"`
	BaseURL   string             `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Salla     Salla              `envPrefix:"SALLA_"`
	Store     Store              `envPrefix:"STORE_"`
	Redis     Redis              `envPrefix:"REDIS_"`
	RateLimit RateLimit          `envPrefix:"RATE_"`
}

type Salla struct {
	WebhookSecret   string        `env:"WEBHOOK_SECRET,required"`
	APIToken        string        `env:"API_TOKEN"`
	APIBaseURL      string        `env:"API_BASE_URL" envDefault:"https://api.salla.dev/admin/v2"`
	DefaultCurrency string        `env:"DEFAULT_CURRENCY" envDefault:"SAR"`
	EnrichOrders    bool          `env:"ENRICH_ORDERS" envDefault:"false"`
	EnrichTimeout   time.Duration `env:"ENRICH_TIMEOUT" envDefault:"30s"`
}

type Store struct {
	// Driver selects the customer store backend: postgres, sqlite, or memory.
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	PostgresURL string `env:"POSTGRES_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"sallasync.db"`
}

type Redis struct {
	URL string `env:"URL"`
}

type RateLimit struct {
	Limit float64 `env:"LIMIT" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}
