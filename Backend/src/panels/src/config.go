package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/killerderoo/fx-restaurant/pkg/cart"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	DBPath         string
	HostURL        string
	HostTimeout    time.Duration
	RabbitURL      string
	ExchangeName   string
	AllowedOrigins []string
	MaxSessions    int
	Tiers          cart.Tiers
	LogLevel       string
	LogPretty      bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	tiers, err := cart.ParseTiers(getenv("INGREDIENT_DISCOUNT_TIERS", cart.DefaultIngredientTiers().String()))
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPAddr:       getenv("PANELS_HTTP_ADDR", ":8085"),
		GRPCAddr:       getenv("PANELS_GRPC_ADDR", ":50060"),
		DBPath:         getenv("PANELS_DB_PATH", "./data/panels.db"),
		HostURL:        getenv("HOST_BRIDGE_URL", "https://fx-restaurant"),
		HostTimeout:    getenvDuration("HOST_BRIDGE_TIMEOUT", 5*time.Second),
		RabbitURL:      getenv("RABBITMQ_URL", ""),
		ExchangeName:   getenv("EVENTS_EXCHANGE", "fx-restaurant.events"),
		AllowedOrigins: splitList(getenv("PANELS_ALLOWED_ORIGINS", "https://cfx-nui-fx-restaurant")),
		MaxSessions:    getenvInt("PANELS_MAX_SESSIONS", 256),
		Tiers:          tiers,
		LogLevel:       getenv("PANELS_LOG_LEVEL", "info"),
		LogPretty:      getenv("PANELS_LOG_PRETTY", "false") == "true",
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

const (
	ShutdownGrace = 10 * time.Second
)
