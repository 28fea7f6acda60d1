package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/usersapp/internal/common/constants"
)

var (
	ErrWrongArgumentCount = errors.New("expected 5 arguments: static templates host port dsn")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// ArgNames lists the positional arguments in order.
var ArgNames = []string{"static", "templates", "host", "port", "dsn"}

type AppConfig struct {
	StaticDir    string `validate:"required,dir"`
	TemplatesDir string `validate:"required,dir"`
	Host         string `validate:"required"`
	Port         uint   `validate:"required,port"`
	DatabaseURL  string `validate:"required"`

	LogDir              string
	LogLevel            string
	DBMaxConns          int32
	DBMinConns          int32
	DBConnectAttempts   int
	ShutdownGracePeriod time.Duration
	RateLimitRPS        float64
	RateLimitBurst      int
}

func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.FormatUint(uint64(c.Port), 10))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadAppConfig builds the configuration from the positional arguments
// (static dir, templates dir, host, port, dsn) and ambient environment
// settings.
func LoadAppConfig(args []string) (AppConfig, error) {
	if len(args) != len(ArgNames) {
		return AppConfig{}, fmt.Errorf("%w: got %d", ErrWrongArgumentCount, len(args))
	}

	port, err := strconv.ParseUint(strings.TrimSpace(args[3]), 10, 32)
	if err != nil {
		return AppConfig{}, fmt.Errorf("%w: port %q is not a number", ErrInvalidConfig, args[3])
	}

	cfg := AppConfig{
		StaticDir:    args[0],
		TemplatesDir: args[1],
		Host:         args[2],
		Port:         uint(port),
		DatabaseURL:  args[4],

		LogDir:              getEnv("LOG_DIR", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DBMaxConns:          int32(getIntEnv("DB_MAX_CONNS", constants.DBPoolMaxConns)),
		DBMinConns:          int32(getIntEnv("DB_MIN_CONNS", constants.DBPoolMinConns)),
		DBConnectAttempts:   getIntEnv("DB_CONNECT_ATTEMPTS", constants.DBPoolMaxAttempts),
		ShutdownGracePeriod: getDurationEnv("SHUTDOWN_GRACE_PERIOD", constants.ShutdownGracePeriod),
		RateLimitRPS:        getFloatEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst:      getIntEnv("RATE_LIMIT_BURST", 20),
	}

	if err := validate.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	return cfg, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getFloatEnv(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
