package configs

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort          = "3000"
	defaultDBName        = "Dataleo"
	defaultLogLevel      = "info"
	defaultStoreTimeout  = 10 * time.Second
	defaultAuditSchedule = "@every 30s"
)

type Config struct {
	Port                string
	MongoURI            string
	DBName              string
	LogLevel            string
	LogPretty           bool
	StoreTimeout        time.Duration
	AuditExportSchedule string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to defaults for unset
// or unparsable values.
func FromEnv(lookup func(string) (string, bool)) Config {
	get := func(key, def string) string {
		if val, ok := lookup(key); ok && val != "" {
			return val
		}
		return def
	}

	cfg := Config{
		Port:                get("PORT", defaultPort),
		MongoURI:            get("MONGO_URI", ""),
		DBName:              get("DB_NAME", defaultDBName),
		LogLevel:            get("LOG_LEVEL", defaultLogLevel),
		StoreTimeout:        defaultStoreTimeout,
		AuditExportSchedule: defaultAuditSchedule,
	}

	if val, ok := lookup("LOG_PRETTY"); ok && val != "" {
		pretty, err := strconv.ParseBool(val)
		if err != nil {
			log.Warn().Str("LOG_PRETTY", val).Msg("invalid value, using false")
		}
		cfg.LogPretty = pretty
	}

	if val, ok := lookup("STORE_TIMEOUT"); ok && val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil || timeout <= 0 {
			log.Warn().Str("STORE_TIMEOUT", val).Dur("default", defaultStoreTimeout).Msg("invalid value, using default")
		} else {
			cfg.StoreTimeout = timeout
		}
	}

	// An explicitly empty schedule disables the audit exporter.
	if val, ok := lookup("AUDIT_EXPORT_SCHEDULE"); ok {
		cfg.AuditExportSchedule = val
	}

	return cfg
}
