package config

import (
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config is read from the environment (a .env file is loaded when present).
type Config struct {
	DBDriver       string // sqlite | postgres
	DBDSN          string
	RedisAddr      string // empty disables the document cache
	KafkaBrokers   string // empty disables changelog fan-out
	KafkaTopic     string
	Compression    string // nop | gzip | brotli
	TrashRetention time.Duration
	PurgeSchedule  string
}

func LoadConfig() *Config {
	return &Config{
		DBDriver:       envOr("KRAPI_DB_DRIVER", "sqlite"),
		DBDSN:          envOr("KRAPI_DB_DSN", ".krapi/krapi.db"),
		RedisAddr:      os.Getenv("KRAPI_REDIS_ADDR"),
		KafkaBrokers:   os.Getenv("KRAPI_KAFKA_BROKERS"),
		KafkaTopic:     envOr("KRAPI_KAFKA_TOPIC", "krapi.changelog"),
		Compression:    envOr("KRAPI_COMPRESSION", "nop"),
		TrashRetention: durationOr("KRAPI_TRASH_RETENTION", 30*24*time.Hour),
		PurgeSchedule:  envOr("KRAPI_PURGE_SCHEDULE", "@hourly"),
	}
}

// GetDb opens the configured database.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cnf.DBDriver {
	case "postgres":
		dialector = postgres.Open(cnf.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cnf.DBDSN)
	default:
		logrus.Fatalf("unknown db driver %q", cnf.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logrus.Fatalf("error opening database: %v", err)
	}

	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("invalid duration %q for %s, using default", v, key)
		return fallback
	}
	return d
}
