package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is a development placeholder. Tokens signed with it can be minted by anyone.
const DefaultJWTSecret = "change-me"

type Config struct {
	ServerPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RabbitURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SlotLock selects how concurrent creates on the same date+time are serialized: local, redis or none.
	SlotLock string

	JWTSecret string
	TokenTTL  time.Duration

	// MaxGuestsPerBooking caps a single reservation. 0 disables the cap.
	MaxGuestsPerBooking int
	DefaultSlotCapacity int

	Location *time.Location
}

// Load reads configuration from the environment. A .env file in the working directory is
// loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] could not read .env: %v", err)
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		log.Printf("[Config] unknown TIMEZONE, falling back to UTC: %v", err)
		loc = time.UTC
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "gym_reservations"),
		SQLitePath: getEnv("SQLITE_PATH", "gym.db"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SlotLock: getEnv("SLOT_LOCK", "local"),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		MaxGuestsPerBooking: getEnvInt("MAX_GUESTS_PER_BOOKING", 5),
		DefaultSlotCapacity: getEnvInt("DEFAULT_SLOT_CAPACITY", 20),

		Location: loc,
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[Config] invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
