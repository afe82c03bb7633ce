package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  DB settings are only required when the MySQL
// driver is selected.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	StorageDriver string // "memory" or "mysql"
	DataFile      string // JSON snapshot of the memory driver; empty keeps data in memory
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name

	AuthEnabled       bool   // when false every route is open
	JWTSecret         string // secret used to sign JWTs
	AccessTTLMin      int    // access token time-to-live in minutes
	StaffEmail        string // login of the staff account
	StaffPasswordHash string // bcrypt hash of the staff password
	StaffPassword     string // clear staff password, hashed at startup when no hash is set
	BcryptCost        int    // bcrypt cost used for that hash

	LogLevel string // logrus level name
	LogFile  string // optional file the JSON log is also written to
}

// Load reads .env when present and then the environment.  Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8080"),
		StorageDriver: strings.ToLower(envStr("STORAGE_DRIVER", DriverMemory)),
		DataFile:      os.Getenv("DATA_FILE"),
		AuthEnabled:   envBool("AUTH_ENABLED", true),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 60),
		StaffEmail:    envStr("STAFF_EMAIL", "staff@hotel.local"),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	switch cfg.StorageDriver {
	case DriverMemory:
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q (want %s or %s)", cfg.StorageDriver, DriverMemory, DriverMySQL)
	}

	if cfg.AuthEnabled {
		cfg.JWTSecret = must("JWT_SECRET")
		cfg.StaffPasswordHash = os.Getenv("STAFF_PASSWORD_HASH")
		cfg.StaffPassword = os.Getenv("STAFF_PASSWORD")
		if cfg.StaffPasswordHash == "" && cfg.StaffPassword == "" {
			log.Fatalf("missing required env var: STAFF_PASSWORD_HASH or STAFF_PASSWORD")
		}
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
