package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Model    ModelConfig
	Training TrainingConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type ModelConfig struct {
	// Path of the serialized model snapshot on disk.
	Path string
	// Directory holding the CSV exports used by the file-backed store.
	CSVDir string
}

type TrainingConfig struct {
	MinUsersForTraining int
	NumClusters         int
	// When set, training aborts on insufficient data instead of topping up
	// with synthetic users.
	StrictData bool
	// When set, users missing from the store are pruned from a loaded model.
	PruneStaleUsers bool
	// Optional cron spec for scheduled retraining (empty disables it).
	RetrainCron string
}

type AuthConfig struct {
	// Shared secret for marketplace-issued bearer tokens.
	JWTSecret string
	// Key required on the internal event-ingestion endpoints.
	InternalAPIKey string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Art Market Recommender"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "art_market"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Model: ModelConfig{
			Path:   getEnv("MODEL_PATH", "models/trained/recommendation_model.json"),
			CSVDir: getEnv("CSV_DIR", "data_exports"),
		},
		Training: TrainingConfig{
			MinUsersForTraining: getEnvInt("MIN_USERS_FOR_TRAINING", 50),
			NumClusters:         getEnvInt("NUM_CLUSTERS", 5),
			StrictData:          getEnvBool("STRICT_TRAINING_DATA", false),
			PruneStaleUsers:     getEnvBool("PRUNE_STALE_USERS", false),
			RetrainCron:         getEnv("RETRAIN_CRON", ""),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			InternalAPIKey: getEnv("RECOMMENDER_API_KEY", ""),
		},
	}

	if cfg.Training.NumClusters <= 0 {
		return nil, errors.New("NUM_CLUSTERS must be positive")
	}

	if cfg.Model.Path == "" {
		return nil, errors.New("missing model path")
	}

	return cfg, nil
}

// HasDatabase reports whether a relational store is configured. When it is
// not, the service falls back to the CSV-backed store.
func (c *Config) HasDatabase() bool {
	return c.Database.Host != ""
}

// HasRedis reports whether the optional preference-vector cache is configured.
func (c *Config) HasRedis() bool {
	return c.Redis.RedisHost != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return b
}
