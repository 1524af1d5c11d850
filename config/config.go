package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Engine  EngineConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type StorageConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// EngineConfig tunes the composition graph limits. MaxDepth and
// MaxItems are hard rejections, the Warn pair only flags the report.
type EngineConfig struct {
	MaxDepth  int
	WarnDepth int
	WarnItems int
	MaxItems  int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Storage: StorageConfig{
			Path:       getEnv("STORAGE_PATH", "./data/catalog"),
			InMemory:   getEnvBool("STORAGE_IN_MEMORY", false),
			SyncWrites: getEnvBool("STORAGE_SYNC_WRITES", true),
		},
		Engine: EngineConfig{
			MaxDepth:  getEnvInt("ENGINE_MAX_DEPTH", 10),
			WarnDepth: getEnvInt("ENGINE_WARN_DEPTH", 5),
			WarnItems: getEnvInt("ENGINE_WARN_ITEMS", 50),
			MaxItems:  getEnvInt("ENGINE_MAX_ITEMS", 100),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
