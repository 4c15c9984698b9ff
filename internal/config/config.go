// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	Simulation SimulationConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ResultTTLSeconds int
	FlushOnStart     bool
}

// SimulationConfig holds the defaults applied to requests that omit a
// parameter, plus limits for seed sweeps.
type SimulationConfig struct {
	HorizonDays        int
	InitialInventory   int
	RestockProbability float64
	RestockAmount      int
	Seed               int64
	Distribution       string
	HistogramBins      int
	SweepWorkers       int
	MaxSweepSeeds      int
	MaxHorizonDays     int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the process environment once and returns the shared
// configuration.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_RESULT_TTL_SECONDS", 300)
	v.SetDefault("CACHE_FLUSH_ON_START", false)
	v.SetDefault("SIM_HORIZON_DAYS", 100)
	v.SetDefault("SIM_INITIAL_INVENTORY", 20)
	v.SetDefault("SIM_RESTOCK_PROBABILITY", 0.30)
	v.SetDefault("SIM_RESTOCK_AMOUNT", 6)
	v.SetDefault("SIM_SEED", 533)
	v.SetDefault("SIM_DISTRIBUTION", "discreteUniform0to8")
	v.SetDefault("SIM_HISTOGRAM_BINS", 30)
	v.SetDefault("SIM_SWEEP_WORKERS", 4)
	v.SetDefault("SIM_MAX_SWEEP_SEEDS", 1000)
	v.SetDefault("SIM_MAX_HORIZON_DAYS", 3650)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds a Config from v after registering defaults and enabling
// environment lookups.
func FromViper(v *viper.Viper) *Config {
	SetDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ResultTTLSeconds: v.GetInt("CACHE_RESULT_TTL_SECONDS"),
			FlushOnStart:     v.GetBool("CACHE_FLUSH_ON_START"),
		},
		Simulation: SimulationConfig{
			HorizonDays:        v.GetInt("SIM_HORIZON_DAYS"),
			InitialInventory:   v.GetInt("SIM_INITIAL_INVENTORY"),
			RestockProbability: v.GetFloat64("SIM_RESTOCK_PROBABILITY"),
			RestockAmount:      v.GetInt("SIM_RESTOCK_AMOUNT"),
			Seed:               v.GetInt64("SIM_SEED"),
			Distribution:       v.GetString("SIM_DISTRIBUTION"),
			HistogramBins:      v.GetInt("SIM_HISTOGRAM_BINS"),
			SweepWorkers:       v.GetInt("SIM_SWEEP_WORKERS"),
			MaxSweepSeeds:      v.GetInt("SIM_MAX_SWEEP_SEEDS"),
			MaxHorizonDays:     v.GetInt("SIM_MAX_HORIZON_DAYS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
