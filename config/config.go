package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Logger    LoggerConfig
	Location  LocationConfig
	Matching  MatchingConfig
	Recording RecordingConfig
	Google    GoogleConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type LoggerConfig struct {
	Level string
}

// LocationConfig holds the presence throttle settings: how far a user must move
// or how long must elapse before a raw ping becomes a published presence row.
type LocationConfig struct {
	MinDisplacementMeters    float64
	MinIntervalMoving        time.Duration
	MinIntervalStationary    time.Duration
	StationarySpeedThreshold float64 // m/s
	DedupDistanceMeters      float64
	DedupWindow              time.Duration
	BatchDelay               time.Duration
	PingBufferSize           int
}

type MatchingConfig struct {
	GeohashPrecision       uint
	MaxMatchDistanceMeters float64
	RefreshInterval        time.Duration
}

type RecordingConfig struct {
	MinInterval         time.Duration
	TimezoneMoveDegrees float64
}

type GoogleConfig struct {
	MapsAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8098"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "spotmate:spotmate@tcp(localhost:3306)/spotmate?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 168 * time.Hour,
			Issuer:       "spotmate",
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Location: LocationConfig{
			MinDisplacementMeters:    getEnvFloat("MIN_DISPLACEMENT_METERS", 25),
			MinIntervalMoving:        time.Duration(getEnvInt("MIN_INTERVAL_MOVING_SECONDS", 60)) * time.Second,
			MinIntervalStationary:    time.Duration(getEnvInt("MIN_INTERVAL_STATIONARY_SECONDS", 180)) * time.Second,
			StationarySpeedThreshold: 0.5,
			DedupDistanceMeters:      10,
			DedupWindow:              30 * time.Second,
			BatchDelay:               30 * time.Second,
			PingBufferSize:           10,
		},
		Matching: MatchingConfig{
			GeohashPrecision:       uint(getEnvInt("GEOHASH_PRECISION", 6)),
			MaxMatchDistanceMeters: getEnvFloat("MAX_MATCH_DISTANCE_METERS", 100),
			RefreshInterval:        time.Duration(getEnvInt("NEARBY_REFRESH_SECONDS", 30)) * time.Second,
		},
		Recording: RecordingConfig{
			MinInterval:         time.Duration(getEnvInt("RECORDING_INTERVAL_MINUTES", 5)) * time.Minute,
			TimezoneMoveDegrees: 0.5,
		},
		Google: GoogleConfig{
			MapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
