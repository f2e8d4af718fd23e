package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at startup
// and threaded explicitly through the pipeline; nothing in this package is
// mutable process-wide state.
type Config struct {
	Server       ServerConfig
	Weather      WeatherConfig
	Verification VerificationConfig
}

// ServerConfig holds HTTP server configuration (server mode only).
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// WeatherConfig holds the external weather provider configuration.
type WeatherConfig struct {
	OpenMeteoBaseURL string
	RapidAPIKey      string
	RapidAPIHost     string
	RequestTimeout   time.Duration // hard ceiling per provider call
}

// VerificationConfig holds the tunables of the verification pipeline.
type VerificationConfig struct {
	// CoordinateToleranceM is the maximum EXIF/claimed mismatch in meters
	// for a coordinate pair to count as verified.
	CoordinateToleranceM float64
	// TrustClaimedCoords selects the claimed coordinates for geofencing
	// when EXIF GPS is missing or outside tolerance.
	TrustClaimedCoords bool
	// BoundaryHalfSizeDeg is the half-size of auto-provisioned square
	// parcel boundaries, in degrees per side.
	BoundaryHalfSizeDeg float64
	// FullPrecisionGeometry selects exact ray-casting containment; when
	// false the geofence degrades to bounding-box approximation.
	FullPrecisionGeometry bool
}

// Load loads configuration from environment variables, reading a .env file
// first if one exists.
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		},
		Weather: WeatherConfig{
			OpenMeteoBaseURL: getEnv("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"),
			RapidAPIKey:      getEnv("RAPIDAPI_KEY", ""),
			RapidAPIHost:     getEnv("RAPIDAPI_HOST", "meteostat.p.rapidapi.com"),
			RequestTimeout:   time.Duration(getEnvAsInt("WEATHER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Verification: VerificationConfig{
			CoordinateToleranceM:  getEnvAsFloat("COORDINATE_TOLERANCE_M", 50.0),
			TrustClaimedCoords:    getEnvAsBool("TRUST_CLAIMED_COORDS", true),
			BoundaryHalfSizeDeg:   getEnvAsFloat("BOUNDARY_HALF_SIZE_DEG", 0.005),
			FullPrecisionGeometry: getEnvAsBool("FULL_PRECISION_GEOMETRY", true),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
