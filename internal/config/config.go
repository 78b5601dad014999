package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	MongoDB      string
	RedisAddr    string
	RedisPass    string
	JWTSecret    string
	HTTPPort     string
	AppEnv       string
	FlwSecretKey string
	FrontendURL  string
	BaseURL      string
	UploadDir    string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "cineflix"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisPass:    getEnv("REDIS_PASSWORD", ""),
		JWTSecret:    getEnv("JWT_SECRET", "super-secret"),
		HTTPPort:     getEnv("HTTP_PORT", "5000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		FlwSecretKey: getEnv("FLW_SECRET_KEY", ""),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:5000"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Printf("[config] %s not set, using default", key)
		return def
	}
	return v
}
