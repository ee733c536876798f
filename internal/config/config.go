package config

import "os"

type Config struct {
	Port       string
	BackendURL string
	DataDir    string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8090"),
		BackendURL: getEnv("BACKEND_URL", "https://localhost:7243/api"),
		DataDir:    getEnv("DATA_DIR", "./data"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
