package config

import "os"

type Config struct {
	ListenAddr    string
	DBPath        string
	UploadPath    string
	SessionSecret string
	LogLevel      string
	LogFile       string
}

func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":5001"),
		DBPath:        getEnv("DB_PATH", "/data/travelog.db"),
		UploadPath:    getEnv("UPLOAD_PATH", "/data/uploads"),
		SessionSecret: getEnv("SESSION_SECRET", "travel-blog-secret-key"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
