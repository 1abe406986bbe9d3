package cli

import "os"

// Config holds CLI configuration. Tokens are issued externally, so they are
// supplied per invocation via flag or environment rather than persisted
type Config struct {
	ServerURL  string
	Token      string
	AdminToken string
	Output     string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("NETPLAY_SERVER", "http://localhost:8080"),
		Token:      os.Getenv("NETPLAY_TOKEN"),
		AdminToken: os.Getenv("NETPLAY_ADMIN_TOKEN"),
		Output:     "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
