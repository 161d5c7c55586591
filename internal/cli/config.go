package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	Username   string
	Password   string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("WORDCHAIN_SERVER", "localhost:8080"),
		Username:   os.Getenv("WORDCHAIN_USER"),
		Password:   os.Getenv("WORDCHAIN_PASS"),
		Output:     "text",
		Verbose:    false,
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
