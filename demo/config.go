package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	DataDir        string        `yaml:"data_dir"`
	Passphrase     string        `yaml:"passphrase"`
	UploadInterval time.Duration `yaml:"upload_interval"`
	Compress       bool          `yaml:"compress"`
	DBDebug        bool          `yaml:"db_debug"`

	// ProfileDir enables CPU profiling of the run into the given directory.
	ProfileDir string `yaml:"profile_dir"`

	// Latency delays every request of the fake API.
	Latency time.Duration `yaml:"latency"`

	// TypingDelay is the pause between two saves of the composed draft.
	TypingDelay time.Duration `yaml:"typing_delay"`

	UserID           string `yaml:"user_id"`
	AddressID        string `yaml:"address_id"`
	SenderName       string `yaml:"sender_name"`
	SenderAddress    string `yaml:"sender_address"`
	RecipientAddress string `yaml:"recipient_address"`
}

func defaultConfig() config {
	return config{
		Passphrase:       "passphrase",
		UploadInterval:   time.Second,
		Latency:          100 * time.Millisecond,
		TypingDelay:      400 * time.Millisecond,
		UserID:           "user1",
		AddressID:        "address1",
		SenderName:       "User 1",
		SenderAddress:    "user1@example.com",
		RecipientAddress: "user2@example.com",
	}
}

// loadConfig reads the YAML file over the defaults. An empty path keeps the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
