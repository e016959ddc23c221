package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "part11"

func loadYAML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	yamlFile, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		// the file is optional, defaults apply
		return nil
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	_ = godotenv.Load()

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
