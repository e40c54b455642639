package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches standard locations for
// invoke-demo.yaml/.yml. The search requires an explicit extension so
// Viper's name-based search never matches the binary itself.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("invoke-demo")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("INVOKE_DEMO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindEnvKeys()
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{".", filepath.Join(home, ".invoke-demo")}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "invoke-demo"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func bindEnvKeys() {
	_ = viper.BindEnv("receiver.workers")
	_ = viper.BindEnv("receiver.simulated_latency")
	_ = viper.BindEnv("affinity.enabled")
	_ = viper.BindEnv("affinity.expression")
	_ = viper.BindEnv("credential.enabled")
	_ = viper.BindEnv("credential.hashed_secret")
	_ = viper.BindEnv("audit.enabled")
	_ = viper.BindEnv("audit.database_path")
	_ = viper.BindEnv("default_timeout")
	_ = viper.BindEnv("dev_mode")
}

// Load reads configuration from configFile (or the standard search path
// when empty) over top of Default, then validates the result.
func Load(configFile string) (*Config, error) {
	InitViper(configFile)

	cfg := Default()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the Config using struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if asValidationErrors(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s: failed %q validation", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(messages, "; "))
	}
	return err
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}
