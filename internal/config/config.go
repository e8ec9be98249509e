package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tool configuration, resolved from .gitbump.yaml in the
// working directory and GITBUMP_* environment variables.
type Config struct {
	IniFile      string        `mapstructure:"ini_file"`
	TagPrefix    string        `mapstructure:"tag_prefix"`
	Remote       string        `mapstructure:"remote"`
	GitUserName  string        `mapstructure:"git_user_name"`
	GitUserEmail string        `mapstructure:"git_user_email"`
	PushTimeout  time.Duration `mapstructure:"push_timeout"`
	Debug        bool          `mapstructure:"debug"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TagPrefix:    "v",
		Remote:       "origin",
		GitUserName:  "gitbump",
		GitUserEmail: "gitbump@localhost",
		PushTimeout:  2 * time.Minute,
	}
}

var tagPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]*$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Remote == "" {
		return fmt.Errorf("remote cannot be empty")
	}
	if !tagPrefixPattern.MatchString(c.TagPrefix) {
		return fmt.Errorf("invalid tag_prefix %q", c.TagPrefix)
	}
	if c.PushTimeout <= 0 {
		return fmt.Errorf("push_timeout must be positive")
	}
	if strings.Contains(c.IniFile, "..") {
		return fmt.Errorf("ini_file contains invalid path traversal")
	}
	if c.GitUserName == "" || c.GitUserEmail == "" {
		return fmt.Errorf("git_user_name and git_user_email cannot be empty")
	}
	return nil
}

// LoadConfig reads the configuration from file and environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".gitbump")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("GITBUMP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	bindings := map[string]string{
		"ini_file":       "GITBUMP_INI_FILE",
		"tag_prefix":     "GITBUMP_TAG_PREFIX",
		"remote":         "GITBUMP_REMOTE",
		"git_user_name":  "GITBUMP_GIT_USER_NAME",
		"git_user_email": "GITBUMP_GIT_USER_EMAIL",
		"push_timeout":   "GITBUMP_PUSH_TIMEOUT",
		"debug":          "GITBUMP_DEBUG",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	defaults := DefaultConfig()
	v.SetDefault("tag_prefix", defaults.TagPrefix)
	v.SetDefault("remote", defaults.Remote)
	v.SetDefault("git_user_name", defaults.GitUserName)
	v.SetDefault("git_user_email", defaults.GitUserEmail)
	v.SetDefault("push_timeout", defaults.PushTimeout)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
