package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

type Config struct {
	Host           string `json:"host"`
	Protocol       string `json:"protocol" validate:"required,oneof=https:// http://"`
	EndpointPrefix string `json:"endpoint_prefix"`
	Remote         string `json:"remote" validate:"required"`
	AuthFile       string `json:"auth_file"`
	Language       string `json:"language" validate:"required,oneof=en es"`
	QueryLimit     int    `json:"query_limit" validate:"gte=1,lte=500"`

	PathFile string `json:"-"`
}

const (
	configDirName  = ".mate-review"
	configFileName = "config.json"

	defaultProtocol       = "https://"
	defaultEndpointPrefix = "/a"
	defaultRemote         = "origin"
	defaultLanguage       = LangEN
	defaultQueryLimit     = 25
)

// Environment variables that override the file values.
const (
	EnvHost     = "MATE_REVIEW_HOST"
	EnvProtocol = "MATE_REVIEW_PROTOCOL"
	EnvPrefix   = "MATE_REVIEW_PREFIX"
	EnvRemote   = "MATE_REVIEW_REMOTE"
	EnvAuthFile = "MATE_REVIEW_AUTH_FILE"
	EnvLanguage = "MATE_REVIEW_LANG"
)

var validate = validator.New()

// Keys accepted by Set, in display order.
var Keys = []string{"host", "protocol", "endpoint_prefix", "remote", "auth_file", "language", "query_limit"}

// LoadConfig reads the config under homeDir (or the given .json file),
// creating a default one when it does not exist yet.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configPath = filepath.Join(path, configDirName, configFileName)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath, path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := defaultConfig(path)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	cfg.PathFile = configPath

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig(home string) *Config {
	authFile := ""
	if filepath.Ext(home) != ".json" {
		authFile = filepath.Join(home, ".netrc")
	}
	return &Config{
		Protocol:       defaultProtocol,
		EndpointPrefix: defaultEndpointPrefix,
		Remote:         defaultRemote,
		AuthFile:       authFile,
		Language:       defaultLanguage,
		QueryLimit:     defaultQueryLimit,
	}
}

func createDefaultConfig(path, home string) (*Config, error) {
	cfg := defaultConfig(home)
	cfg.PathFile = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("error saving default config: %w", err)
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.PathFile == "" {
		return errors.New("config file path is not set")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(cfg.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with the MATE_REVIEW_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvProtocol); v != "" {
		c.Protocol = v
	}
	if v, ok := os.LookupEnv(EnvPrefix); ok {
		c.EndpointPrefix = v
	}
	if v := os.Getenv(EnvRemote); v != "" {
		c.Remote = v
	}
	if v := os.Getenv(EnvAuthFile); v != "" {
		c.AuthFile = v
	}
	if lang, ok := SupportedLanguage(os.Getenv(EnvLanguage)); ok {
		c.Language = lang
	}
}

// Set assigns one key from its string form. The config is not saved.
func (c *Config) Set(key, value string) error {
	switch key {
	case "host":
		c.Host = strings.TrimSuffix(value, "/")
	case "protocol":
		c.Protocol = value
	case "endpoint_prefix":
		c.EndpointPrefix = strings.TrimSuffix(value, "/")
	case "remote":
		c.Remote = value
	case "auth_file":
		c.AuthFile = value
	case "language":
		if lang, ok := SupportedLanguage(value); ok {
			value = lang
		}
		c.Language = value
	case "query_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return domainErrors.ErrInvalidConfig.WithError(err).WithContext("key", key)
		}
		c.QueryLimit = n
	default:
		return domainErrors.ErrInvalidConfig.
			WithContext("key", key).
			WithSuggestion("Valid keys: " + strings.Join(Keys, ", "))
	}
	return validateConfig(c)
}

// Get returns the string form of one key.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case "host":
		return c.Host, true
	case "protocol":
		return c.Protocol, true
	case "endpoint_prefix":
		return c.EndpointPrefix, true
	case "remote":
		return c.Remote, true
	case "auth_file":
		return c.AuthFile, true
	case "language":
		return c.Language, true
	case "query_limit":
		return strconv.Itoa(c.QueryLimit), true
	}
	return "", false
}

// RequireHost fails when no review server is configured.
func (c *Config) RequireHost() error {
	if c.Host == "" {
		return domainErrors.ErrHostMissing
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return domainErrors.ErrInvalidConfig.WithError(err)
	}
	if cfg.EndpointPrefix != "" && !strings.HasPrefix(cfg.EndpointPrefix, "/") {
		return domainErrors.ErrInvalidConfig.
			WithError(fmt.Errorf("endpoint_prefix %q must start with /", cfg.EndpointPrefix))
	}
	return nil
}
