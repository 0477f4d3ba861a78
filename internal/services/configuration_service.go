package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"mediwise/internal/logger"
)

// Configuration keys understood by MediWise.
const (
	ConfigAPIBaseURL             = "MEDIWISE_API_BASE_URL"
	ConfigHTTPTimeout            = "MEDIWISE_HTTP_TIMEOUT"
	ConfigValidateSessionOnStart = "MEDIWISE_VALIDATE_SESSION_ON_START"
	ConfigTheme                  = "MEDIWISE_THEME"
	ConfigRenderMarkdown         = "MEDIWISE_RENDER_MARKDOWN"
	ConfigMarkdownWidth          = "MEDIWISE_MARKDOWN_WIDTH"
	ConfigLogLevel               = "MEDIWISE_LOG_LEVEL"

	// legacyBaseURLKey is the variable name used by the web frontend build.
	legacyBaseURLKey = "VITE_API_BASE_URL"

	envPrefix = "MEDIWISE_"
)

// DefaultAPIBaseURL is used when no base address is configured.
const DefaultAPIBaseURL = "http://localhost:8000"

// flagKeys maps viper-bound CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"api-base-url":     ConfigAPIBaseURL,
	"validate-session": ConfigValidateSessionOnStart,
	"theme":            ConfigTheme,
	"log-level":        ConfigLogLevel,
}

// ConfigPaths reports which configuration files were found and loaded.
type ConfigPaths struct {
	ConfigEnvPath   string
	ConfigEnvLoaded bool
	LocalEnvPath    string
	LocalEnvLoaded  bool
}

// ConfigurationService loads MediWise settings from multiple sources.
// Priority (highest to lowest): CLI flags > environment variables > local .env > config .env > defaults.
type ConfigurationService struct {
	initialized bool
	mu          sync.RWMutex
	values      map[string]string
	paths       ConfigPaths

	configDir string
	workDir   string
	environ   func() []string
	flags     *viper.Viper
}

// ConfigOption customizes where the ConfigurationService reads from.
type ConfigOption func(*ConfigurationService)

// WithConfigDir overrides the user configuration directory.
func WithConfigDir(dir string) ConfigOption {
	return func(c *ConfigurationService) { c.configDir = dir }
}

// WithWorkDir overrides the directory searched for a local .env file.
func WithWorkDir(dir string) ConfigOption {
	return func(c *ConfigurationService) { c.workDir = dir }
}

// WithEnviron replaces os.Environ, mainly so tests do not depend on the process environment.
func WithEnviron(environ func() []string) ConfigOption {
	return func(c *ConfigurationService) { c.environ = environ }
}

// WithFlags supplies a viper instance carrying bound CLI flags.
func WithFlags(v *viper.Viper) ConfigOption {
	return func(c *ConfigurationService) { c.flags = v }
}

// NewConfigurationService creates a new ConfigurationService instance.
func NewConfigurationService(opts ...ConfigOption) *ConfigurationService {
	c := &ConfigurationService{
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the service name "configuration" for registration.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Initialize loads every configuration source in priority order.
// Calling it again on an initialized service is a no-op; use Reload to re-read sources.
func (c *ConfigurationService) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	return c.load()
}

// Reload re-reads every configuration source.
func (c *ConfigurationService) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *ConfigurationService) load() error {
	c.values = make(map[string]string)
	c.paths = ConfigPaths{}

	c.loadDefaults()

	if err := c.loadConfigDotEnv(); err != nil {
		return fmt.Errorf("failed to load config .env: %w", err)
	}
	if err := c.loadLocalDotEnv(); err != nil {
		return fmt.Errorf("failed to load local .env: %w", err)
	}
	c.loadEnvironmentVariables()
	c.loadFlags()

	c.initialized = true
	logger.Debug("Configuration loaded",
		"base_url", c.values[ConfigAPIBaseURL],
		"config_env", c.paths.ConfigEnvLoaded,
		"local_env", c.paths.LocalEnvLoaded)
	return nil
}

func (c *ConfigurationService) loadDefaults() {
	defaults := map[string]string{
		ConfigAPIBaseURL:             DefaultAPIBaseURL,
		ConfigHTTPTimeout:            "0",
		ConfigValidateSessionOnStart: "false",
		ConfigTheme:                  "default",
		ConfigRenderMarkdown:         "true",
	}
	for key, value := range defaults {
		c.values[key] = value
	}
}

// loadConfigDotEnv loads $XDG_CONFIG_HOME/mediwise/.env.
func (c *ConfigurationService) loadConfigDotEnv() error {
	dir := c.configDir
	if dir == "" {
		userDir, err := userConfigDir()
		if err != nil {
			// Config directory access failure is not fatal
			return nil
		}
		dir = userDir
	}

	envPath := filepath.Join(dir, ".env")
	c.paths.ConfigEnvPath = envPath
	loaded, err := c.loadDotEnvFile(envPath)
	c.paths.ConfigEnvLoaded = loaded
	return err
}

func (c *ConfigurationService) loadLocalDotEnv() error {
	dir := c.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	envPath := filepath.Join(dir, ".env")
	c.paths.LocalEnvPath = envPath
	loaded, err := c.loadDotEnvFile(envPath)
	c.paths.LocalEnvLoaded = loaded
	return err
}

// loadDotEnvFile merges a .env file into the configuration. A missing file is not an error.
func (c *ConfigurationService) loadDotEnvFile(envPath string) (bool, error) {
	data, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", envPath, err)
	}

	c.mergeSource(envMap)
	return true, nil
}

func (c *ConfigurationService) loadEnvironmentVariables() {
	envMap := make(map[string]string)
	for _, env := range c.environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}
	c.mergeSource(envMap)
}

// mergeSource stores MEDIWISE_ keys and the frontend base URL alias from one source.
// Within a source the MEDIWISE_ key wins over the alias.
func (c *ConfigurationService) mergeSource(source map[string]string) {
	if value, ok := source[legacyBaseURLKey]; ok {
		c.values[ConfigAPIBaseURL] = value
	}
	for key, value := range source {
		if strings.HasPrefix(key, envPrefix) {
			c.values[key] = value
		}
	}
}

func (c *ConfigurationService) loadFlags() {
	if c.flags == nil {
		return
	}
	for flag, key := range flagKeys {
		if c.flags.IsSet(flag) {
			c.values[key] = c.flags.GetString(flag)
		}
	}
}

// GetConfigValue retrieves a configuration value by key.
// Returns empty string if the value doesn't exist.
func (c *ConfigurationService) GetConfigValue(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return "", ErrServiceNotInitialized
	}
	return c.values[key], nil
}

// SetConfigValue overrides a configuration value. This is primarily for testing purposes.
func (c *ConfigurationService) SetConfigValue(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrServiceNotInitialized
	}
	c.values[key] = value
	return nil
}

// Paths returns which .env files were considered during the last load.
func (c *ConfigurationService) Paths() ConfigPaths {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paths
}

// BaseURL returns the backend base address without a trailing slash.
func (c *ConfigurationService) BaseURL() string {
	value := strings.TrimRight(strings.TrimSpace(c.get(ConfigAPIBaseURL)), "/")
	if value == "" {
		return DefaultAPIBaseURL
	}
	return value
}

// HTTPTimeout returns the transport timeout. Zero means no explicit timeout.
func (c *ConfigurationService) HTTPTimeout() time.Duration {
	raw := strings.TrimSpace(c.get(ConfigHTTPTimeout))
	if raw == "" || raw == "0" {
		return 0
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil || timeout < 0 {
		logger.Warn("Invalid HTTP timeout, using none", "value", raw)
		return 0
	}
	return timeout
}

// ValidateSessionOnStart reports whether startup should check the session against the refresh endpoint.
func (c *ConfigurationService) ValidateSessionOnStart() bool {
	return c.getBool(ConfigValidateSessionOnStart, false)
}

// Theme returns the configured theme name.
func (c *ConfigurationService) Theme() string {
	value := strings.ToLower(strings.TrimSpace(c.get(ConfigTheme)))
	if value == "" {
		return "default"
	}
	return value
}

// RenderMarkdown reports whether assistant replies are rendered as markdown.
func (c *ConfigurationService) RenderMarkdown() bool {
	return c.getBool(ConfigRenderMarkdown, true)
}

// MarkdownWidth returns the word wrap column for rendered replies, 80 by default.
func (c *ConfigurationService) MarkdownWidth() int {
	raw := strings.TrimSpace(c.get(ConfigMarkdownWidth))
	if raw == "" {
		return DefaultMarkdownWidth
	}
	width, err := strconv.Atoi(raw)
	if err != nil || width <= 0 {
		logger.Warn("Invalid markdown width, using default", "value", raw, "default", DefaultMarkdownWidth)
		return DefaultMarkdownWidth
	}
	return width
}

// LogLevel returns the configured log level name, empty when none is set.
func (c *ConfigurationService) LogLevel() string {
	return strings.TrimSpace(c.get(ConfigLogLevel))
}

func (c *ConfigurationService) get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

func (c *ConfigurationService) getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(c.get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("Invalid boolean setting, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return value
}

// userConfigDir returns $XDG_CONFIG_HOME/mediwise, falling back to ~/.config/mediwise.
func userConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "mediwise"), nil
}
