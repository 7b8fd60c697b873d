// Package configuration reads the boxfs settings from environment-style
// configuration files.
package configuration

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// SettingContainer is the container used when none is given on the
	// command line.
	SettingContainer = "BOXFS_CONTAINER"

	// SettingLogLevel is one of debug, info, warn or error.
	SettingLogLevel = "BOXFS_LOG_LEVEL"

	// SettingVerify enables blake3 verification of transferred files.
	SettingVerify = "BOXFS_VERIFY"

	// SettingFreeSpaceFloor is the amount of space that has to stay free on
	// the host filesystem, either in bytes or human-readable ("10 GB").
	SettingFreeSpaceFloor = "BOXFS_FREE_SPACE_FLOOR"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Config is the principal structure holding the application configuration.
type Config struct {
	Container      string
	LogLevel       slog.Level
	Verify         bool
	FreeSpaceFloor uint64
}

// DefaultConfig returns a pointer to a new [Config] with all defaults set.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelInfo,
		Verify:   true,
	}
}

// Handler is the principal implementation for the configuration services.
type Handler struct {
	genericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		genericHandler: genericHandler,
	}
}

// ReadGeneric reads the given configuration files into a map.
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return c.genericHandler.Read(filenames...)
}

// Load reads the given configuration files into a [Config]. Keys that are not
// set keep their defaults. Without any files, the defaults are returned.
func (c *Handler) Load(filenames ...string) (*Config, error) {
	config := DefaultConfig()

	if len(filenames) == 0 {
		return config, nil
	}

	envMap, err := c.ReadGeneric(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(config) failed to read: %w", err)
	}

	config.Container = c.MapKeyToString(envMap, SettingContainer)

	if value := c.MapKeyToString(envMap, SettingLogLevel); value != "" {
		if err := config.LogLevel.UnmarshalText([]byte(value)); err != nil {
			return nil, fmt.Errorf("(config) %w: %s=%q", ErrInvalidSetting, SettingLogLevel, value)
		}
	}

	verify, err := c.MapKeyToBool(envMap, SettingVerify, config.Verify)
	if err != nil {
		return nil, fmt.Errorf("(config) %w", err)
	}
	config.Verify = verify

	floor, err := c.MapKeyToBytes(envMap, SettingFreeSpaceFloor)
	if err != nil {
		return nil, fmt.Errorf("(config) %w", err)
	}
	config.FreeSpaceFloor = floor

	return config, nil
}

// MapKeyToString returns the value of key, or an empty string if it is not
// set.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

// MapKeyToBool returns the boolean value of key, or fallback if it is not
// set.
func (c *Handler) MapKeyToBool(envMap map[string]string, key string, fallback bool) (bool, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback, nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, value)
	}

	return boolValue, nil
}

// MapKeyToBytes returns the byte amount held by key, which may be given in
// human-readable form. It is zero if the key is not set.
func (c *Handler) MapKeyToBytes(envMap map[string]string, key string) (uint64, error) {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return 0, nil
	}

	bytes, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, value)
	}

	return bytes, nil
}
