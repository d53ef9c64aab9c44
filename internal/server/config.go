package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/nisa-forecast/internal/config"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	MaxUploadSize string               `yaml:"maxUploadSize"`
	StorePath     string               `yaml:"storePath"`
	Logging       config.LoggingConfig `yaml:"logging"`
	Engine        config.EngineConfig  `yaml:"engine"`

	uploadSizeBytes int64
}

var (
	sizePattern = regexp.MustCompile(`^(\d+)\s*([A-Z]*)$`)
	sizeUnits   = map[string]int64{
		"":   1,
		"B":  1,
		"K":  1 << 10,
		"KB": 1 << 10,
		"M":  1 << 20,
		"MB": 1 << 20,
		"G":  1 << 30,
		"GB": 1 << 30,
	}
)

func defaultConfig() *Config {
	cfg := &Config{}
	// An empty config always normalizes.
	_ = cfg.normalize()
	return cfg
}

// LoadConfig reads the server configuration at path. A missing file or an
// empty path yields the defaults: listen on DefaultServerAddress, keep
// scenarios in DefaultStoreFile and run the engine with its default cap
// and tax rate.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

// UploadSizeBytes returns the request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the request body limit. Non-positive sizes
// are ignored.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

// normalize fills absent fields and checks the engine parameters the
// handler will hand to every sweep.
func (c *Config) normalize() error {
	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	c.StorePath = strings.TrimSpace(c.StorePath)
	if c.StorePath == "" {
		c.StorePath = constants.DefaultStoreFile
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.SetUploadSizeBytes(size)

	if c.Engine.Parallelism < 0 {
		c.Engine.Parallelism = 0
	}
	return c.Engine.Validate()
}

// ParseSize converts a byte count with an optional K, M or G suffix
// (e.g., "256K", "10MB") into bytes. An empty string is the default upload
// size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	m := sizePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	multiplier, ok := sizeUnits[m[2]]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", m[2])
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
