package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding loaded limits.
const (
	EnvBufferSize  = "SCIBRIDGE_BUFFER_SIZE"
	EnvRetryBudget = "SCIBRIDGE_RETRY_BUDGET"
	EnvBlockSize   = "SCIBRIDGE_BLOCK_SIZE"
)

// Errors returned by configuration loading.
var (
	ErrUnknownFormat = errors.New("unknown config file format")
	ErrInvalidLimit  = errors.New("limit must be positive")
)

// Limits are the tunable sizes of the marshaling layer.
type Limits struct {
	// BufferSize is the initial capacity, in bytes, for fetches whose length
	// the engine does not pre-declare.
	BufferSize int `toml:"buffer_size" yaml:"buffer_size"`

	// RetryBudget bounds the buffer-grow retry loop per fetch.
	RetryBudget int `toml:"retry_budget" yaml:"retry_budget"`

	// BlockSize bounds the bytes carried by one bulk-transfer call.
	BlockSize int `toml:"block_size" yaml:"block_size"`
}

// Default returns the built-in limits.
func Default() Limits {
	return Limits{
		BufferSize:  10000,
		RetryBudget: 3,
		BlockSize:   1 << 20,
	}
}

// Validate reports the first non-positive limit.
func (l Limits) Validate() error {
	if l.BufferSize <= 0 {
		return fmt.Errorf("buffer_size %d: %w", l.BufferSize, ErrInvalidLimit)
	}
	if l.RetryBudget <= 0 {
		return fmt.Errorf("retry_budget %d: %w", l.RetryBudget, ErrInvalidLimit)
	}
	if l.BlockSize <= 0 {
		return fmt.Errorf("block_size %d: %w", l.BlockSize, ErrInvalidLimit)
	}
	return nil
}

// Load reads limits from path, chosen by extension (.toml, .yaml, .yml),
// applies environment overrides, and validates. A missing file is not an
// error: defaults plus environment overrides are returned.
func Load(path string) (Limits, error) {
	limits := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if limits, err = parse(path, data); err != nil {
			return Limits{}, err
		}
	case os.IsNotExist(err):
		// Defaults stand.
	default:
		return Limits{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	limits = FromEnv(limits)
	if err := limits.Validate(); err != nil {
		return Limits{}, fmt.Errorf("config %s: %w", path, err)
	}
	return limits, nil
}

// parse decodes data per the file extension, on top of defaults so partial
// files work.
func parse(path string, data []byte) (Limits, error) {
	limits := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &limits); err != nil {
			return Limits{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &limits); err != nil {
			return Limits{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return Limits{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	return limits, nil
}

// FromEnv returns limits with environment variable overrides applied.
// Unset or malformed variables leave the corresponding limit unchanged.
func FromEnv(limits Limits) Limits {
	if v, ok := envInt(EnvBufferSize); ok {
		limits.BufferSize = v
	}
	if v, ok := envInt(EnvRetryBudget); ok {
		limits.RetryBudget = v
	}
	if v, ok := envInt(EnvBlockSize); ok {
		limits.BlockSize = v
	}
	return limits
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
