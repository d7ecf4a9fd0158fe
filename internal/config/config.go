package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

const (
	envFile      = ".env"
	envLocalFile = ".env.local"
)

// ErrMissingEnv is matched by errors.Is for every *MissingEnvError.
var ErrMissingEnv = errors.New("missing environment variables")

// ErrInvalidValue is returned when a variable is present but cannot be parsed.
var ErrInvalidValue = errors.New("invalid environment value")

// MissingEnvError lists every required key that was unset or blank.
type MissingEnvError struct {
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("check your .env: missing %s", strings.Join(e.Keys, ", "))
}

// Is lets errors.Is(err, ErrMissingEnv) match.
func (e *MissingEnvError) Is(target error) bool { return target == ErrMissingEnv }

// Config reads lesson settings from the process environment.
type Config struct {
	lookup func(string) (string, bool)
}

// Load reads .env and then .env.local from dir into the process environment
// and returns a Config backed by it. Variables already exported win over .env,
// .env.local wins over both. Missing files are not an error.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, envFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}
	if err := godotenv.Overload(filepath.Join(dir, envLocalFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envLocalFile, err)
	}
	return &Config{lookup: os.LookupEnv}, nil
}

// FromMap returns a Config that reads only from m.
func FromMap(m map[string]string) *Config {
	return &Config{lookup: func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}}
}

// Get returns the trimmed value of key, or "" when unset.
func (c *Config) Get(key string) string {
	v, _ := c.lookup(key)
	return strings.TrimSpace(v)
}

// String returns the value of key or def when unset/blank.
func (c *Config) String(key, def string) string {
	if v := c.Get(key); v != "" {
		return v
	}
	return def
}

// Require checks that every key is set and non-blank.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if c.Get(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingEnvError{Keys: missing}
}

// Int returns key parsed as a base-10 integer, or def when unset.
func (c *Config) Int(key string, def int) (int, error) {
	v := c.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, v)
	}
	return n, nil
}

// Uint64 returns key parsed as an unsigned integer, or def when unset.
func (c *Config) Uint64(key string, def uint64) (uint64, error) {
	v := c.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidValue, key, v)
	}
	return n, nil
}

// Bool returns key parsed with strconv.ParseBool, or def when unset.
func (c *Config) Bool(key string, def bool) (bool, error) {
	v := c.Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, v)
	}
	return b, nil
}

// Duration returns key parsed with time.ParseDuration, or def when unset.
func (c *Config) Duration(key string, def time.Duration) (time.Duration, error) {
	v := c.Get(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidValue, key, v)
	}
	return d, nil
}

// Address returns key as a checksummed EVM address.
func (c *Config) Address(key string) (common.Address, error) {
	v := c.Get(key)
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("%w: %s=%q is not an address", ErrInvalidValue, key, v)
	}
	return common.HexToAddress(v), nil
}

// OptionalAddress is Address but returns nil when key is unset.
func (c *Config) OptionalAddress(key string) (*common.Address, error) {
	if c.Get(key) == "" {
		return nil, nil
	}
	a, err := c.Address(key)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RPCURL returns the validated value of key. Only http(s) and ws(s) endpoints
// are accepted; a bare project id is the usual mistake.
func (c *Config) RPCURL(key string) (string, error) {
	return c.endpoint(key, "https://", "http://", "wss://", "ws://")
}

// WSURL returns the validated value of key. Subscriptions need a websocket,
// so only ws(s) endpoints are accepted.
func (c *Config) WSURL(key string) (string, error) {
	return c.endpoint(key, "wss://", "ws://")
}

func (c *Config) endpoint(key string, schemes ...string) (string, error) {
	v := c.Get(key)
	for _, scheme := range schemes {
		if strings.HasPrefix(strings.ToLower(v), scheme) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%q must start with %s", ErrInvalidValue, key, v, strings.Join(schemes, " or "))
}
