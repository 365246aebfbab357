// Package config reads component configuration files.
//
// Files use the Ice property syntax shared by RoboComp components:
//
//	# comment
//	ImageBasedGestureRecognitionProxy = imagebasedgesturerecognition:tcp -h localhost -p 10005
//	CommonBehavior.Endpoints = tcp -p 11000
//	BatchSize = 64
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/magiconair/properties"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "etc/config"

var (
	// ErrMissingProperty is returned when a required property is absent.
	ErrMissingProperty = errors.New("missing property")
	// ErrInvalidProperty is returned when a property value cannot be parsed.
	ErrInvalidProperty = errors.New("invalid property")
)

// Config holds the properties of one component.
type Config struct {
	path  string
	props *properties.Properties
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	p.DisableExpansion = true
	return &Config{path: path, props: p}, nil
}

// Parse builds a Config from property text. Used by tests and reloads.
func Parse(text string) (*Config, error) {
	p, err := properties.LoadString(text)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	p.DisableExpansion = true
	return &Config{props: p}, nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// String returns the raw value of key and whether it is set.
func (c *Config) String(key string) (string, bool) {
	v, ok := c.props.Get(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// StringOr returns the value of key or def when it is not set.
func (c *Config) StringOr(key, def string) string {
	if v, ok := c.String(key); ok && v != "" {
		return v
	}
	return def
}

// Int returns key parsed as an int, or def when it is not set.
func (c *Config) Int(key string, def int) (int, error) {
	v, ok := c.String(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidProperty, key, v)
	}
	return n, nil
}

// Float returns key parsed as a float64, or def when it is not set.
func (c *Config) Float(key string, def float64) (float64, error) {
	v, ok := c.String(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidProperty, key, v)
	}
	return f, nil
}

// Millis returns key interpreted as a number of milliseconds.
func (c *Config) Millis(key string, def time.Duration) (time.Duration, error) {
	v, ok := c.String(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidProperty, key, v)
	}
	return time.Duration(n) * time.Millisecond, nil
}

// Proxy resolves the remote endpoint of interface name from the
// "<name>Proxy" property.
func (c *Config) Proxy(name string) (Endpoint, error) {
	key := name + "Proxy"
	v, ok := c.String(key)
	if !ok || v == "" {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	ep, err := ParseProxy(v)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%s: %w", key, err)
	}
	return ep, nil
}

// Endpoints resolves the local adapter endpoint of interface name from
// the "<name>.Endpoints" property.
func (c *Config) Endpoints(name string) (Endpoint, error) {
	key := name + ".Endpoints"
	v, ok := c.String(key)
	if !ok || v == "" {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	ep, err := ParseEndpoint(v)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%s: %w", key, err)
	}
	return ep, nil
}

// Parameters returns the component parameters: every property that is not
// middleware configuration, a proxy, or an adapter endpoint.
func (c *Config) Parameters() map[string]string {
	params := make(map[string]string)
	for _, key := range c.props.Keys() {
		if isMiddlewareKey(key) {
			continue
		}
		v, _ := c.String(key)
		params[key] = v
	}
	return params
}

// Keys returns all property keys in sorted order.
func (c *Config) Keys() []string {
	keys := c.props.Keys()
	sort.Strings(keys)
	return keys
}

func isMiddlewareKey(key string) bool {
	switch {
	case strings.HasPrefix(key, "Ice."), strings.HasPrefix(key, "IceStorm"):
		return true
	case strings.HasSuffix(key, "Proxy"), strings.HasSuffix(key, ".Endpoints"):
		return true
	case strings.HasSuffix(key, ".Topic"):
		return true
	}
	return false
}
