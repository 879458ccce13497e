package config

import (
	"fmt"
	"time"

	"nyxdb-client/internal/observability/tracing"
	"nyxdb-client/internal/registry"
)

// ClientConfig configures the location client.
type ClientConfig struct {
	Registry    RegistryConfig    `yaml:"registry"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Locator     LocatorConfig     `yaml:"locator"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// RegistryConfig points at the cluster's etcd registry. Leave Endpoints
// empty to bootstrap through the coordinator addresses instead.
type RegistryConfig struct {
	Endpoints   []string `yaml:"endpoints"`
	DialTimeout string   `yaml:"dialTimeout"`
	Key         string   `yaml:"key"`
}

// CoordinatorConfig lists coordinator addresses for RPC bootstrap.
type CoordinatorConfig struct {
	Addresses []string `yaml:"addresses"`
}

// LocatorConfig tunes lookup behavior.
type LocatorConfig struct {
	// LookupTimeout bounds one caller's wait for a resolution.
	LookupTimeout string `yaml:"lookupTimeout"`
	// FetchTimeout bounds one background meta resolution.
	FetchTimeout string `yaml:"fetchTimeout"`
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"serviceName"`
	SampleRatio float64 `yaml:"sampleRatio"`
}

type MetricsConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
}

const (
	defaultLookupTimeout = 5 * time.Second
	defaultFetchTimeout  = 10 * time.Second
	defaultDialTimeout   = 5 * time.Second
)

func parseDuration(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", v, err)
	}
	return d, nil
}

// LookupTimeout returns the configured caller deadline.
func (c *ClientConfig) LookupTimeout() (time.Duration, error) {
	return parseDuration(c.Locator.LookupTimeout, defaultLookupTimeout)
}

// FetchTimeout returns the configured background fetch deadline.
func (c *ClientConfig) FetchTimeout() (time.Duration, error) {
	return parseDuration(c.Locator.FetchTimeout, defaultFetchTimeout)
}

// EtcdConfig maps the registry section onto the etcd registry config.
func (c *ClientConfig) EtcdConfig() (registry.EtcdConfig, error) {
	dial, err := parseDuration(c.Registry.DialTimeout, defaultDialTimeout)
	if err != nil {
		return registry.EtcdConfig{}, err
	}
	return registry.EtcdConfig{
		Endpoints:   c.Registry.Endpoints,
		DialTimeout: dial,
		Key:         c.Registry.Key,
	}, nil
}

// TracingConfig maps the tracing section onto the tracing setup config.
func (c *ClientConfig) TracingConfig() tracing.Config {
	return tracing.Config{
		Endpoint:    c.Tracing.Endpoint,
		Insecure:    c.Tracing.Insecure,
		ServiceName: c.Tracing.ServiceName,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
