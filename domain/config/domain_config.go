// Package config holds limits that apply to every node regardless of type.
package config

import "fmt"

// DomainConfig bounds node size. Per-type rules live in the schemas.
type DomainConfig struct {
	MaxFieldsPerNode int
	MaxStringLength  int
	MaxListLength    int
}

// DefaultDomainConfig returns the limits used outside development and production
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxFieldsPerNode: 64,
		MaxStringLength:  50000,
		MaxListLength:    256,
	}
}

// LoadDomainConfig returns the limits for environment. Production is
// stricter on value sizes; development allows larger test fixtures.
func LoadDomainConfig(environment string) *DomainConfig {
	cfg := DefaultDomainConfig()
	switch environment {
	case "production":
		cfg.MaxStringLength = 20000
		cfg.MaxListLength = 100
	case "development":
		cfg.MaxFieldsPerNode = 256
		cfg.MaxListLength = 1000
	}
	return cfg
}

// Validate rejects non-positive limits
func (c *DomainConfig) Validate() error {
	for name, v := range map[string]int{
		"MaxFieldsPerNode": c.MaxFieldsPerNode,
		"MaxStringLength":  c.MaxStringLength,
		"MaxListLength":    c.MaxListLength,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	return nil
}
