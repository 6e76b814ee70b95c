package config

import (
	"fmt"

	"github.com/rohmanhakim/sitecrawler/pkg/failure"
)

// ConfigError marks a malformed or incomplete CrawlSettings. Configuration
// mistakes are always fatal: a crawl never starts against settings that
// failed validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

func (e *ConfigError) Severity() failure.Severity { return failure.SeverityFatal }
