package config

// File is the root of the YAML configuration file.
// It carries per-API settings keyed by host, for things that are awkward to
// repeat on the command line: authentication headers, politeness overrides.
type File struct {
	// APIs maps a host name to its site-specific configuration.
	APIs map[string]SiteConfig `yaml:"apis"`
}

// SiteConfig holds per-API overrides applied when the seed URL's host
// matches the entry's key.
type SiteConfig struct {
	// Headers are extra headers for this API, merged over the global ones.
	// Typically Authorization or API-key headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxDepth overrides the global depth limit when positive.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// DelayMs overrides the global inter-request delay when positive.
	DelayMs int `yaml:"delay_ms,omitempty"`
}

// ApplyTo merges the site overrides into cfg.
func (s SiteConfig) ApplyTo(cfg *Config) {
	for name, value := range s.Headers {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[name] = value
	}
	if s.MaxDepth > 0 {
		cfg.MaxDepth = s.MaxDepth
	}
	if s.DelayMs > 0 {
		cfg.Delay = msToDuration(s.DelayMs)
	}
}
