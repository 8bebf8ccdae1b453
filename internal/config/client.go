package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_client.yaml
var defaultClientYAML []byte

// Client is the configuration of the interactive search client.
type Client struct {
	APIURL  string   `yaml:"api_url"`
	Timeout string   `yaml:"timeout"`
	Domains []string `yaml:"domains"`
}

// DefaultClientPath is where the client looks for its config when no path is given.
func DefaultClientPath() string {
	return filepath.Join(xdg.ConfigHome, "news-scraper", "config.yaml")
}

// TimeoutDuration returns the request timeout, 60s when unset or malformed.
func (c *Client) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// LoadClient reads the client config from path (DefaultClientPath when empty).
// A missing file yields the embedded defaults. NEWS_API_URL and
// NEWS_API_TIMEOUT override the file.
func LoadClient(path string) (*Client, error) {
	var cfg Client
	if err := yaml.Unmarshal(defaultClientYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded client config: %w", err)
	}

	if path == "" {
		path = DefaultClientPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		// Keys absent from the file keep their defaults.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv("NEWS_API_URL", cfg.APIURL)
	cfg.Timeout = getEnv("NEWS_API_TIMEOUT", cfg.Timeout)

	if err := validateClient(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateClient(cfg *Client) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	return nil
}
