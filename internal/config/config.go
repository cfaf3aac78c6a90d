package config

import "fmt"

// Config holds runtime settings for regkeeper.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	Layout  Layout `json:"layout" yaml:"layout"`

	BrandsDB    string `json:"brands_db" yaml:"brands_db"`
	InvoicesDir string `json:"invoices_dir" yaml:"invoices_dir"`
	EditsDir    string `json:"edits_dir" yaml:"edits_dir"`
	ExportsDir  string `json:"exports_dir" yaml:"exports_dir"`
	EditsDB     string `json:"edits_db" yaml:"edits_db"`

	// EditStore selects the edit-record backend: "fs" or "sqlite".
	EditStore  string `json:"edit_store" yaml:"edit_store"`
	PageSize   int    `json:"page_size" yaml:"page_size"`
	SampleSize int    `json:"sample_size" yaml:"sample_size"`
	ExportCSV  bool   `json:"export_csv" yaml:"export_csv"`

	LogBackend string `json:"log_backend" yaml:"log_backend"`
	LogFormat  string `json:"log_format" yaml:"log_format"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

const (
	EditStoreFS     = "fs"
	EditStoreSQLite = "sqlite"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.Layout = ""
	c.EditStore = EditStoreFS
	c.PageSize = 20
	c.SampleSize = 500
	c.ExportCSV = false
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Load builds a Config from defaults and, when path is not empty, the
// given config file. Paths are not resolved yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.EditStore {
	case EditStoreFS, EditStoreSQLite:
	default:
		return fmt.Errorf("unknown edit_store %q", c.EditStore)
	}
	switch c.Layout {
	case "", LayoutAndroid, LayoutIOS:
	default:
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize)
	}
	return nil
}
