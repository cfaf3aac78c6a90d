package config

import "github.com/spf13/pflag"

// RegisterFlags declares the configuration flags on fs. Defaults shown in
// help come from LoadDefaults; only flags set explicitly are applied.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP("config", "c", "", "path to a JSON or YAML config file")
	fs.StringP("data-dir", "d", d.DataDir, "root directory of the on-device layout")
	fs.String("layout", string(d.Layout), "directory layout: android or ios (default: by platform)")
	fs.String("brands-db", "", "path of the brand SQLite database")
	fs.String("invoices-dir", "", "directory with invoice JSON files")
	fs.String("edit-store", d.EditStore, "edit record backend: fs or sqlite")
	fs.Int("page-size", d.PageSize, "brand page size")
	fs.Bool("export-csv", d.ExportCSV, "also write a CSV file next to each export")
	fs.String("log-backend", d.LogBackend, "logger backend: slog or logrus")
	fs.String("log-format", d.LogFormat, "log format: text or json")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
}

// ApplyFlags copies every flag the user set on fs into cfg.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	strs := map[string]*string{
		"data-dir":     &cfg.DataDir,
		"brands-db":    &cfg.BrandsDB,
		"invoices-dir": &cfg.InvoicesDir,
		"edit-store":   &cfg.EditStore,
		"log-backend":  &cfg.LogBackend,
		"log-format":   &cfg.LogFormat,
		"log-level":    &cfg.LogLevel,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed("layout") {
		v, err := fs.GetString("layout")
		if err != nil {
			return err
		}
		cfg.Layout = Layout(v)
	}
	if fs.Changed("page-size") {
		v, err := fs.GetInt("page-size")
		if err != nil {
			return err
		}
		cfg.PageSize = v
	}
	if fs.Changed("export-csv") {
		v, err := fs.GetBool("export-csv")
		if err != nil {
			return err
		}
		cfg.ExportCSV = v
	}
	return nil
}
