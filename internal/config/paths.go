package config

import (
	"path/filepath"
	"runtime"
)

// Layout names one of the two on-device directory layouts.
type Layout string

const (
	LayoutAndroid Layout = "android"
	LayoutIOS     Layout = "ios"
)

// DefaultLayout picks the layout for the running platform.
func DefaultLayout(goos string) Layout {
	switch goos {
	case "ios", "darwin":
		return LayoutIOS
	default:
		return LayoutAndroid
	}
}

// ResolvePaths fills every empty path field from the layout rooted at
// DataDir. Explicitly configured paths are left untouched.
func (c *Config) ResolvePaths() {
	layout := c.Layout
	if layout == "" {
		layout = DefaultLayout(runtime.GOOS)
		c.Layout = layout
	}

	var dbDir, filesDir string
	switch layout {
	case LayoutIOS:
		dbDir = filepath.Join(c.DataDir, "Library", "LocalDatabase")
		filesDir = filepath.Join(c.DataDir, "Documents")
	default:
		dbDir = filepath.Join(c.DataDir, "databases")
		filesDir = filepath.Join(c.DataDir, "files")
	}

	setDefault(&c.BrandsDB, filepath.Join(dbDir, "brands.db"))
	setDefault(&c.EditsDB, filepath.Join(dbDir, "edits.db"))
	setDefault(&c.InvoicesDir, filepath.Join(filesDir, "invoices"))
	setDefault(&c.EditsDir, filepath.Join(filesDir, "edited"))
	setDefault(&c.ExportsDir, filepath.Join(filesDir, "exports"))
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
