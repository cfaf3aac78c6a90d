// Package config loads runtime configuration for regkeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config/-c. Files ending in
//     ".yaml" or ".yml" are decoded as YAML, everything else as JSON.
//  3. Command-line flags (see RegisterFlags / ApplyFlags), which override
//     earlier values.
//
// After loading, (*Config).ResolvePaths fills every empty path from the
// platform layout rooted at DataDir.
//
// # File schema
//
//	{
//	  "data_dir": "/data/user/0/app",
//	  "layout": "android",
//	  "edit_store": "fs",
//	  "page_size": 20,
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables.
package config
