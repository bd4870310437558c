// Package config loads dendro's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/dendro/config.toml (falling back to
// ~/.config/dendro/config.toml) and mirrors the pipeline stages:
//
//	[cluster]
//	linkage = "average"
//
//	[layout]
//	width = 800
//	orientation = "vertical"
//
//	[render]
//	formats = ["svg"]
//	scheme = "oranges"
//
//	[cache]
//	backend = "file"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
//
// A missing file is not an error: [Load] returns [Default]. Command-line
// flags override whatever the file sets.
package config
