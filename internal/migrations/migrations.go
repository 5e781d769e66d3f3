// Package migrations embeds the snapshot database schema
package migrations

import "embed"

// FS holds the golang-migrate files, named <version>_<title>.<up|down>.sql
//
//go:embed *.sql
var FS embed.FS
