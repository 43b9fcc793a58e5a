// Package migrations embeds the SQL schema for the known-user directory.
package migrations

import "embed"

// FS holds the numbered up/down migration files applied by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
