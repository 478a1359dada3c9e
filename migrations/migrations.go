// Package migrations embeds the SQL migrations applied by goose on startup.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
