package migrations

import "embed"

// FS contains embedded SQLite migrations for narrative world state.
//
//go:embed *.sql
var FS embed.FS
