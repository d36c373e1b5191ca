// Package migrations embeds the goose SQL migrations for the cities, legs and
// tracks tables so the API server, dbtool and integration tests all apply
// the same schema.
package migrations

import "embed"

// FS holds every *.sql migration, embedded at compile time.
// Hand it to goose.NewProvider together with a *sql.DB.
//
//go:embed *.sql
var FS embed.FS
