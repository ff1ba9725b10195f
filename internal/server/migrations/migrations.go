// Package migrations embeds the goose schema migrations: the PostgreSQL set
// at the package root and the SQLite set under sqlite/.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
