// Package migrations embeds the goose migration scripts for the durable
// state database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
