// Package migrations ships the schema with the binary.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS
