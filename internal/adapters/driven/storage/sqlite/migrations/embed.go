// Package migrations carries the schema of the chunk index. Numbered
// .up.sql files are applied in order and each runs once per database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
