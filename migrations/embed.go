package migrations

import "embed"

// FS миграции схемы, встроенные в бинарник
//
//go:embed *.sql
var FS embed.FS
