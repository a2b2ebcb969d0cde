// Package db embebe las migraciones SQL para ejecutarlas con goose sin
// depender del árbol de archivos en el despliegue.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
