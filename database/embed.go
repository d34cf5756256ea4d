package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationsRoot embed.FS

// EmbeddedMigrations is the migrations subtree, rooted so the .sql files
// sit at its top level. The deployed binary needs no files on disk.
var EmbeddedMigrations fs.FS

func init() {
	sub, err := fs.Sub(migrationsRoot, "migrations")
	if err != nil {
		panic("database: embedded migrations missing: " + err.Error())
	}
	EmbeddedMigrations = sub
}
