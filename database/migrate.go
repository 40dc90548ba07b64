/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() migrate.MigrationSource {
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: SQLFiles,
		Root:       "sql",
	}
}

// Migrate applies (or rolls back) the embedded migrations and reports how
// many were run. driver doubles as the sql-migrate dialect name.
func Migrate(db *sql.DB, driver string, direction migrate.MigrationDirection) (int, error) {
	n, err := migrate.Exec(db, driver, Migrations(), direction)
	if err != nil {
		return n, errors.Wrap(err, "run migrations")
	}
	return n, nil
}
