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

package main

import (
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/database"
)

// migrateCommands creates the root command for schema migrations. It only
// needs the configuration, so it skips opening the ledger.
func migrateCommands(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "migrate",
		Short:             "run bankbook schema migrations",
		PersistentPreRunE: loadConfig(configFile),
	}

	cmd.AddCommand(migrateUpCommands())
	cmd.AddCommand(migrateDownCommands())

	return cmd
}

func migrateUpCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "up",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrate.Up)
		},
	}

	return cmd
}

func migrateDownCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "down",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrate.Down)
		},
	}

	return cmd
}

func runMigrations(direction migrate.MigrationDirection) {
	cnf, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config: %v", err)
		return
	}

	db, err := database.OpenDB(cnf.DataSource)
	if err != nil {
		log.Printf("Error connecting to database: %v", err)
		return
	}
	defer db.Close()

	n, err := database.Migrate(db, cnf.DataSource.Driver, direction)
	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return
	}
	if direction == migrate.Up {
		fmt.Printf("Applied %d migrations!\n", n)
		return
	}
	fmt.Printf("Rolled back %d migrations!\n", n)
}
