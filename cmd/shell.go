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
	"os"

	"github.com/spf13/cobra"

	"github.com/jerry-enebeli/bankbook/internal/shell"
)

// shellCommands starts the interactive menu on the terminal.
func shellCommands(b *bankbookInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "start the interactive bankbook menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return shell.New(b.ledger, os.Stdin, os.Stdout, shell.WithLogger(b.events)).Run(cmd.Context())
		},
	}

	return cmd
}
