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
	"time"

	"github.com/spf13/cobra"

	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/internal/backups"
)

// backupCommands copies the ledger database to the backup directory.
func backupCommands(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "backup",
		Short:             "back up the ledger database",
		PersistentPreRunE: loadConfig(configFile),
		RunE: func(cmd *cobra.Command, args []string) error {
			cnf, err := config.Fetch()
			if err != nil {
				return err
			}
			bm := backups.NewBackupManager(cnf)
			path, err := bm.BackupToDisk(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", path)
			return upload(cmd, bm, path)
		},
	}

	cmd.AddCommand(archiveCommands())
	return cmd
}

// archiveCommands zips one day's backups.
func archiveCommands() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "zip the backups taken on a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cnf, err := config.Fetch()
			if err != nil {
				return err
			}
			on, err := time.Parse("2006-01-02", day)
			if err != nil {
				return fmt.Errorf("day must be in the format YYYY-MM-DD: %w", err)
			}
			bm := backups.NewBackupManager(cnf)
			path, err := bm.Archive(on)
			if err != nil {
				return err
			}
			fmt.Printf("Backups archived to %s\n", path)
			return upload(cmd, bm, path)
		},
	}
	cmd.Flags().StringVar(&day, "day", time.Now().Format("2006-01-02"), "day whose backups are archived")
	return cmd
}

// upload sends path to the configured s3 bucket, if any.
func upload(cmd *cobra.Command, bm *backups.BackupManager, path string) error {
	if bm.Config.S3BucketName == "" {
		return nil
	}
	key, err := bm.UploadToS3(cmd.Context(), path)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded to s3://%s/%s\n", bm.Config.S3BucketName, key)
	return nil
}
