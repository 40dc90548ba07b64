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
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jerry-enebeli/bankbook"
	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/database"
	"github.com/jerry-enebeli/bankbook/internal/eventlog"
	redlock "github.com/jerry-enebeli/bankbook/internal/lock"
	"github.com/jerry-enebeli/bankbook/internal/notification"
	redis_db "github.com/jerry-enebeli/bankbook/internal/redis-db"
	"github.com/jerry-enebeli/bankbook/model"
)

const (
	writerLockKey    = "bankbook:writer"
	redisPingRetries = 3
)

// Bankbook represents the CLI application, encapsulating the root Cobra command.
type Bankbook struct {
	cmd *cobra.Command
}

// bankbookInstance holds what a command runs against once preRun has set it up.
type bankbookInstance struct {
	ledger *bankbook.Ledger
	cnf    *config.Configuration
	events *logrus.Logger

	closers []func() error
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func loadConfig(configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			log.Fatal("error loading config ", err)
		}
		return nil
	}
}

// preRun loads the configuration and opens the ledger every command runs
// against.
func preRun(app *bankbookInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(configFile)(cmd, args); err != nil {
			return err
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf

		if err := app.setupLedger(cmd.Context()); err != nil {
			notification.NotifyError(err)
			app.close()
			log.Fatal(err)
		}
		return nil
	}
}

func postRun(app *bankbookInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}
}

// setupLedger opens the event log and the datasource, takes the writer
// lease when redis is configured and loads the ledger.
func (app *bankbookInstance) setupLedger(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	events, closeEvents, err := eventlog.Open(app.cnf.EventLog)
	if err != nil {
		return err
	}
	app.events = events
	app.closers = append(app.closers, closeEvents)

	db, err := database.NewDataSource(app.cnf)
	if err != nil {
		return fmt.Errorf("error getting datasource: %v", err)
	}

	opts := []bankbook.Option{bankbook.WithEventLogger(events)}
	if app.cnf.Redis.Dns != "" {
		lease, err := app.setupLease(ctx)
		if err != nil {
			_ = db.Close()
			return err
		}
		ttl := time.Duration(app.cnf.Redis.LockTTLSecs) * time.Second
		opts = append(opts, bankbook.WithLease(lease, ttl))
	}

	ledger, err := bankbook.NewLedger(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("error opening ledger: %v", err)
	}
	app.ledger = ledger
	return nil
}

func (app *bankbookInstance) setupLease(ctx context.Context) (*redlock.Lease, error) {
	client, err := redis_db.NewRedisClient(app.cnf.Redis.Dns, app.cnf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, client.Close)
	if err := client.Ping(ctx, redisPingRetries); err != nil {
		return nil, err
	}

	ttl := time.Duration(app.cnf.Redis.LockTTLSecs) * time.Second
	writer := redlock.NewWriterLock(client.Client(), writerLockKey, model.GenerateUUIDWithSuffix("lease"))
	return redlock.NewLease(writer, ttl), nil
}

// close releases everything preRun opened, ledger first.
func (app *bankbookInstance) close() {
	if app.ledger != nil {
		if err := app.ledger.Close(context.Background()); err != nil {
			logrus.Error(err)
		}
		app.ledger = nil
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			logrus.Error(err)
		}
	}
	app.closers = nil
}

// NewCLI creates the command-line interface of the ledger.
func NewCLI() *Bankbook {
	var configFile string
	b := &bankbookInstance{}

	var rootCmd = &cobra.Command{
		Use:   "bankbook",
		Short: "Personal banking ledger",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./bankbook.json", "Configuration file for bankbook")

	rootCmd.PersistentPreRunE = preRun(b, &configFile)
	rootCmd.PersistentPostRunE = postRun(b)

	rootCmd.AddCommand(shellCommands(b))
	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(migrateCommands(&configFile))
	rootCmd.AddCommand(configCommands(&configFile))
	rootCmd.AddCommand(backupCommands(&configFile))

	return &Bankbook{cmd: rootCmd}
}

func (w Bankbook) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
