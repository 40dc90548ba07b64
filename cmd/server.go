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
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jerry-enebeli/bankbook/api"
	"github.com/jerry-enebeli/bankbook/config"
	trace "github.com/jerry-enebeli/bankbook/internal/traces"
)

const shutdownTimeout = 10 * time.Second

func initializeRouter(b *bankbookInstance) (*gin.Engine, error) {
	a := api.NewAPI(b.ledger)
	if a == nil {
		return nil, errors.New("api could not read the configuration")
	}
	return a.Router(), nil
}

// initializeTracing installs the OTel SDK and attaches the configured log
// hooks to the standard logger and the ledger's event logger.
func initializeTracing(ctx context.Context, b *bankbookInstance) (func(context.Context) error, error) {
	conf := b.cnf.Tracing
	if !conf.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	shutdown, err := trace.SetupOTelSDK(ctx, conf.ServiceName, conf)
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	for _, hook := range trace.LogHooks(conf) {
		logrus.AddHook(hook)
		if b.events != nil {
			b.events.AddHook(hook)
		}
	}
	return shutdown, nil
}

// startServer serves router until ctx is cancelled, then drains in-flight
// requests.
func startServer(ctx context.Context, router *gin.Engine, cfg config.ServerConfig) error {
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Starting server on http://localhost:%s", cfg.Port)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Println("Shutting down server")
	return server.Shutdown(shutdownCtx)
}

// serverCommands returns the command that serves the ledger over HTTP.
func serverCommands(b *bankbookInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start bankbook server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := initializeTracing(ctx, b)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					logrus.Error(err)
				}
			}()

			router, err := initializeRouter(b)
			if err != nil {
				log.Fatal(err)
			}

			if err := startServer(ctx, router, b.cnf.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
