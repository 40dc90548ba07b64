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

package bankbook

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jerry-enebeli/bankbook/config"
	"github.com/jerry-enebeli/bankbook/database"
	"github.com/jerry-enebeli/bankbook/internal/apierror"
	redlock "github.com/jerry-enebeli/bankbook/internal/lock"
	"github.com/jerry-enebeli/bankbook/model"
)

var tracer = otel.Tracer("bankbook.ledger")

// Ledger is the entry point every driver goes through. It owns the bank,
// serializes every mutation behind one lock and makes each accepted change
// durable before reporting success.
type Ledger struct {
	mu         sync.Mutex
	bank       *model.Bank
	datasource database.IDataSource
	events     logrus.FieldLogger
	store      string

	lease     *redlock.Lease
	leaseWait time.Duration
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventLogger sends the ledger's event lines to logger. Without it they
// are discarded.
func WithEventLogger(logger logrus.FieldLogger) Option {
	return func(l *Ledger) {
		l.events = logger
	}
}

// WithLease makes the ledger take lease before loading and refuse to write
// once the lease is lost. wait bounds how long to wait for another holder.
func WithLease(lease *redlock.Lease, wait time.Duration) Option {
	return func(l *Ledger) {
		l.lease = lease
		l.leaseWait = wait
	}
}

// NewLedger loads the persisted bank from db, or starts an empty one, using
// the account policies of the current configuration.
func NewLedger(ctx context.Context, db database.IDataSource, opts ...Option) (*Ledger, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	l := &Ledger{
		bank:       model.NewBank(cnf.Ledger.AccountNumberBase, cnf.Ledger.Policies()),
		datasource: db,
		events:     discard,
		store:      storeName(cnf.DataSource),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.lease != nil {
		if err := l.lease.Acquire(ctx, l.leaseWait); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "another process is writing to this ledger", err)
		}
	}
	if err := db.LoadBank(ctx, l.bank); err != nil {
		l.releaseLease(ctx)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "could not load the ledger", err)
	}
	l.events.Debugf("Loaded from %s", l.store)
	return l, nil
}

// Close gives up the writer lease, if any, and closes the datasource.
func (l *Ledger) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLease(ctx)
	return l.datasource.Close()
}

func (l *Ledger) releaseLease(ctx context.Context) {
	if l.lease == nil {
		return
	}
	if err := l.lease.Release(ctx); err != nil {
		l.events.Warnf("Could not release writer lease: %v", err)
	}
}

func storeName(source config.DataSourceConfig) string {
	if source.Driver == "sqlite3" && source.Dns != "" {
		return source.Dns
	}
	return source.Driver
}

// writable reports whether this process may still write.
func (l *Ledger) writable() error {
	if l.lease == nil {
		return nil
	}
	if err := l.lease.Err(); err != nil {
		return apierror.NewAPIError(apierror.ErrConflict, "this process no longer holds the writer lease", err)
	}
	return nil
}

// persist runs write inside one session. When anything fails the session is
// rolled back, undo reverts the in-memory change and the cause comes back as
// an internal fault.
func (l *Ledger) persist(ctx context.Context, write func(database.Session) error, undo func()) error {
	ctx, span := tracer.Start(ctx, "Saving ledger")
	defer span.End()

	session, err := l.datasource.Begin(ctx)
	if err != nil {
		undo()
		return storageFault(span, err)
	}
	if err := write(session); err != nil {
		_ = session.Rollback()
		undo()
		return storageFault(span, err)
	}
	if err := session.Commit(); err != nil {
		_ = session.Rollback()
		undo()
		return storageFault(span, err)
	}
	l.events.Debugf("Saved to %s", l.store)
	return nil
}

func storageFault(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "rolled back")
	return apierror.NewAPIError(apierror.ErrInternalServer, "could not save the ledger", err)
}

func (l *Ledger) lookup(number int64) (*model.Account, error) {
	account, err := l.bank.GetAccount(number)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, err.Error(), err)
	}
	return account, nil
}

func invalidInput(err error) error {
	if errors.Is(err, model.ErrUnknownAccountType) || errors.Is(err, model.ErrZeroAmount) {
		return apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), err)
	}
	return err
}
