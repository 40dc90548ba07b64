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
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/bankbook/database"
	"github.com/jerry-enebeli/bankbook/model"
)

// AddTransaction records a deposit (positive amount) or withdrawal (negative
// amount) on the given date. Validation rejections come back as the
// account's typed errors and leave nothing changed.
func (l *Ledger) AddTransaction(ctx context.Context, number int64, amount decimal.Decimal, date time.Time) (model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writable(); err != nil {
		return model.Transaction{}, err
	}

	account, err := l.lookup(number)
	if err != nil {
		return model.Transaction{}, err
	}
	cp := account.Checkpoint()
	txn, err := account.AddTransaction(amount, date)
	if err != nil {
		return model.Transaction{}, invalidInput(err)
	}
	err = l.persist(ctx, func(session database.Session) error {
		return session.InsertTransactions(ctx, number, []model.Transaction{txn})
	}, func() {
		account.Restore(cp)
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// ListTransactions returns a snapshot of the account's history in the order
// it was accepted.
func (l *Ledger) ListTransactions(number int64) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, err := l.lookup(number)
	if err != nil {
		return nil, err
	}
	return slices.Collect(account.Transactions()), nil
}

// AssessInterestAndFees posts the account's interest and fee for the month
// containing asOf and returns the entries posted. A month can be assessed
// once; a second attempt is rejected with a sequence error.
func (l *Ledger) AssessInterestAndFees(ctx context.Context, number int64, asOf time.Time) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writable(); err != nil {
		return nil, err
	}

	account, err := l.lookup(number)
	if err != nil {
		return nil, err
	}
	return l.assess(ctx, account, asOf)
}

// AssessLatestMonth assesses the month of the account's latest transaction,
// or the month of today when the account has none.
func (l *Ledger) AssessLatestMonth(ctx context.Context, number int64, today time.Time) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writable(); err != nil {
		return nil, err
	}

	account, err := l.lookup(number)
	if err != nil {
		return nil, err
	}
	asOf := account.LatestDate()
	if asOf.IsZero() {
		asOf = model.DateOf(today)
	}
	return l.assess(ctx, account, asOf)
}

func (l *Ledger) assess(ctx context.Context, account *model.Account, asOf time.Time) ([]model.Transaction, error) {
	cp := account.Checkpoint()
	posted, err := account.AssessInterestAndFees(asOf)
	if err != nil {
		return nil, err
	}
	err = l.persist(ctx, func(session database.Session) error {
		if len(posted) > 0 {
			if err := session.InsertTransactions(ctx, account.Number, posted); err != nil {
				return err
			}
		}
		return session.MarkAssessed(ctx, account.Number, account.LastAssessed())
	}, func() {
		account.Restore(cp)
	})
	if err != nil {
		return nil, err
	}
	l.events.Debug("Triggered interest and fees")
	return posted, nil
}
