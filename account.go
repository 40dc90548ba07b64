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

	"github.com/jerry-enebeli/bankbook/database"
	"github.com/jerry-enebeli/bankbook/model"
)

// OpenAccount opens an account of the named type and returns its number.
// The name is matched case-insensitively.
func (l *Ledger) OpenAccount(ctx context.Context, accountType string) (int64, error) {
	t, err := model.ParseAccountType(accountType)
	if err != nil {
		return 0, invalidInput(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writable(); err != nil {
		return 0, err
	}

	cp := l.bank.Checkpoint()
	account, err := l.bank.AddAccount(t)
	if err != nil {
		return 0, invalidInput(err)
	}
	err = l.persist(ctx, func(session database.Session) error {
		return session.InsertAccount(ctx, account)
	}, func() {
		l.bank.Restore(cp)
	})
	if err != nil {
		return 0, err
	}
	l.events.Debugf("Opened %s", account.Summary())
	return account.Number, nil
}

// ListAccounts summarizes every account in the order it was opened.
func (l *Ledger) ListAccounts() []model.AccountSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bank.ShowAccounts()
}

// SelectAccount returns a copy of the state of the account with the given
// number, taken under the ledger lock.
func (l *Ledger) SelectAccount(number int64) (model.AccountDetails, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, err := l.lookup(number)
	if err != nil {
		return model.AccountDetails{}, err
	}
	return account.Details(), nil
}
