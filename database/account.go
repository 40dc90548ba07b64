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
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/jerry-enebeli/bankbook/model"
)

type accountRow struct {
	number       int64
	accountType  model.AccountType
	lastAssessed time.Time
}

// LoadBank restores every persisted account, in account number order, into
// an empty bank. An empty database leaves the bank empty.
func (d Datasource) LoadBank(ctx context.Context, bank *model.Bank) error {
	accounts, err := d.getAllAccounts(ctx)
	if err != nil {
		return err
	}
	history, err := d.getAllTransactions(ctx)
	if err != nil {
		return err
	}

	for _, row := range accounts {
		_, err := bank.RestoreAccount(row.number, row.accountType, history[row.number], row.lastAssessed)
		if err != nil {
			return errors.Wrapf(err, "restore account %d", row.number)
		}
		delete(history, row.number)
	}
	if len(history) > 0 {
		return errors.Errorf("transactions reference %d unknown accounts", len(history))
	}
	return nil
}

func (d Datasource) getAllAccounts(ctx context.Context) ([]accountRow, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT number, account_type, last_assessed_on
		FROM accounts
		ORDER BY number
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query accounts")
	}
	defer rows.Close()

	var accounts []accountRow
	for rows.Next() {
		var row accountRow
		var accountType string
		var lastAssessed sql.NullString
		if err := rows.Scan(&row.number, &accountType, &lastAssessed); err != nil {
			return nil, errors.Wrap(err, "scan account")
		}
		row.accountType = model.AccountType(accountType)
		if lastAssessed.Valid && lastAssessed.String != "" {
			row.lastAssessed, err = model.ParseDate(lastAssessed.String)
			if err != nil {
				return nil, errors.Wrapf(err, "account %d: parse last_assessed_on", row.number)
			}
		}
		accounts = append(accounts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate accounts")
	}
	return accounts, nil
}

// InsertAccount records a newly opened account.
func (s *sqlSession) InsertAccount(ctx context.Context, account *model.Account) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO accounts (number, account_type)
		VALUES ($1, $2)
	`, account.Number, string(account.Type))
	return errors.Wrapf(err, "insert account %d", account.Number)
}

// MarkAssessed stores the date of the account's latest assessment.
func (s *sqlSession) MarkAssessed(ctx context.Context, number int64, on time.Time) error {
	result, err := s.tx.ExecContext(ctx, `
		UPDATE accounts SET last_assessed_on = $1
		WHERE number = $2
	`, on.Format(model.DateLayout), number)
	if err != nil {
		return errors.Wrapf(err, "mark account %d assessed", number)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "mark account %d assessed", number)
	}
	if affected != 1 {
		return errors.Errorf("mark account %d assessed: %d rows updated", number, affected)
	}
	return nil
}
