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

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/bankbook/model"
)

// getAllTransactions returns every persisted transaction grouped by account
// number, each group in stored order.
func (d Datasource) getAllTransactions(ctx context.Context) (map[int64][]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, account_number, seq, amount, txn_date, kind
		FROM transactions
		ORDER BY account_number, seq
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	history := make(map[int64][]model.Transaction)
	for rows.Next() {
		var txn model.Transaction
		var number int64
		var amount, date, kind string
		if err := rows.Scan(&txn.TransactionID, &number, &txn.Sequence, &amount, &date, &kind); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s: parse amount", txn.TransactionID)
		}
		txn.Date, err = model.ParseDate(date)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s: parse date", txn.TransactionID)
		}
		txn.Kind = model.TransactionKind(kind)
		history[number] = append(history[number], txn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate transactions")
	}
	return history, nil
}

// InsertTransactions appends accepted transactions to an account's history.
func (s *sqlSession) InsertTransactions(ctx context.Context, number int64, transactions []model.Transaction) error {
	for _, txn := range transactions {
		_, err := s.tx.ExecContext(ctx, `
			INSERT INTO transactions (transaction_id, account_number, seq, amount, txn_date, kind)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, txn.TransactionID, number, txn.Sequence, txn.Amount.String(), txn.Date.Format(model.DateLayout), string(txn.Kind))
		if err != nil {
			return errors.Wrapf(err, "insert transaction %s", txn.TransactionID)
		}
	}
	return nil
}
