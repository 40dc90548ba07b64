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
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerry-enebeli/bankbook/model"
)

func TestInsertTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	account, err := model.NewBank(1, testPolicies()).AddAccount(model.Checking)
	require.NoError(t, err)
	first, err := account.AddTransaction(decimal.RequireFromString("100.00"), model.NewDate(2023, 1, 1))
	require.NoError(t, err)
	second, err := account.AddTransaction(decimal.RequireFromString("-20.5"), model.NewDate(2023, 1, 3))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(first.TransactionID, int64(1), int64(1), "100", "2023-01-01", "user").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(second.TransactionID, int64(1), int64(2), "-20.5", "2023-01-03", "user").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	session, err := ds.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.InsertTransactions(context.Background(), 1, []model.Transaction{first, second}))
	require.NoError(t, session.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTransactions_StopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	txns := []model.Transaction{
		{TransactionID: "txn_a", Amount: decimal.NewFromInt(1), Date: model.NewDate(2023, 1, 1), Sequence: 1, Kind: model.KindInterest},
		{TransactionID: "txn_b", Amount: decimal.NewFromInt(-5), Date: model.NewDate(2023, 1, 1), Sequence: 2, Kind: model.KindFee},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs("txn_a", int64(3), int64(1), "1", "2023-01-01", "interest").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	session, err := ds.Begin(context.Background())
	require.NoError(t, err)
	err = session.InsertTransactions(context.Background(), 3, txns)
	assert.ErrorContains(t, err, "insert transaction txn_a")
	assert.NoError(t, session.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBank_BadAmount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"number", "account_type", "last_assessed_on"}).AddRow(1, "checking", nil))
	mock.ExpectQuery("SELECT transaction_id, account_number, seq, amount, txn_date, kind FROM transactions").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_number", "seq", "amount", "txn_date", "kind"}).
			AddRow("txn_1", 1, 1, "ten dollars", "2023-01-01", "user"))

	err = ds.LoadBank(context.Background(), model.NewBank(1, testPolicies()))
	assert.ErrorContains(t, err, "parse amount")
}
