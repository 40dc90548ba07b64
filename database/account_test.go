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

func testPolicies() model.Policies {
	return model.Policies{
		model.Checking: {Precision: 2},
		model.Savings:  {TransactionLimit: 5, Precision: 2},
	}
}

func TestLoadBank_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db, Driver: "sqlite3"}

	accountRows := sqlmock.NewRows([]string{"number", "account_type", "last_assessed_on"}).
		AddRow(1, "checking", nil).
		AddRow(2, "savings", "2023-04-30")
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts ORDER BY number").
		WillReturnRows(accountRows)

	txnRows := sqlmock.NewRows([]string{"transaction_id", "account_number", "seq", "amount", "txn_date", "kind"}).
		AddRow("txn_1", 1, 1, "100.00", "2023-01-01", "user").
		AddRow("txn_2", 1, 2, "-50.00", "2023-01-02", "user").
		AddRow("txn_3", 2, 1, "10", "2023-04-02", "user").
		AddRow("txn_4", 2, 2, "0.10", "2023-04-30", "interest")
	mock.ExpectQuery("SELECT transaction_id, account_number, seq, amount, txn_date, kind FROM transactions ORDER BY account_number, seq").
		WillReturnRows(txnRows)

	bank := model.NewBank(1, testPolicies())
	err = ds.LoadBank(context.Background(), bank)
	require.NoError(t, err)

	summaries := bank.ShowAccounts()
	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, summaries[1].Balance.Equal(decimal.RequireFromString("10.10")))

	savings, err := bank.GetAccount(2)
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2023, 4, 30), savings.LastAssessed())

	next, err := bank.AddAccount(model.Checking)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.Number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBank_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"number", "account_type", "last_assessed_on"}))
	mock.ExpectQuery("SELECT transaction_id, account_number, seq, amount, txn_date, kind FROM transactions").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_number", "seq", "amount", "txn_date", "kind"}))

	bank := model.NewBank(1, testPolicies())
	assert.NoError(t, ds.LoadBank(context.Background(), bank))
	assert.Empty(t, bank.ShowAccounts())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBank_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts").
		WillReturnError(errors.New("disk I/O error"))

	err = ds.LoadBank(context.Background(), model.NewBank(1, testPolicies()))
	assert.ErrorContains(t, err, "query accounts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadBank_UnknownAccountType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"number", "account_type", "last_assessed_on"}).AddRow(1, "brokerage", nil))
	mock.ExpectQuery("SELECT transaction_id, account_number, seq, amount, txn_date, kind FROM transactions").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_number", "seq", "amount", "txn_date", "kind"}))

	err = ds.LoadBank(context.Background(), model.NewBank(1, testPolicies()))
	assert.True(t, errors.Is(err, model.ErrUnknownAccountType))
}

func TestLoadBank_OrphanTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectQuery("SELECT number, account_type, last_assessed_on FROM accounts").
		WillReturnRows(sqlmock.NewRows([]string{"number", "account_type", "last_assessed_on"}))
	mock.ExpectQuery("SELECT transaction_id, account_number, seq, amount, txn_date, kind FROM transactions").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_number", "seq", "amount", "txn_date", "kind"}).
			AddRow("txn_1", 9, 1, "1", "2023-01-01", "user"))

	err = ds.LoadBank(context.Background(), model.NewBank(1, testPolicies()))
	assert.ErrorContains(t, err, "unknown accounts")
}

func TestInsertAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	account, err := model.NewBank(10, testPolicies()).AddAccount(model.Savings)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(int64(10), "savings").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	session, err := ds.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.InsertAccount(context.Background(), account))
	require.NoError(t, session.Commit())
	assert.NoError(t, session.Rollback(), "rollback after commit is a no-op")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAccount_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	account, err := model.NewBank(1, testPolicies()).AddAccount(model.Checking)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(int64(1), "checking").
		WillReturnError(errors.New("UNIQUE constraint failed: accounts.number"))
	mock.ExpectRollback()

	session, err := ds.Begin(context.Background())
	require.NoError(t, err)
	err = session.InsertAccount(context.Background(), account)
	assert.ErrorContains(t, err, "insert account 1")
	assert.NoError(t, session.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAssessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET last_assessed_on").
		WithArgs("2023-02-28", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE accounts SET last_assessed_on").
		WithArgs("2023-02-28", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	session, err := ds.Begin(context.Background())
	require.NoError(t, err)
	assert.NoError(t, session.MarkAssessed(context.Background(), 4, model.NewDate(2023, 2, 28)))
	assert.ErrorContains(t, session.MarkAssessed(context.Background(), 5, model.NewDate(2023, 2, 28)), "0 rows updated")
	assert.NoError(t, session.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBegin_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	_, err = ds.Begin(context.Background())
	assert.ErrorContains(t, err, "begin session")
}
