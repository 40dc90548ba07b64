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
	"time"

	"github.com/jerry-enebeli/bankbook/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	bank // Interface for loading persisted ledger state
	// Begin opens a persistence session; nothing written through it is
	// durable until Commit.
	Begin(ctx context.Context) (Session, error)
	Close() error
}

// bank defines methods for restoring a bank from storage.
type bank interface {
	LoadBank(ctx context.Context, bank *model.Bank) error // Restores every account and its history into an empty bank
}

// Session is one unit of durable work.
type Session interface {
	InsertAccount(ctx context.Context, account *model.Account) error                              // Records a newly opened account
	InsertTransactions(ctx context.Context, number int64, transactions []model.Transaction) error // Appends accepted transactions to an account
	MarkAssessed(ctx context.Context, number int64, on time.Time) error                           // Stores the date of the latest assessment
	Commit() error
	Rollback() error
}
