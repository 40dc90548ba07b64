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
package mocks

import (
	"context"
	"time"

	"github.com/jerry-enebeli/bankbook/database"
	"github.com/jerry-enebeli/bankbook/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) LoadBank(ctx context.Context, bank *model.Bank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockDataSource) Begin(ctx context.Context) (database.Session, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(database.Session)
	return session, args.Error(1)
}

func (m *MockDataSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSession is a mock implementation of the Session interface
type MockSession struct {
	mock.Mock
}

func (m *MockSession) InsertAccount(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSession) InsertTransactions(ctx context.Context, number int64, transactions []model.Transaction) error {
	args := m.Called(ctx, number, transactions)
	return args.Error(0)
}

func (m *MockSession) MarkAssessed(ctx context.Context, number int64, on time.Time) error {
	args := m.Called(ctx, number, on)
	return args.Error(0)
}

func (m *MockSession) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSession) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
