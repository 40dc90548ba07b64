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

	"github.com/pkg/errors"
)

// sqlSession is a Session backed by a database transaction.
type sqlSession struct {
	tx *sql.Tx
}

// Begin starts a database transaction for one unit of ledger work.
func (d Datasource) Begin(ctx context.Context) (Session, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin session")
	}
	return &sqlSession{tx: tx}, nil
}

func (s *sqlSession) Commit() error {
	return errors.Wrap(s.tx.Commit(), "commit session")
}

// Rollback discards the session. Rolling back a finished session is a no-op.
func (s *sqlSession) Rollback() error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return errors.Wrap(err, "rollback session")
}
