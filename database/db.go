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
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/jerry-enebeli/bankbook/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

// connectRetries bounds how often a failing ping is retried at startup.
const connectRetries = 5

type Datasource struct {
	Conn   *sql.DB
	Driver string
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Driver: configuration.DataSource.Driver}
	})
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, errors.New("database connection was not initialized")
	}
	return instance, nil
}

// ConnectDB opens the configured database and brings its schema up to date.
func ConnectDB(source config.DataSourceConfig) (*sql.DB, error) {
	db, err := OpenDB(source)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(db, source.Driver, migrate.Up); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the configured database and waits for it to answer.
func OpenDB(source config.DataSourceConfig) (*sql.DB, error) {
	db, err := sql.Open(source.Driver, source.Dns)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", source.Driver)
	}
	if source.Driver == "sqlite3" {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries)
	err = backoff.RetryNotify(ping, policy, func(err error, wait time.Duration) {
		log.Printf("database not ready, retrying in %s: %v", wait, err)
	})
	if err != nil {
		log.Printf("database Connection error: %v", err)
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

func (d Datasource) Close() error {
	return d.Conn.Close()
}
