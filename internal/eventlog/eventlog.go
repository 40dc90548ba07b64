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

// Package eventlog writes the ledger's append-only event file, one
// "timestamp|LEVEL|message" line per event.
package eventlog

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jerry-enebeli/bankbook/config"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Formatter renders an entry as "2006-01-02 15:04:05|DEBUG|message".
// Fields are appended as key=value pairs after the message.
type Formatter struct{}

func (Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(entry.Time.Format(TimestampLayout))
	b.WriteByte('|')
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteByte('|')
	b.WriteString(strings.ReplaceAll(entry.Message, "\n", " "))
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(fmt.Sprint(entry.Data[key]), "\n", " "))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Open appends events to the configured file, creating it when missing.
// The returned close function releases the file.
func Open(cnf config.EventLogConfig) (*logrus.Logger, func() error, error) {
	file, err := os.OpenFile(cnf.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open event log %s", cnf.File)
	}

	level := logrus.DebugLevel
	if cnf.Level != "" {
		level, err = logrus.ParseLevel(cnf.Level)
		if err != nil {
			_ = file.Close()
			return nil, nil, errors.Wrap(err, "event log level")
		}
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetFormatter(Formatter{})
	logger.SetLevel(level)
	return logger, file.Close, nil
}
