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

package eventlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerry-enebeli/bankbook/config"
)

func TestFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC),
		Level:   logrus.DebugLevel,
		Message: "Saved to bank.db",
	}

	line, err := Formatter{}.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-02 15:04:05|DEBUG|Saved to bank.db\n", string(line))
}

func TestFormatter_FieldsAndNewlines(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC),
		Level:   logrus.ErrorLevel,
		Message: "commit failed\nretrying",
		Data:    logrus.Fields{"error": errors.New("disk full"), "account": 3},
	}

	line, err := Formatter{}.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-02 15:04:05|ERROR|commit failed retrying account=3 error=disk full\n", string(line))
}

func TestOpen_AppendsToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bank.log")
	require.NoError(t, os.WriteFile(file, []byte("earlier line\n"), 0o644))

	logger, closeLog, err := Open(config.EventLogConfig{File: file})
	require.NoError(t, err)
	logger.Debug("Loaded from bank.db")
	logger.Debug("Triggered interest and fees")
	require.NoError(t, closeLog())

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "earlier line", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "|DEBUG|Loaded from bank.db"))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\|DEBUG\|Triggered interest and fees$`, lines[2])
}

func TestOpen_Level(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bank.log")

	logger, closeLog, err := Open(config.EventLogConfig{File: file, Level: "info"})
	require.NoError(t, err)
	logger.Debug("dropped")
	logger.Info("kept")
	require.NoError(t, closeLog())

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "|INFO|kept")

	_, _, err = Open(config.EventLogConfig{File: file, Level: "loud"})
	assert.Error(t, err)
}

func TestOpen_BadPath(t *testing.T) {
	_, _, err := Open(config.EventLogConfig{File: filepath.Join(t.TempDir(), "missing", "bank.log")})
	assert.ErrorContains(t, err, "open event log")
}
