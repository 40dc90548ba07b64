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

package traces

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.elastic.co/apm/module/apmlogrus/v2"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"

	"github.com/jerry-enebeli/bankbook/config"
)

const instrumentationName = "github.com/jerry-enebeli/bankbook"

// LogHook forwards logrus entries to an OpenTelemetry logger.
type LogHook struct {
	logger log.Logger
}

func NewLogHook(logger log.Logger) *LogHook {
	return &LogHook{logger: logger}
}

func (h *LogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *LogHook) Fire(entry *logrus.Entry) error {
	var record log.Record
	record.SetTimestamp(entry.Time)
	record.SetObservedTimestamp(entry.Time)
	record.SetBody(log.StringValue(entry.Message))
	record.SetSeverity(severity(entry.Level))
	record.SetSeverityText(entry.Level.String())
	for key, value := range entry.Data {
		record.AddAttributes(log.String(key, fmt.Sprint(value)))
	}

	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}
	h.logger.Emit(ctx, record)
	return nil
}

func severity(level logrus.Level) log.Severity {
	switch level {
	case logrus.TraceLevel:
		return log.SeverityTrace
	case logrus.DebugLevel:
		return log.SeverityDebug
	case logrus.InfoLevel:
		return log.SeverityInfo
	case logrus.WarnLevel:
		return log.SeverityWarn
	case logrus.ErrorLevel:
		return log.SeverityError
	default:
		return log.SeverityFatal
	}
}

// LogHooks returns the logrus hooks conf asks for. Call it after
// SetupOTelSDK so the OpenTelemetry hook picks up the installed provider.
func LogHooks(conf config.TracingConfig) []logrus.Hook {
	var hooks []logrus.Hook
	if conf.StdoutLogs {
		hooks = append(hooks, NewLogHook(global.GetLoggerProvider().Logger(instrumentationName)))
	}
	if conf.ElasticAPM {
		// reports error entries to the APM server named by ELASTIC_APM_SERVER_URL
		hooks = append(hooks, &apmlogrus.Hook{})
	}
	return hooks
}
