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

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/bankbook/model"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT          = "5001"
	DEFAULT_DRIVER        = "sqlite3"
	DEFAULT_DATABASE      = "bank.db"
	DEFAULT_EVENT_LOG     = "bank.log"
	DEFAULT_BACKUP_DIR    = "backups"
	DEFAULT_ACCOUNT_BASE  = 1
	DEFAULT_PRECISION     = 2
	DEFAULT_LOCK_TTL_SECS = 30

	DEFAULT_RATE_LIMIT_CLEANUP_SECS = 10800
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port      string `json:"port" envconfig:"BANKBOOK_SERVER_PORT"`
	Secure    bool   `json:"secure" envconfig:"BANKBOOK_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"BANKBOOK_SERVER_SECRET_KEY"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"BANKBOOK_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"BANKBOOK_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"BANKBOOK_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type DataSourceConfig struct {
	Driver string `json:"driver" envconfig:"BANKBOOK_DATA_SOURCE_DRIVER"`
	Dns    string `json:"dns" envconfig:"BANKBOOK_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"BANKBOOK_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"BANKBOOK_REDIS_SKIP_TLS_VERIFY"`
	LockTTLSecs   int    `json:"lock_ttl_secs" envconfig:"BANKBOOK_REDIS_LOCK_TTL_SECS"`
}

type EventLogConfig struct {
	File  string `json:"file" envconfig:"BANKBOOK_EVENT_LOG_FILE"`
	Level string `json:"level" envconfig:"BANKBOOK_EVENT_LOG_LEVEL"`
}

// TracingConfig selects where request spans and forwarded logs go. Spans are
// exported over OTLP/HTTP; an empty endpoint falls back to the
// OTEL_EXPORTER_OTLP_ENDPOINT environment variable.
type TracingConfig struct {
	Enabled     bool   `json:"enabled" envconfig:"BANKBOOK_TRACING_ENABLED"`
	ServiceName string `json:"service_name" envconfig:"BANKBOOK_TRACING_SERVICE_NAME"`
	Endpoint    string `json:"endpoint" envconfig:"BANKBOOK_TRACING_ENDPOINT"`
	Insecure    bool   `json:"insecure" envconfig:"BANKBOOK_TRACING_INSECURE"`
	StdoutLogs  bool   `json:"stdout_logs" envconfig:"BANKBOOK_TRACING_STDOUT_LOGS"`
	ElasticAPM  bool   `json:"elastic_apm" envconfig:"BANKBOOK_TRACING_ELASTIC_APM"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"BANKBOOK_SLACK_WEBHOOK_URL"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

// AccountPolicyConfig carries the rule constants of one account variant.
type AccountPolicyConfig struct {
	TransactionLimit   int                  `json:"transaction_limit"`
	OverdraftAllowance decimal.Decimal      `json:"overdraft_allowance"`
	InterestTiers      []model.InterestTier `json:"interest_tiers" ignored:"true"`
	MonthlyFee         decimal.Decimal      `json:"monthly_fee"`
	FeeBelowBalance    *decimal.Decimal     `json:"fee_below_balance,omitempty" ignored:"true"`
}

type LedgerConfig struct {
	AccountNumberBase int64               `json:"account_number_base" envconfig:"BANKBOOK_ACCOUNT_NUMBER_BASE"`
	CurrencyPrecision int32               `json:"currency_precision" envconfig:"BANKBOOK_CURRENCY_PRECISION"`
	Checking          AccountPolicyConfig `json:"checking"`
	Savings           AccountPolicyConfig `json:"savings"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"BANKBOOK_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	EventLog     EventLogConfig   `json:"event_log"`
	Notification Notification     `json:"notification"`
	Tracing      TracingConfig    `json:"tracing"`
	Ledger       LedgerConfig     `json:"ledger"`
	BackupDir    string           `json:"backup_dir" envconfig:"BANKBOOK_BACKUP_DIR"`

	AwsAccessKeyId     string `json:"aws_access_key_id" envconfig:"BANKBOOK_AWS_ACCESS_KEY_ID"`
	AwsSecretAccessKey string `json:"aws_secret_access_key" envconfig:"BANKBOOK_AWS_SECRET_ACCESS_KEY"`
	S3Endpoint         string `json:"s3_endpoint" envconfig:"BANKBOOK_S3_ENDPOINT"`
	S3BucketName       string `json:"s3_bucket_name" envconfig:"BANKBOOK_S3_BUCKET_NAME"`
	S3Region           string `json:"s3_region" envconfig:"BANKBOOK_S3_REGION"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("bankbook", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called bankbook.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Bankbook"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Driver = strings.ToLower(strings.TrimSpace(cnf.DataSource.Driver))
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.DataSource.Driver == "" {
		cnf.DataSource.Driver = DEFAULT_DRIVER
	}
	if cnf.DataSource.Driver != "sqlite3" && cnf.DataSource.Driver != "postgres" {
		return fmt.Errorf("unsupported data source driver %q", cnf.DataSource.Driver)
	}

	if cnf.DataSource.Dns == "" {
		if cnf.DataSource.Driver == "postgres" {
			log.Println("Error: Data source DNS is empty. It's a required field for postgres.")
			return errors.New("data source DNS is required")
		}
		cnf.DataSource.Dns = DEFAULT_DATABASE
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
	}
	cnf.Server.SecretKey = strings.TrimSpace(cnf.Server.SecretKey)
	if cnf.Server.Secure && cnf.Server.SecretKey == "" {
		return errors.New("server secret key is required when secure is enabled")
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := DEFAULT_RATE_LIMIT_CLEANUP_SECS
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	cnf.Tracing.ServiceName = strings.TrimSpace(cnf.Tracing.ServiceName)
	if cnf.Tracing.ServiceName == "" {
		cnf.Tracing.ServiceName = cnf.ProjectName
	}

	cnf.S3BucketName = strings.TrimSpace(cnf.S3BucketName)
	if cnf.S3BucketName != "" && cnf.S3Region == "" {
		return errors.New("s3 region is required when an s3 bucket is configured")
	}

	cnf.BackupDir = strings.TrimSpace(cnf.BackupDir)
	if cnf.BackupDir == "" {
		cnf.BackupDir = DEFAULT_BACKUP_DIR
	}

	if cnf.EventLog.File == "" {
		cnf.EventLog.File = DEFAULT_EVENT_LOG
	}
	if cnf.EventLog.Level == "" {
		cnf.EventLog.Level = "debug"
	}
	if _, err := logrus.ParseLevel(cnf.EventLog.Level); err != nil {
		return err
	}

	if cnf.Redis.LockTTLSecs <= 0 {
		cnf.Redis.LockTTLSecs = DEFAULT_LOCK_TTL_SECS
	}

	if cnf.Ledger.AccountNumberBase <= 0 {
		cnf.Ledger.AccountNumberBase = DEFAULT_ACCOUNT_BASE
	}
	if cnf.Ledger.CurrencyPrecision <= 0 {
		cnf.Ledger.CurrencyPrecision = DEFAULT_PRECISION
	}

	if err := cnf.Ledger.Checking.Validate(); err != nil {
		return fmt.Errorf("checking policy: %w", err)
	}
	if err := cnf.Ledger.Savings.Validate(); err != nil {
		return fmt.Errorf("savings policy: %w", err)
	}

	return nil
}

func nonNegative(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if amount.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validTiers(value interface{}) error {
	tiers, ok := value.([]model.InterestTier)
	if !ok {
		return errors.New("must be a list of interest tiers")
	}
	for i, tier := range tiers {
		if tier.MinBalance.IsNegative() || tier.MonthlyRate.IsNegative() {
			return fmt.Errorf("tier %d: min_balance and monthly_rate must not be negative", i)
		}
	}
	return nil
}

// Validate checks the rule constants of a variant.
func (p AccountPolicyConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TransactionLimit, validation.Min(0)),
		validation.Field(&p.OverdraftAllowance, validation.By(nonNegative)),
		validation.Field(&p.InterestTiers, validation.By(validTiers)),
	)
}

// Policy builds the model policy for accountType from the configuration.
func (l LedgerConfig) Policy(accountType model.AccountType) model.Policy {
	p := l.Savings
	if accountType == model.Checking {
		p = l.Checking
	}
	return model.Policy{
		Type:               accountType,
		TransactionLimit:   p.TransactionLimit,
		LimitPeriod:        model.DefaultPeriod(accountType),
		OverdraftAllowance: p.OverdraftAllowance,
		InterestTiers:      p.InterestTiers,
		MonthlyFee:         p.MonthlyFee,
		FeeBelowBalance:    p.FeeBelowBalance,
		Precision:          l.CurrencyPrecision,
	}
}

// Policies returns the policy of every supported account type.
func (l LedgerConfig) Policies() model.Policies {
	return model.Policies{
		model.Checking: l.Policy(model.Checking),
		model.Savings:  l.Policy(model.Savings),
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
