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

// Package shell is the interactive numbered-menu driver of the ledger.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jerry-enebeli/bankbook/internal/apierror"
	"github.com/jerry-enebeli/bankbook/internal/notification"
	"github.com/jerry-enebeli/bankbook/model"
)

const (
	menu = `--------------------------------
Currently selected account: %s
Enter command
1:	open account
2:	summary
3:	select account
4:	add transaction
5:	list transactions
6:	interest and fees
7:	quit
`
	prompt = ">"

	msgAmount        = "Amount?"
	msgInvalidAmount = "Please try again with a valid dollar amount."
	msgDate          = "Date? (YYYY-MM-DD)"
	msgInvalidDate   = "Please try again with a valid date in the format YYYY-MM-DD."
	msgAccountType   = "Type of account? (checking/savings)"
	msgAccountNumber = "Enter account number"
	msgNoSelection   = "This command requires that you first select an account."
	msgOverdraw      = "This transaction could not be completed due to an insufficient account balance."
	msgUnexpected    = "Sorry! Something unexpected happened. Check the logs or contact the developer for assistance."
)

// Ledger is the set of operations the menu drives.
type Ledger interface {
	OpenAccount(ctx context.Context, accountType string) (int64, error)
	ListAccounts() []model.AccountSummary
	SelectAccount(number int64) (model.AccountDetails, error)
	AddTransaction(ctx context.Context, number int64, amount decimal.Decimal, date time.Time) (model.Transaction, error)
	ListTransactions(number int64) ([]model.Transaction, error)
	AssessLatestMonth(ctx context.Context, number int64, today time.Time) ([]model.Transaction, error)
}

type Shell struct {
	ledger  Ledger
	scanner *bufio.Scanner
	out     io.Writer
	logger  logrus.FieldLogger
	notify  func(error)
	now     func() time.Time

	selected    int64
	hasSelected bool
}

type Option func(*Shell)

// WithLogger sets where unexpected faults are logged. Defaults to the
// standard logrus logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithNotifier replaces the Slack error notification.
func WithNotifier(notify func(error)) Option {
	return func(s *Shell) {
		s.notify = notify
	}
}

// WithClock sets the source of today's date, used when assessing an account
// that has no transactions yet.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		s.now = now
	}
}

func New(ledger Ledger, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		ledger:  ledger,
		scanner: bufio.NewScanner(in),
		out:     out,
		logger:  logrus.StandardLogger(),
		notify: func(err error) {
			notification.NotifyError(err)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user quits or the input ends. Rejections and
// faults are reported to the user and the loop carries on.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.printf(menu, s.current())

		choice, err := s.read()
		if err != nil {
			return s.endOfInput(err)
		}

		switch choice {
		case "1":
			err = s.openAccount(ctx)
		case "2":
			s.summary()
		case "3":
			err = s.selectAccount()
		case "4":
			err = s.addTransaction(ctx)
		case "5":
			err = s.listTransactions()
		case "6":
			err = s.assess(ctx)
		case "7":
			return nil
		default:
			s.printf("%s is not a valid choice\n", choice)
		}

		if errors.Is(err, io.EOF) {
			return s.endOfInput(err)
		}
		if err != nil {
			s.report(err)
		}
	}
}

func (s *Shell) current() string {
	if !s.hasSelected {
		return "None"
	}
	account, err := s.ledger.SelectAccount(s.selected)
	if err != nil {
		return "None"
	}
	return account.String()
}

func (s *Shell) openAccount(ctx context.Context) error {
	s.printf("%s\n", msgAccountType)
	accountType, err := s.read()
	if err != nil {
		return err
	}
	_, err = s.ledger.OpenAccount(ctx, accountType)
	return err
}

func (s *Shell) summary() {
	for _, summary := range s.ledger.ListAccounts() {
		s.printf("%s\n", summary)
	}
}

func (s *Shell) selectAccount() error {
	s.printf("%s\n", msgAccountNumber)
	raw, err := s.read()
	if err != nil {
		return err
	}
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.printf("%s is not a valid account number\n", raw)
		return nil
	}
	if _, err := s.ledger.SelectAccount(number); err != nil {
		return err
	}
	s.selected = number
	s.hasSelected = true
	return nil
}

func (s *Shell) addTransaction(ctx context.Context) error {
	if !s.hasSelected {
		s.printf("%s\n", msgNoSelection)
		return nil
	}
	amount, err := s.readAmount()
	if err != nil {
		return err
	}
	date, err := s.readDate()
	if err != nil {
		return err
	}
	_, err = s.ledger.AddTransaction(ctx, s.selected, amount, date)
	return err
}

func (s *Shell) listTransactions() error {
	if !s.hasSelected {
		s.printf("%s\n", msgNoSelection)
		return nil
	}
	txns, err := s.ledger.ListTransactions(s.selected)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		s.printf("%s\n", txn)
	}
	return nil
}

// assess applies interest and fees for the month of the account's latest
// transaction, or the current month when it has none.
func (s *Shell) assess(ctx context.Context) error {
	if !s.hasSelected {
		s.printf("%s\n", msgNoSelection)
		return nil
	}
	_, err := s.ledger.AssessLatestMonth(ctx, s.selected, s.now())
	var sequence *model.TransactionSequenceError
	if errors.As(err, &sequence) {
		s.printf("Cannot apply interest and fees again in the month of %s.\n", sequence.LatestDate.Month())
		return nil
	}
	return err
}

// readAmount asks until a nonzero decimal amount is given.
func (s *Shell) readAmount() (decimal.Decimal, error) {
	for {
		s.printf("%s\n", msgAmount)
		raw, err := s.read()
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(raw)
		if err == nil && !amount.IsZero() {
			return amount, nil
		}
		s.printf("%s\n", msgInvalidAmount)
	}
}

func (s *Shell) readDate() (time.Time, error) {
	for {
		s.printf("%s\n", msgDate)
		raw, err := s.read()
		if err != nil {
			return time.Time{}, err
		}
		date, err := model.ParseDate(raw)
		if err == nil {
			return date, nil
		}
		s.printf("%s\n", msgInvalidDate)
	}
}

// report prints the user-facing message for err. Anything that is not a
// rejection or a known input error is logged and reported as a fault.
func (s *Shell) report(err error) {
	var overdraw *model.OverdrawError
	var limit *model.TransactionLimitError
	var sequence *model.TransactionSequenceError

	switch {
	case errors.As(err, &overdraw):
		s.printf("%s\n", msgOverdraw)
	case errors.As(err, &limit):
		s.printf("This transaction could not be completed because this account already has %d transactions in this %s.\n",
			limit.Limit, limit.LimitType)
	case errors.As(err, &sequence):
		s.printf("New transactions must be from %s onward.\n", sequence.LatestDate.Format(model.DateLayout))
	case errors.Is(err, model.ErrAccountNotFound):
		s.printf("That account does not exist.\n")
	case errors.Is(err, model.ErrUnknownAccountType):
		s.printf("Please try again with checking or savings.\n")
	case apierror.CodeOf(err) == apierror.ErrInvalidInput:
		s.printf("%v\n", err)
	default:
		s.logger.WithError(err).Error("unexpected failure")
		s.notify(err)
		s.printf("%s\n", msgUnexpected)
	}
}

func (s *Shell) read() (string, error) {
	s.printf("%s", prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

func (s *Shell) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		s.printf("\n")
		return nil
	}
	return err
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
