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

package model

import (
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// Account owns an append-only history of transactions and guards every
// change to it with the rules of its policy.
//
// Every method either commits its whole effect or returns an error and
// leaves the account untouched.
type Account struct {
	Number int64
	Type   AccountType

	policy       Policy
	balance      decimal.Decimal
	transactions []Transaction
	latest       time.Time
	lastAssessed time.Time
}

// AccountSummary is a read-only view of an account used for listings.
type AccountSummary struct {
	Number  int64           `json:"account_number"`
	Type    AccountType     `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountDetails is a copy of an account's state taken at one point in
// time. It stays valid after the account changes.
type AccountDetails struct {
	AccountSummary
	LatestDate   time.Time `json:"latest_date"`
	LastAssessed time.Time `json:"last_assessed"`
}

func (s AccountSummary) String() string {
	return fmt.Sprintf("%s#%09d,\tbalance: $%s", s.Type.Title(), s.Number, s.Balance.StringFixed(2))
}

// Checkpoint captures enough account state to undo later mutations.
type Checkpoint struct {
	balance      decimal.Decimal
	count        int
	latest       time.Time
	lastAssessed time.Time
}

func newAccount(number int64, policy Policy) *Account {
	return &Account{
		Number:  number,
		Type:    policy.Type,
		policy:  policy,
		balance: decimal.Zero,
	}
}

func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// LatestDate is the date of the most recently accepted transaction, zero
// when the account has none.
func (a *Account) LatestDate() time.Time {
	return a.latest
}

// LastAssessed is the date interest and fees were last posted, zero when
// the account was never assessed.
func (a *Account) LastAssessed() time.Time {
	return a.lastAssessed
}

func (a *Account) Policy() Policy {
	return a.policy
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{Number: a.Number, Type: a.Type, Balance: a.balance}
}

func (a *Account) Details() AccountDetails {
	return AccountDetails{
		AccountSummary: a.Summary(),
		LatestDate:     a.latest,
		LastAssessed:   a.lastAssessed,
	}
}

func (a *Account) String() string {
	return a.Summary().String()
}

// Transactions yields the history in stored order. Each call walks the
// history as it is when iteration starts.
func (a *Account) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, txn := range a.transactions {
			if !yield(txn) {
				return
			}
		}
	}
}

// AddTransaction validates and records a user transaction. Checks run in a
// fixed order: sequence, period cap, then overdraft floor.
func (a *Account) AddTransaction(amount decimal.Decimal, date time.Time) (Transaction, error) {
	date = DateOf(date)
	if amount.IsZero() {
		return Transaction{}, ErrZeroAmount
	}
	if err := a.checkSequence(date); err != nil {
		return Transaction{}, err
	}
	if err := a.checkLimit(date); err != nil {
		return Transaction{}, err
	}
	if err := a.checkOverdraft(amount); err != nil {
		return Transaction{}, err
	}
	return a.append(amount, date, KindUser), nil
}

// AssessInterestAndFees posts the month's interest and maintenance fee.
// Entries are dated on the last day of asOf's month so they close the month
// they cover. An account is assessed at most once per calendar month.
func (a *Account) AssessInterestAndFees(asOf time.Time) ([]Transaction, error) {
	asOf = DateOf(asOf)
	if !a.lastAssessed.IsZero() && sameMonth(a.lastAssessed, asOf) {
		return nil, &TransactionSequenceError{LatestDate: a.lastAssessed}
	}

	posting := EndOfMonth(asOf)
	if !a.lastAssessed.IsZero() && posting.Before(a.lastAssessed) {
		return nil, &TransactionSequenceError{LatestDate: a.lastAssessed}
	}
	if err := a.checkSequence(posting); err != nil {
		return nil, err
	}

	interest := a.policy.Interest(a.balance)
	fee := a.capFee(a.policy.Fee(a.balance), interest)

	var posted []Transaction
	if !interest.IsZero() {
		posted = append(posted, a.append(interest, posting, KindInterest))
	}
	if !fee.IsZero() {
		posted = append(posted, a.append(fee, posting, KindFee))
	}
	a.lastAssessed = posting
	return posted, nil
}

func (a *Account) Checkpoint() Checkpoint {
	return Checkpoint{
		balance:      a.balance,
		count:        len(a.transactions),
		latest:       a.latest,
		lastAssessed: a.lastAssessed,
	}
}

// Restore rewinds the account to cp. Transactions accepted after cp was
// taken are dropped.
func (a *Account) Restore(cp Checkpoint) {
	if cp.count < len(a.transactions) {
		clear(a.transactions[cp.count:])
		a.transactions = a.transactions[:cp.count]
	}
	a.balance = cp.balance
	a.latest = cp.latest
	a.lastAssessed = cp.lastAssessed
}

func (a *Account) checkSequence(date time.Time) error {
	if !a.latest.IsZero() && date.Before(a.latest) {
		return &TransactionSequenceError{LatestDate: a.latest}
	}
	return nil
}

func (a *Account) checkLimit(date time.Time) error {
	limit := a.policy.TransactionLimit
	if limit <= 0 {
		return nil
	}
	count := 0
	for _, txn := range a.transactions {
		if txn.Kind == KindUser && a.policy.LimitPeriod.Contains(txn.Date, date) {
			count++
		}
	}
	if count >= limit {
		return &TransactionLimitError{Limit: limit, LimitType: a.policy.LimitPeriod}
	}
	return nil
}

func (a *Account) checkOverdraft(amount decimal.Decimal) error {
	projected := a.balance.Add(amount)
	floor := a.policy.Floor()
	if projected.LessThan(floor) {
		return &OverdrawError{Balance: a.balance, Amount: amount, Floor: floor}
	}
	return nil
}

// capFee shrinks a fee so that, after interest is credited, the balance
// stays at or above the overdraft floor.
func (a *Account) capFee(fee, interest decimal.Decimal) decimal.Decimal {
	room := a.balance.Add(interest).Sub(a.policy.Floor())
	if fee.Neg().GreaterThan(room) {
		return decimal.Max(room, decimal.Zero).Neg()
	}
	return fee
}

func (a *Account) append(amount decimal.Decimal, date time.Time, kind TransactionKind) Transaction {
	txn := Transaction{
		TransactionID: GenerateUUIDWithSuffix("txn"),
		Amount:        amount,
		Date:          date,
		Sequence:      int64(len(a.transactions) + 1),
		Kind:          kind,
	}
	a.transactions = append(a.transactions, txn)
	a.balance = a.balance.Add(amount)
	a.latest = date
	return txn
}

// restore replays persisted transactions without re-running the rules.
func (a *Account) restore(transactions []Transaction, lastAssessed time.Time) {
	for _, txn := range transactions {
		txn.Date = DateOf(txn.Date)
		a.transactions = append(a.transactions, txn)
		a.balance = a.balance.Add(txn.Amount)
		if txn.Date.After(a.latest) {
			a.latest = txn.Date
		}
	}
	if !lastAssessed.IsZero() {
		a.lastAssessed = DateOf(lastAssessed)
	}
}
