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
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the variant tag of an account.
type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
)

// ParseAccountType maps a user supplied tag onto a known account type.
func ParseAccountType(tag string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(tag))) {
	case Checking:
		return Checking, nil
	case Savings:
		return Savings, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, tag)
}

func (t AccountType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// PeriodKind is the calendar window a transaction cap applies to.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodMonth PeriodKind = "month"
)

// Contains reports whether a and b fall in the same period.
func (p PeriodKind) Contains(a, b time.Time) bool {
	if p == PeriodDay {
		return sameDay(a, b)
	}
	return sameMonth(a, b)
}

// InterestTier applies MonthlyRate to balances of at least MinBalance.
type InterestTier struct {
	MinBalance  decimal.Decimal `json:"min_balance"`
	MonthlyRate decimal.Decimal `json:"monthly_rate"`
}

// Policy holds the per-variant constants that drive the account rules.
type Policy struct {
	Type               AccountType
	TransactionLimit   int // 0 leaves the period uncapped
	LimitPeriod        PeriodKind
	OverdraftAllowance decimal.Decimal
	InterestTiers      []InterestTier
	MonthlyFee         decimal.Decimal
	FeeBelowBalance    *decimal.Decimal // nil charges the fee regardless of balance
	Precision          int32
}

// Policies indexes the policy of every supported account type.
type Policies map[AccountType]Policy

// DefaultPeriod returns the cap window of a variant: checking accounts are
// capped per day and savings accounts per month.
func DefaultPeriod(t AccountType) PeriodKind {
	if t == Checking {
		return PeriodDay
	}
	return PeriodMonth
}

// Floor is the lowest balance the policy accepts after any transaction.
func (p Policy) Floor() decimal.Decimal {
	return p.OverdraftAllowance.Abs().Neg()
}

// MonthlyRate picks the rate of the highest tier the balance qualifies for.
func (p Policy) MonthlyRate(balance decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	best := decimal.Decimal{}
	found := false
	for _, tier := range p.InterestTiers {
		if balance.LessThan(tier.MinBalance) {
			continue
		}
		if !found || tier.MinBalance.GreaterThanOrEqual(best) {
			best = tier.MinBalance
			rate = tier.MonthlyRate
			found = true
		}
	}
	return rate
}

// Interest is the month's interest on balance, rounded half-up to the
// currency precision. Non-positive balances earn nothing.
func (p Policy) Interest(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return balance.Mul(p.MonthlyRate(balance)).Round(p.Precision)
}

// Fee is the maintenance fee charged for the month, always zero or negative.
func (p Policy) Fee(balance decimal.Decimal) decimal.Decimal {
	if p.MonthlyFee.IsZero() {
		return decimal.Zero
	}
	if p.FeeBelowBalance != nil && balance.GreaterThanOrEqual(*p.FeeBelowBalance) {
		return decimal.Zero
	}
	return p.MonthlyFee.Abs().Neg().Round(p.Precision)
}
