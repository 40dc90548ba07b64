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
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is returned when no account carries the requested number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnknownAccountType is returned for an account type tag that has no policy.
	ErrUnknownAccountType = errors.New("unknown account type")
	// ErrZeroAmount is returned for a transaction that would not move the balance.
	ErrZeroAmount = errors.New("transaction amount must be nonzero")
)

// OverdrawError rejects a transaction that would push the balance below the
// account's overdraft floor.
type OverdrawError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
	Floor   decimal.Decimal
}

func (e *OverdrawError) Error() string {
	return fmt.Sprintf("insufficient balance: %s + (%s) would fall below %s",
		e.Balance.StringFixed(2), e.Amount.StringFixed(2), e.Floor.StringFixed(2))
}

// TransactionLimitError rejects a transaction once the period cap is reached.
type TransactionLimitError struct {
	Limit     int
	LimitType PeriodKind
}

func (e *TransactionLimitError) Error() string {
	return fmt.Sprintf("transaction limit reached: %d per %s", e.Limit, e.LimitType)
}

// TransactionSequenceError rejects an entry dated before LatestDate.
type TransactionSequenceError struct {
	LatestDate time.Time
}

func (e *TransactionSequenceError) Error() string {
	return fmt.Sprintf("transactions must be dated on or after %s", e.LatestDate.Format(DateLayout))
}

// IsRejection reports whether err is one of the validation rejections an
// account raises for a proposed transaction or assessment.
func IsRejection(err error) bool {
	var overdraw *OverdrawError
	var limit *TransactionLimitError
	var sequence *TransactionSequenceError
	return errors.As(err, &overdraw) || errors.As(err, &limit) || errors.As(err, &sequence)
}
