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
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells user-entered transactions apart from the synthetic
// entries posted by a monthly assessment.
type TransactionKind string

const (
	KindUser     TransactionKind = "user"
	KindInterest TransactionKind = "interest"
	KindFee      TransactionKind = "fee"
)

// Synthetic reports whether the kind was generated by an assessment.
func (k TransactionKind) Synthetic() bool {
	return k == KindInterest || k == KindFee
}

// Transaction is an accepted, dated monetary entry on an account.
// Values are never changed after an Account hands them out.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Sequence      int64           `json:"sequence"`
	Kind          TransactionKind `json:"kind"`
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("%s, $%s", transaction.Date.Format(DateLayout), transaction.Amount.StringFixed(2))
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// Less orders transactions by date, then by insertion sequence.
func (transaction Transaction) Less(other Transaction) bool {
	if !transaction.Date.Equal(other.Date) {
		return transaction.Date.Before(other.Date)
	}
	return transaction.Sequence < other.Sequence
}
