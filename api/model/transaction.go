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
	"github.com/jerry-enebeli/bankbook/model"
)

// RecordTransaction is a deposit (positive amount) or withdrawal (negative
// amount). Amounts are decimal strings so no precision is lost in transit.
type RecordTransaction struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type Assessment struct {
	AsOf string `json:"as_of"`
}

type Transaction struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Sequence      int64  `json:"sequence"`
	Kind          string `json:"kind"`
}

func FromTransaction(txn model.Transaction) Transaction {
	return Transaction{
		TransactionID: txn.TransactionID,
		Amount:        txn.Amount.StringFixed(2),
		Date:          txn.Date.Format(model.DateLayout),
		Sequence:      txn.Sequence,
		Kind:          string(txn.Kind),
	}
}

func FromTransactions(txns []model.Transaction) []Transaction {
	resp := make([]Transaction, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, FromTransaction(txn))
	}
	return resp
}
