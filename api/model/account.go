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

type OpenAccount struct {
	Type string `json:"type"`
}

type Account struct {
	Number       int64  `json:"account_number"`
	Type         string `json:"type"`
	Balance      string `json:"balance"`
	LatestDate   string `json:"latest_date,omitempty"`
	LastAssessed string `json:"last_assessed,omitempty"`
}

func FromSummary(summary model.AccountSummary) Account {
	return Account{
		Number:  summary.Number,
		Type:    string(summary.Type),
		Balance: summary.Balance.StringFixed(2),
	}
}

func FromAccount(account model.AccountDetails) Account {
	resp := FromSummary(account.AccountSummary)
	if latest := account.LatestDate; !latest.IsZero() {
		resp.LatestDate = latest.Format(model.DateLayout)
	}
	if assessed := account.LastAssessed; !assessed.IsZero() {
		resp.LastAssessed = assessed.Format(model.DateLayout)
	}
	return resp
}
