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

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model2 "github.com/jerry-enebeli/bankbook/api/model"
)

func TestRecordTransaction_CheckingScenario(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"checking"}`, nil)

	var txn model2.Transaction
	resp := post(t, router, "/accounts/1/transactions", `{"amount":"100.00","date":"2023-01-01"}`, &txn)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "100.00", txn.Amount)
	assert.Equal(t, "user", txn.Kind)
	assert.NotEmpty(t, txn.TransactionID)

	var rejected map[string]interface{}
	resp = post(t, router, "/accounts/1/transactions", `{"amount":"-150.00","date":"2023-01-02"}`, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "REJECTED", rejected["code"])
	assert.Equal(t, "100.00", rejected["balance"])

	resp = post(t, router, "/accounts/1/transactions", `{"amount":"-50.00","date":"2023-01-02"}`, nil)
	assert.Equal(t, http.StatusCreated, resp.Code)

	var sequence map[string]interface{}
	resp = post(t, router, "/accounts/1/transactions", `{"amount":"10.00","date":"2023-01-01"}`, &sequence)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "2023-01-02", sequence["latest_date"])

	var account model2.Account
	get(t, router, "/accounts/1", &account)
	assert.Equal(t, "50.00", account.Balance)
}

func TestRecordTransaction_SavingsLimit(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"savings"}`, nil)

	resp := post(t, router, "/accounts/1/transactions", `{"amount":"20","date":"2023-04-02"}`, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var rejected map[string]interface{}
	resp = post(t, router, "/accounts/1/transactions", `{"amount":"5","date":"2023-04-28"}`, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, float64(1), rejected["limit"])
	assert.Equal(t, "month", rejected["limit_type"])
}

func TestRecordTransaction_InvalidInput(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"checking"}`, nil)

	tests := []struct {
		name     string
		route    string
		payload  string
		wantCode int
	}{
		{"bad amount", "/accounts/1/transactions", `{"amount":"ten","date":"2023-01-01"}`, http.StatusBadRequest},
		{"zero amount", "/accounts/1/transactions", `{"amount":"0","date":"2023-01-01"}`, http.StatusBadRequest},
		{"bad date", "/accounts/1/transactions", `{"amount":"1","date":"2023-13-01"}`, http.StatusBadRequest},
		{"unknown account", "/accounts/7/transactions", `{"amount":"1","date":"2023-01-01"}`, http.StatusNotFound},
		{"bad number", "/accounts/x/transactions", `{"amount":"1","date":"2023-01-01"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, router, tt.route, tt.payload, nil)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestGetTransactions(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"checking"}`, nil)

	var amounts []string
	for day := 1; day <= 3; day++ {
		amount := fmt.Sprintf("%.2f", gofakeit.Float64Range(1, 500))
		amounts = append(amounts, amount)
		body := fmt.Sprintf(`{"amount":"%s","date":"2023-02-0%d"}`, amount, day)
		resp := post(t, router, "/accounts/1/transactions", body, nil)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	var txns []model2.Transaction
	resp := get(t, router, "/accounts/1/transactions", &txns)
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, txns, 3)
	for i, txn := range txns {
		assert.Equal(t, amounts[i], txn.Amount)
		assert.Equal(t, int64(i+1), txn.Sequence)
	}

	resp = get(t, router, "/accounts/5/transactions", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAssessInterestAndFees(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"savings"}`, nil)
	post(t, router, "/accounts/1/transactions", `{"amount":"250","date":"2023-02-03"}`, nil)

	var posted []model2.Transaction
	resp := post(t, router, "/accounts/1/assessments", `{"as_of":"2023-02-10"}`, &posted)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Len(t, posted, 1)
	assert.Equal(t, model2.Transaction{
		TransactionID: posted[0].TransactionID,
		Amount:        "2.50",
		Date:          "2023-02-28",
		Sequence:      2,
		Kind:          "interest",
	}, posted[0])

	var again map[string]interface{}
	resp = post(t, router, "/accounts/1/assessments", `{"as_of":"2023-02-28"}`, &again)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "2023-02-28", again["latest_date"])

	resp = post(t, router, "/accounts/1/assessments", `{"as_of":"February"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAssessInterestAndFees_NoBody(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"checking"}`, nil)

	var posted []model2.Transaction
	resp := post(t, router, "/accounts/1/assessments", "", &posted)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Empty(t, posted)
}

func TestAssessInterestAndFees_NoBodyUsesLatestTransactionMonth(t *testing.T) {
	router := setupRouter(t, nil)
	post(t, router, "/accounts", `{"type":"savings"}`, nil)
	post(t, router, "/accounts/1/transactions", `{"amount":"100","date":"2023-02-03"}`, nil)

	var posted []model2.Transaction
	resp := post(t, router, "/accounts/1/assessments", "", &posted)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Len(t, posted, 1)
	assert.Equal(t, "2023-02-28", posted[0].Date)
	assert.Equal(t, "1.00", posted[0].Amount)

	var account model2.Account
	get(t, router, "/accounts/1", &account)
	assert.Equal(t, "2023-02-28", account.LastAssessed)
	assert.Equal(t, "101.00", account.Balance)
}
