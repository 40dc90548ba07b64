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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	model2 "github.com/jerry-enebeli/bankbook/api/model"
	"github.com/jerry-enebeli/bankbook/model"
)

func (a Api) RecordTransaction(c *gin.Context) {
	number, ok := accountNumber(c)
	if !ok {
		return
	}

	var newTransaction model2.RecordTransaction
	if err := c.ShouldBindJSON(&newTransaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := newTransaction.ValidateRecordTransaction(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	amount, date := newTransaction.ToAmountAndDate()
	txn, err := a.ledger.AddTransaction(c.Request.Context(), number, amount, date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model2.FromTransaction(txn))
}

func (a Api) GetTransactions(c *gin.Context) {
	number, ok := accountNumber(c)
	if !ok {
		return
	}

	txns, err := a.ledger.ListTransactions(number)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.FromTransactions(txns))
}

// AssessInterestAndFees posts the month's interest and fees. The body is
// optional; without as_of the month of the account's latest transaction is
// assessed, or the current month when it has none.
func (a Api) AssessInterestAndFees(c *gin.Context) {
	number, ok := accountNumber(c)
	if !ok {
		return
	}

	var assessment model2.Assessment
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&assessment); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := assessment.ValidateAssessment(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	var posted []model.Transaction
	var err error
	if assessment.AsOf == "" {
		posted, err = a.ledger.AssessLatestMonth(c.Request.Context(), number, time.Now())
	} else {
		posted, err = a.ledger.AssessInterestAndFees(c.Request.Context(), number, assessment.AsOfDate(time.Now()))
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model2.FromTransactions(posted))
}
