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

	"github.com/gin-gonic/gin"

	model2 "github.com/jerry-enebeli/bankbook/api/model"
)

func (a Api) OpenAccount(c *gin.Context) {
	var newAccount model2.OpenAccount
	if err := c.ShouldBindJSON(&newAccount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := newAccount.ValidateOpenAccount()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	number, err := a.ledger.OpenAccount(c.Request.Context(), newAccount.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := a.ledger.SelectAccount(number)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model2.FromAccount(account))
}

func (a Api) GetAccount(c *gin.Context) {
	number, ok := accountNumber(c)
	if !ok {
		return
	}

	account, err := a.ledger.SelectAccount(number)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, model2.FromAccount(account))
}

func (a Api) GetAllAccounts(c *gin.Context) {
	summaries := a.ledger.ListAccounts()
	resp := make([]model2.Account, 0, len(summaries))
	for _, summary := range summaries {
		resp = append(resp, model2.FromSummary(summary))
	}
	c.JSON(http.StatusOK, resp)
}
