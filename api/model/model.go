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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/bankbook/model"
)

func validateDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := model.ParseDate(s); err != nil {
		return errors.New("must be a date in the format YYYY-MM-DD")
	}
	return nil
}

func validateAmount(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid dollar amount")
	}
	if amount.IsZero() {
		return errors.New("must not be zero")
	}
	return nil
}

func (a *OpenAccount) ValidateOpenAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Type, validation.Required, validation.By(func(value interface{}) error {
			_, err := model.ParseAccountType(value.(string))
			if err != nil {
				return errors.New("must be checking or savings")
			}
			return nil
		})),
	)
}

func (t *RecordTransaction) ValidateRecordTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Amount, validation.Required, validation.By(validateAmount)),
		validation.Field(&t.Date, validation.Required, validation.By(validateDate)),
	)
}

func (a *Assessment) ValidateAssessment() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.AsOf, validation.By(validateDate)),
	)
}

// ToAmountAndDate returns the validated amount and date.
func (t *RecordTransaction) ToAmountAndDate() (decimal.Decimal, time.Time) {
	amount := decimal.RequireFromString(t.Amount)
	date, _ := model.ParseDate(t.Date)
	return amount, date
}

// AsOfDate returns the assessment date, today when none was given.
func (a *Assessment) AsOfDate(now time.Time) time.Time {
	if a.AsOf == "" {
		return model.DateOf(now)
	}
	date, _ := model.ParseDate(a.AsOf)
	return date
}
