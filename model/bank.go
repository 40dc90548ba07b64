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
	"time"
)

// Bank owns every account of a ledger and hands out account numbers.
// It is not safe for concurrent use; callers serialize access.
type Bank struct {
	policies   Policies
	base       int64
	nextNumber int64
	accounts   map[int64]*Account
	order      []int64
}

// BankCheckpoint captures the bank's account registry for rollback.
type BankCheckpoint struct {
	nextNumber int64
	count      int
}

// NewBank creates an empty bank whose first account number is base.
func NewBank(base int64, policies Policies) *Bank {
	return &Bank{
		policies:   policies,
		base:       base,
		nextNumber: base,
		accounts:   make(map[int64]*Account),
	}
}

func (b *Bank) policy(t AccountType) (Policy, error) {
	policy, ok := b.policies[t]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownAccountType, string(t))
	}
	policy.Type = t
	if policy.LimitPeriod == "" {
		policy.LimitPeriod = DefaultPeriod(t)
	}
	return policy, nil
}

// AddAccount opens an account of type t under the next unused number.
func (b *Bank) AddAccount(t AccountType) (*Account, error) {
	policy, err := b.policy(t)
	if err != nil {
		return nil, err
	}
	account := newAccount(b.nextNumber, policy)
	b.register(account)
	return account, nil
}

// GetAccount looks an account up by number.
func (b *Bank) GetAccount(number int64) (*Account, error) {
	account, ok := b.accounts[number]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, number)
	}
	return account, nil
}

// ShowAccounts lists a summary of every account in creation order.
func (b *Bank) ShowAccounts() []AccountSummary {
	summaries := make([]AccountSummary, 0, len(b.order))
	for _, number := range b.order {
		summaries = append(summaries, b.accounts[number].Summary())
	}
	return summaries
}

// RestoreAccount rebuilds a persisted account with its history. Restored
// accounts are listed in the order they are restored.
func (b *Bank) RestoreAccount(number int64, t AccountType, transactions []Transaction, lastAssessed time.Time) (*Account, error) {
	if number < b.base {
		return nil, fmt.Errorf("account number %d is below the numbering base %d", number, b.base)
	}
	if _, exists := b.accounts[number]; exists {
		return nil, fmt.Errorf("account number %d restored twice", number)
	}
	policy, err := b.policy(t)
	if err != nil {
		return nil, err
	}
	account := newAccount(number, policy)
	account.restore(transactions, lastAssessed)
	b.register(account)
	return account, nil
}

func (b *Bank) Checkpoint() BankCheckpoint {
	return BankCheckpoint{nextNumber: b.nextNumber, count: len(b.order)}
}

// Restore forgets accounts opened after cp was taken and gives their numbers
// back.
func (b *Bank) Restore(cp BankCheckpoint) {
	for _, number := range b.order[cp.count:] {
		delete(b.accounts, number)
	}
	b.order = b.order[:cp.count]
	b.nextNumber = cp.nextNumber
}

func (b *Bank) register(account *Account) {
	b.accounts[account.Number] = account
	b.order = append(b.order, account.Number)
	if account.Number >= b.nextNumber {
		b.nextNumber = account.Number + 1
	}
}
