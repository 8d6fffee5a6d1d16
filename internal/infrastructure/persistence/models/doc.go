// Package models contains GORM persistence models for the ledger tables.
// Repositories convert through the ToDomain / FromDomain mappers defined
// next to each model.
//
//   - base.go: BaseModel and AggregateModel
//   - debt.go: debts
//   - cash_transaction.go: cash_transactions
//   - branch.go: branches
//   - outbox.go: outbox_events
package models
