package ledger

// DebtorType identifies what kind of party a debt is held against
type DebtorType string

const (
	DebtorTypeDriver   DebtorType = "DRIVER"
	DebtorTypeBranch   DebtorType = "BRANCH"
	DebtorTypeCustomer DebtorType = "CUSTOMER"
)

// IsValid checks if the debtor type is known
func (t DebtorType) IsValid() bool {
	switch t {
	case DebtorTypeDriver, DebtorTypeBranch, DebtorTypeCustomer:
		return true
	}
	return false
}

// String returns the string representation of DebtorType
func (t DebtorType) String() string {
	return string(t)
}

// IsPaired returns true if debts of this type always exist as two rows
func (t DebtorType) IsPaired() bool {
	return t == DebtorTypeBranch
}

// MovementType is the direction of a debt as seen from the branch that owns the row.
// DEBTOR means the party owes the row owner; CREDITOR means the row owner owes the party.
type MovementType string

const (
	MovementDebtor   MovementType = "DEBTOR"
	MovementCreditor MovementType = "CREDITOR"
)

// IsValid checks if the movement type is known
func (m MovementType) IsValid() bool {
	return m == MovementDebtor || m == MovementCreditor
}

// String returns the string representation of MovementType
func (m MovementType) String() string {
	return string(m)
}

// Flip returns the movement as seen from the other side of the obligation
func (m MovementType) Flip() MovementType {
	if m == MovementDebtor {
		return MovementCreditor
	}
	return MovementDebtor
}

// CreationCashType returns the cash effect booked when a debt with this movement is created.
// Lending money out (DEBTOR) is an expense now; taking money in on someone's behalf (CREDITOR) is income.
func (m MovementType) CreationCashType() TransactionType {
	if m == MovementDebtor {
		return TransactionExpense
	}
	return TransactionIncome
}

// SettlementCashType returns the cash effect booked when the debt is settled
func (m MovementType) SettlementCashType() TransactionType {
	return m.CreationCashType().Opposite()
}

// DebtStatus represents the lifecycle state of a debt
type DebtStatus string

const (
	DebtStatusOutstanding DebtStatus = "OUTSTANDING"
	DebtStatusPaid        DebtStatus = "PAID"
	// DebtStatusPendingSettlement is reserved. No write path sets it.
	DebtStatusPendingSettlement DebtStatus = "PENDING_SETTLEMENT"
)

// IsValid checks if the status is known
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusOutstanding, DebtStatusPaid, DebtStatusPendingSettlement:
		return true
	}
	return false
}

// String returns the string representation of DebtStatus
func (s DebtStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s DebtStatus) IsTerminal() bool {
	return s == DebtStatusPaid
}

// TransactionType is the sign of a cash ledger row
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// IsValid checks if the transaction type is known
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Opposite returns the reversing transaction type
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionIncome {
		return TransactionExpense
	}
	return TransactionIncome
}

// CashReason records which debt lifecycle step produced a cash row
type CashReason string

const (
	CashReasonDebtCreated CashReason = "DEBT_CREATED"
	CashReasonDebtSettled CashReason = "DEBT_SETTLED"
)

// IsValid checks if the reason is known
func (r CashReason) IsValid() bool {
	return r == CashReasonDebtCreated || r == CashReasonDebtSettled
}
