package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// DebtSortFields contains allowed sort fields for debts
var DebtSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"amount":      true,
	"debtor_name": true,
	"paid_at":     true,
	"status":      true,
}

// CashTransactionSortFields contains allowed sort fields for cash transactions
var CashTransactionSortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
	"transaction_type": true,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free-text search input into a lower-cased LIKE
// pattern matching it anywhere. Wildcards in the input match literally; the
// clause using it must declare ESCAPE '\'.
func ContainsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}
