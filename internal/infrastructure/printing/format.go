package printing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter turns amounts, dates and enum codes into display text for one locale.
type Formatter struct {
	tag      language.Tag
	printer  *message.Printer
	caser    cases.Caser
	currency string
	location *time.Location
}

// NewFormatter creates a formatter. An unparsable locale falls back to English.
func NewFormatter(locale, currency string, loc *time.Location) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		tag:      tag,
		printer:  message.NewPrinter(tag),
		caser:    cases.Title(tag),
		currency: strings.TrimSpace(currency),
		location: loc,
	}
}

// Locale returns the BCP 47 tag in use
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Amount formats d with two decimals and locale grouping, e.g. "5,000.00".
func (f *Formatter) Amount(d decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Money is Amount prefixed with the configured currency code
func (f *Formatter) Money(d decimal.Decimal) string {
	if f.currency == "" {
		return f.Amount(d)
	}
	return f.currency + " " + f.Amount(d)
}

// Count formats an integer with locale grouping
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date formats t as a calendar date in the report time zone
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.location).Format("2006-01-02")
}

// DateTime formats t to the minute in the report time zone
func (f *Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.location).Format("2006-01-02 15:04")
}

// OptionalDate formats a nullable timestamp
func (f *Formatter) OptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return f.Date(*t)
}

// Label turns an enum code such as "PENDING_SETTLEMENT" into "Pending Settlement".
func (f *Formatter) Label(code string) string {
	return f.caser.String(strings.ReplaceAll(strings.ToLower(code), "_", " "))
}
