// Package money holds the integer-cents amount type used across billing.
package money

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	CurrencyBRL = "BRL"
	CurrencyUSD = "USD"
)

// Cents is an amount in the smallest currency unit. Floats never touch balances.
type Cents int64

func (c Cents) Add(other Cents) Cents { return c + other }

func (c Cents) Sub(other Cents) Cents { return c - other }

func (c Cents) IsNegative() bool { return c < 0 }

func (c Cents) IsPositive() bool { return c > 0 }

// Min returns the smaller of two amounts.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

var (
	brPrinter = message.NewPrinter(language.BrazilianPortuguese)
	enPrinter = message.NewPrinter(language.English)
)

// Format renders an amount for humans: "R$ 1.234,56" for BRL and
// "1,234.56 USD" for everything else.
func Format(amount Cents, currency string) string {
	major := float64(amount) / 100
	switch strings.ToUpper(currency) {
	case CurrencyBRL:
		return "R$ " + brPrinter.Sprintf("%.2f", major)
	default:
		return enPrinter.Sprintf("%.2f", major) + " " + strings.ToUpper(currency)
	}
}
