package utils

import "github.com/shopspring/decimal"

// FormatINR affiche un montant en roupies : "₹" suivi de deux décimales.
func FormatINR(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}
