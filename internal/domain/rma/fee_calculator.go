package rma

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// noFeeReasons motivos atribuibles a la tienda o al producto: sin cargo de reposición.
var noFeeReasons = map[string]struct{}{
	"defective":        {},
	"wrong_item":       {},
	"not_as_described": {},
	"damaged_shipping": {},
}

// IsNoFeeReason indica si el motivo exime del cargo de reposición.
func IsNoFeeReason(reason string) bool {
	_, ok := noFeeReasons[normalizeReason(reason)]
	return ok
}

// CalculateRestockingFee implementa el cálculo de cargo de reposición y reembolso (servicio de dominio).
//
//	Cargo     = round(Total * Porcentaje / 100, 2)   (0 si el motivo está exento o Porcentaje <= 0)
//	Reembolso = Total - Cargo
//
// El cargo se acota a [0, Total]; con Porcentaje >= 100 el reembolso queda en 0 y nunca es negativo.
func CalculateRestockingFee(total decimal.Decimal, reason string, feePercent decimal.Decimal) (fee, refund decimal.Decimal) {
	total = total.Round(2)
	if IsNoFeeReason(reason) || !feePercent.IsPositive() || !total.IsPositive() {
		return decimal.Zero, total
	}
	fee = total.Mul(feePercent).Div(hundred).Round(2)
	if fee.GreaterThan(total) {
		fee = total
	}
	return fee, total.Sub(fee)
}

func normalizeReason(reason string) string {
	return strings.ToLower(strings.TrimSpace(reason))
}
