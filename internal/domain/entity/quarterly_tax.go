package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quarter trimestre civil.
type Quarter struct {
	Year   int
	Number int // 1..4
}

// QuarterOf devuelve el trimestre civil de la fecha.
func QuarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Number: (int(t.Month())-1)/3 + 1}
}

// Before orden cronológico.
func (q Quarter) Before(o Quarter) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Number < o.Number
}

// String formato "2024-T1".
func (q Quarter) String() string {
	return fmt.Sprintf("%d-T%d", q.Year, q.Number)
}

func (q Quarter) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// ParseQuarter interpreta "2024-T1".
func ParseQuarter(s string) (Quarter, error) {
	var q Quarter
	if _, err := fmt.Sscanf(s, "%d-T%d", &q.Year, &q.Number); err != nil || q.Number < 1 || q.Number > 4 {
		return Quarter{}, fmt.Errorf("trimestre inválido %q", s)
	}
	return q, nil
}

func (q *Quarter) UnmarshalText(b []byte) error {
	parsed, err := ParseQuarter(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// QuarterlyTaxRecord apuración del lucro presumido de un trimestre.
// Los montos no se redondean; el redondeo a 2 decimales es solo de presentación.
type QuarterlyTaxRecord struct {
	Quarter      Quarter
	VehiclesSold int
	Profit       decimal.Decimal
	ICMS         decimal.Decimal
	PISCOFINS    decimal.Decimal
	IRPJBase     decimal.Decimal
	IRPJ         decimal.Decimal
	IRPJSurtax   decimal.Decimal
	CSLL         decimal.Decimal
	TotalTaxes   decimal.Decimal
	NetProfit    decimal.Decimal
}

// VehicleTax tributos de una venta individual (sin adicional de IRPJ, que es trimestral).
type VehicleTax struct {
	Entry     *LedgerEntry
	Quarter   Quarter
	Profit    decimal.Decimal
	ICMS      decimal.Decimal
	PISCOFINS decimal.Decimal
	IRPJBase  decimal.Decimal
	IRPJ      decimal.Decimal
	CSLL      decimal.Decimal
	Total     decimal.Decimal
}
