package fiscal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// TaxRates alícuotas del lucro presumido aplicadas sobre el lucro de cada venta.
type TaxRates struct {
	ICMS                decimal.Decimal // sobre el lucro (margen)
	PISCOFINS           decimal.Decimal // sobre el lucro
	PresumedProfit      decimal.Decimal // presunción: base IRPJ/CSLL = lucro × PresumedProfit
	IRPJ                decimal.Decimal // sobre la base
	IRPJSurtax          decimal.Decimal // adicional sobre el excedente trimestral
	IRPJSurtaxThreshold decimal.Decimal // límite trimestral de la base
	CSLL                decimal.Decimal // sobre la base
}

// DefaultTaxRates alícuotas vigentes para revenda de vehículos usados.
func DefaultTaxRates() TaxRates {
	return TaxRates{
		ICMS:                decimal.RequireFromString("0.19"),
		PISCOFINS:           decimal.RequireFromString("0.0365"),
		PresumedProfit:      decimal.RequireFromString("0.32"),
		IRPJ:                decimal.RequireFromString("0.15"),
		IRPJSurtax:          decimal.RequireFromString("0.10"),
		IRPJSurtaxThreshold: decimal.NewFromInt(60000),
		CSLL:                decimal.RequireFromString("0.09"),
	}
}

// Validate rechaza alícuotas negativas.
func (r TaxRates) Validate() error {
	fields := []struct {
		name string
		v    decimal.Decimal
	}{
		{"icms", r.ICMS},
		{"pis_cofins", r.PISCOFINS},
		{"presuncao", r.PresumedProfit},
		{"irpj", r.IRPJ},
		{"irpj_adicional", r.IRPJSurtax},
		{"irpj_limite", r.IRPJSurtaxThreshold},
		{"csll", r.CSLL},
	}
	for _, f := range fields {
		if f.v.IsNegative() {
			return fmt.Errorf("%w: alícuota %s negativa (%s)", domain.ErrInvalidConfig, f.name, f.v)
		}
	}
	return nil
}

// VehicleTaxes calcula los tributos de cada venta (solo entradas Vendido), en el orden del
// estoque. El adicional de IRPJ no se incluye: es trimestral.
func VehicleTaxes(ledger []entity.LedgerEntry, rates TaxRates) []entity.VehicleTax {
	var out []entity.VehicleTax
	for i := range ledger {
		e := &ledger[i]
		if e.Status != entity.StatusVendido || e.Profit == nil || e.ExitAt == nil {
			continue
		}
		profit := *e.Profit
		base := profit.Mul(rates.PresumedProfit)
		t := entity.VehicleTax{
			Entry:     e,
			Quarter:   entity.QuarterOf(*e.ExitAt),
			Profit:    profit,
			ICMS:      profit.Mul(rates.ICMS),
			PISCOFINS: profit.Mul(rates.PISCOFINS),
			IRPJBase:  base,
			IRPJ:      base.Mul(rates.IRPJ),
			CSLL:      base.Mul(rates.CSLL),
		}
		t.Total = t.ICMS.Add(t.PISCOFINS).Add(t.IRPJ).Add(t.CSLL)
		out = append(out, t)
	}
	return out
}

// Apportion agrupa las ventas por trimestre de la fecha de venta y suma los tributos.
// El adicional de IRPJ se calcula una sola vez por trimestre sobre la base acumulada.
// No se redondea ningún valor intermedio. Resultado ordenado por trimestre.
func Apportion(ledger []entity.LedgerEntry, rates TaxRates) []entity.QuarterlyTaxRecord {
	byQuarter := make(map[entity.Quarter]*entity.QuarterlyTaxRecord)
	for _, t := range VehicleTaxes(ledger, rates) {
		r, ok := byQuarter[t.Quarter]
		if !ok {
			r = &entity.QuarterlyTaxRecord{Quarter: t.Quarter}
			byQuarter[t.Quarter] = r
		}
		r.VehiclesSold++
		r.Profit = r.Profit.Add(t.Profit)
		r.ICMS = r.ICMS.Add(t.ICMS)
		r.PISCOFINS = r.PISCOFINS.Add(t.PISCOFINS)
		r.IRPJBase = r.IRPJBase.Add(t.IRPJBase)
		r.IRPJ = r.IRPJ.Add(t.IRPJ)
		r.CSLL = r.CSLL.Add(t.CSLL)
	}

	out := make([]entity.QuarterlyTaxRecord, 0, len(byQuarter))
	for _, r := range byQuarter {
		if excess := r.IRPJBase.Sub(rates.IRPJSurtaxThreshold); excess.IsPositive() {
			r.IRPJSurtax = excess.Mul(rates.IRPJSurtax)
		}
		r.TotalTaxes = r.ICMS.Add(r.PISCOFINS).Add(r.IRPJ).Add(r.CSLL).Add(r.IRPJSurtax)
		r.NetProfit = r.Profit.Sub(r.TotalTaxes)
		out = append(out, *r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Quarter.Before(out[b].Quarter) })
	return out
}

// QuartersInPeriod devuelve los trimestres completos que el período toca. Un filtro de mes
// no recorta el trimestre: el adicional de IRPJ solo tiene sentido sobre la base trimestral.
func QuartersInPeriod(records []entity.QuarterlyTaxRecord, p Period) []entity.QuarterlyTaxRecord {
	if p.IsZero() {
		return records
	}
	out := make([]entity.QuarterlyTaxRecord, 0, len(records))
	for _, r := range records {
		if p.Year != 0 && r.Quarter.Year != p.Year {
			continue
		}
		if p.Month != 0 && r.Quarter.Number != (int(p.Month)-1)/3+1 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SumQuarters totaliza los trimestres (fila TOTAL de planilla y PDF).
func SumQuarters(records []entity.QuarterlyTaxRecord) entity.QuarterlyTaxRecord {
	var total entity.QuarterlyTaxRecord
	for _, q := range records {
		total.VehiclesSold += q.VehiclesSold
		total.Profit = total.Profit.Add(q.Profit)
		total.ICMS = total.ICMS.Add(q.ICMS)
		total.PISCOFINS = total.PISCOFINS.Add(q.PISCOFINS)
		total.IRPJBase = total.IRPJBase.Add(q.IRPJBase)
		total.IRPJ = total.IRPJ.Add(q.IRPJ)
		total.IRPJSurtax = total.IRPJSurtax.Add(q.IRPJSurtax)
		total.CSLL = total.CSLL.Add(q.CSLL)
		total.TotalTaxes = total.TotalTaxes.Add(q.TotalTaxes)
		total.NetProfit = total.NetProfit.Add(q.NetProfit)
	}
	return total
}
