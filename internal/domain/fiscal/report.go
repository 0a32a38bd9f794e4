package fiscal

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// KPIs indicadores del estoque.
type KPIs struct {
	TotalSold   decimal.Decimal // Σ venta de Vendido
	TotalProfit decimal.Decimal // Σ lucro de Vendido
	StockValue  decimal.Decimal // Σ compra de Em Estoque
	InStock     int
	Sold        int
	Errors      int
}

// ComputeKPIs calcula los indicadores sobre el estoque (ya filtrado, si corresponde).
func ComputeKPIs(ledger []entity.LedgerEntry) KPIs {
	var k KPIs
	for _, e := range ledger {
		switch e.Status {
		case entity.StatusVendido:
			k.Sold++
			k.TotalSold = k.TotalSold.Add(*e.SaleValue)
			k.TotalProfit = k.TotalProfit.Add(*e.Profit)
		case entity.StatusEmEstoque:
			k.InStock++
			k.StockValue = k.StockValue.Add(*e.PurchaseValue)
		case entity.StatusErro:
			k.Errors++
		}
	}
	return k
}

// Month mes civil.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// MonthlyRow resumen de un mes.
type MonthlyRow struct {
	Month    Month
	Vehicles int // vendidos en el mes
	InStock  int // comprados en el mes y aún en estoque
	Purchase decimal.Decimal
	Sale     decimal.Decimal
	Profit   decimal.Decimal
}

// MonthlySummary agrupa el estoque por mes, en orden ascendente. Un Vendido cuenta en el
// mes de la saída; un Em Estoque cuenta en el mes de la entrada y solo aporta la compra.
// Los Erro quedan fuera: no tienen compra.
func MonthlySummary(ledger []entity.LedgerEntry) []MonthlyRow {
	byMonth := make(map[Month]*MonthlyRow)
	row := func(t time.Time) *MonthlyRow {
		m := Month{Year: t.Year(), Month: t.Month()}
		r, ok := byMonth[m]
		if !ok {
			r = &MonthlyRow{Month: m}
			byMonth[m] = r
		}
		return r
	}
	for _, e := range ledger {
		switch e.Status {
		case entity.StatusVendido:
			r := row(*e.ExitAt)
			r.Vehicles++
			r.Purchase = r.Purchase.Add(*e.PurchaseValue)
			r.Sale = r.Sale.Add(*e.SaleValue)
			r.Profit = r.Profit.Add(*e.Profit)
		case entity.StatusEmEstoque:
			if e.EntryAt == nil {
				continue
			}
			r := row(*e.EntryAt)
			r.InStock++
			r.Purchase = r.Purchase.Add(*e.PurchaseValue)
		}
	}
	out := make([]MonthlyRow, 0, len(byMonth))
	for _, r := range byMonth {
		out = append(out, *r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Month.before(out[b].Month) })
	return out
}

// Period filtro de período; cero = sin filtro en ese campo.
type Period struct {
	Year  int
	Month time.Month
}

// IsZero indica que el filtro no restringe nada.
func (p Period) IsZero() bool { return p.Year == 0 && p.Month == 0 }

// referenceDate fecha de la saída; para vehículos en estoque, la de la entrada.
func referenceDate(e entity.LedgerEntry) (time.Time, bool) {
	if e.ExitAt != nil {
		return *e.ExitAt, true
	}
	if e.EntryAt != nil {
		return *e.EntryAt, true
	}
	return time.Time{}, false
}

// FilterLedger restringe el estoque al período, manteniendo el orden.
func FilterLedger(ledger []entity.LedgerEntry, p Period) []entity.LedgerEntry {
	if p.IsZero() {
		return ledger
	}
	out := make([]entity.LedgerEntry, 0, len(ledger))
	for _, e := range ledger {
		t, ok := referenceDate(e)
		if !ok {
			continue
		}
		if p.Year != 0 && t.Year() != p.Year {
			continue
		}
		if p.Month != 0 && t.Month() != p.Month {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AvailablePeriods años y meses distintos presentes en el estoque, ascendentes.
func AvailablePeriods(ledger []entity.LedgerEntry) (years []int, months []time.Month) {
	ys := map[int]bool{}
	ms := map[time.Month]bool{}
	for _, e := range ledger {
		if t, ok := referenceDate(e); ok {
			ys[t.Year()] = true
			ms[t.Month()] = true
		}
	}
	for y := range ys {
		years = append(years, y)
	}
	for m := range ms {
		months = append(months, m)
	}
	sort.Ints(years)
	sort.Slice(months, func(a, b int) bool { return months[a] < months[b] })
	return years, months
}
