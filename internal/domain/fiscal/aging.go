package fiscal

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// DefaultStaleStockDays días en estoque a partir de los cuales el vehículo se considera parado.
const DefaultStaleStockDays = 150

// StaleVehicle vehículo Em Estoque por encima del límite.
type StaleVehicle struct {
	Entry *entity.LedgerEntry
	Days  int
}

// StockAging antigüedad del estoque a una fecha de referencia.
type StockAging struct {
	Reference time.Time
	Threshold int
	Vehicles  int
	AvgDays   decimal.Decimal
	MaxDays   int
	MinDays   int
	Stale     []StaleVehicle // de mayor a menor antigüedad
}

// DaysInStock días completos entre la entrada y ref. Solo aplica a Em Estoque; una entrada
// posterior a ref cuenta 0.
func DaysInStock(e entity.LedgerEntry, ref time.Time) (int, bool) {
	if e.Status != entity.StatusEmEstoque || e.EntryAt == nil || ref.IsZero() {
		return 0, false
	}
	held := ref.Sub(*e.EntryAt)
	if held < 0 {
		return 0, true
	}
	return int(held / (24 * time.Hour)), true
}

// AnalyzeStock calcula la antigüedad de los vehículos Em Estoque a la fecha ref.
// Parado es estrictamente más de threshold días. Con ref cero solo se informa el límite.
func AnalyzeStock(ledger []entity.LedgerEntry, ref time.Time, threshold int) StockAging {
	a := StockAging{Reference: ref, Threshold: threshold}
	total := 0
	for i := range ledger {
		days, ok := DaysInStock(ledger[i], ref)
		if !ok {
			continue
		}
		if a.Vehicles == 0 || days > a.MaxDays {
			a.MaxDays = days
		}
		if a.Vehicles == 0 || days < a.MinDays {
			a.MinDays = days
		}
		a.Vehicles++
		total += days
		if days > threshold {
			a.Stale = append(a.Stale, StaleVehicle{Entry: &ledger[i], Days: days})
		}
	}
	if a.Vehicles > 0 {
		a.AvgDays = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(a.Vehicles)))
	}
	sort.SliceStable(a.Stale, func(x, y int) bool { return a.Stale[x].Days > a.Stale[y].Days })
	return a
}
