package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
)

func buildLedger() []entity.LedgerEntry {
	stock := decimal.NewFromInt(40000)
	entry := day(2024, time.February, 1)
	exit := day(2024, time.March, 3)
	return []entity.LedgerEntry{
		soldEntry("A", day(2024, time.January, 5), "1000"),
		soldEntry("B", day(2024, time.January, 20), "2000"),
		soldEntry("C", day(2025, time.March, 9), "500"),
		{Key: "D", Status: entity.StatusEmEstoque, PurchaseValue: &stock, EntryAt: &entry},
		{Key: "E", Status: entity.StatusErro, ExitAt: &exit},
	}
}

func TestComputeKPIs(t *testing.T) {
	k := fiscal.ComputeKPIs(buildLedger())

	assert.Equal(t, 3, k.Sold)
	assert.Equal(t, 1, k.InStock)
	assert.Equal(t, 1, k.Errors)
	assertDecimal(t, "3500", k.TotalProfit)
	assertDecimal(t, "33500", k.TotalSold) // 3 × 10000 de compra + 3500 de lucro
	assertDecimal(t, "40000", k.StockValue)
}

func TestMonthlySummary(t *testing.T) {
	rows := fiscal.MonthlySummary(buildLedger())

	require.Len(t, rows, 3)
	assert.Equal(t, fiscal.Month{Year: 2024, Month: time.January}, rows[0].Month)
	assert.Equal(t, 2, rows[0].Vehicles)
	assertDecimal(t, "3000", rows[0].Profit)
	assertDecimal(t, "20000", rows[0].Purchase)

	// el vehículo en estoque cae en el mes de la entrada, solo con la compra
	assert.Equal(t, fiscal.Month{Year: 2024, Month: time.February}, rows[1].Month)
	assert.Equal(t, 0, rows[1].Vehicles)
	assert.Equal(t, 1, rows[1].InStock)
	assertDecimal(t, "40000", rows[1].Purchase)
	assertDecimal(t, "0", rows[1].Sale)
	assertDecimal(t, "0", rows[1].Profit)

	assert.Equal(t, fiscal.Month{Year: 2025, Month: time.March}, rows[2].Month)

	for _, r := range rows {
		assert.NotEqual(t, fiscal.Month{Year: 2024, Month: time.March}, r.Month, "el Erro no entra en el resumen")
	}
}

func TestFilterLedger(t *testing.T) {
	ledger := buildLedger()

	assert.Len(t, fiscal.FilterLedger(ledger, fiscal.Period{}), 5)
	assert.Len(t, fiscal.FilterLedger(ledger, fiscal.Period{Year: 2024}), 4)

	march := fiscal.FilterLedger(ledger, fiscal.Period{Month: time.March})
	require.Len(t, march, 2)
	assert.Equal(t, entity.IdentityKey("C"), march[0].Key)
	assert.Equal(t, entity.IdentityKey("E"), march[1].Key)

	feb := fiscal.FilterLedger(ledger, fiscal.Period{Year: 2024, Month: time.February})
	require.Len(t, feb, 1)
	assert.Equal(t, entity.StatusEmEstoque, feb[0].Status)
}

func TestAvailablePeriods(t *testing.T) {
	years, months := fiscal.AvailablePeriods(buildLedger())

	assert.Equal(t, []int{2024, 2025}, years)
	assert.Equal(t, []time.Month{time.January, time.February, time.March}, months)
}
