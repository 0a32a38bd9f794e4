package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

const (
	testCNPJRevenda = "41492247000150"
	testChassiGol   = "9BWZZZ377VT004251"
	testChassiCivic = "1HGCM82633A004352"
)

var seq int

// buildDoc arma un documento de vehículo mínimo ya clasificado.
func buildDoc(dir entity.Direction, chassi, number string, issued time.Time, value string) *entity.FiscalDocument {
	seq++
	return &entity.FiscalDocument{
		Sequence:   seq,
		Number:     number,
		IssuedAt:   issued,
		Product:    "VEICULO AUTOMOVEL",
		TotalValue: decimal.RequireFromString(value),
		Vehicle:    entity.VehicleAttributes{Chassi: chassi},
		Direction:  dir,
	}
}

func entrada(chassi, number string, issued time.Time, value string) *entity.FiscalDocument {
	return buildDoc(entity.DirectionEntrada, chassi, number, issued, value)
}

func saida(chassi, number string, issued time.Time, value string) *entity.FiscalDocument {
	return buildDoc(entity.DirectionSaida, chassi, number, issued, value)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}
