package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1}, {time.March, 1}, {time.April, 2}, {time.September, 3}, {time.December, 4},
	}
	for _, tt := range tests {
		q := entity.QuarterOf(time.Date(2024, tt.month, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, entity.Quarter{Year: 2024, Number: tt.want}, q, tt.month.String())
	}
}

func TestParseQuarter(t *testing.T) {
	q, err := entity.ParseQuarter("2024-T3")
	require.NoError(t, err)
	assert.Equal(t, entity.Quarter{Year: 2024, Number: 3}, q)
	assert.True(t, entity.Quarter{Year: 2023, Number: 4}.Before(q))

	_, err = entity.ParseQuarter("2024-T5")
	assert.Error(t, err)
}

// Los enums viajan por nombre en el JSON persistido de la apuração.
func TestEnums_JSONPorNombre(t *testing.T) {
	in := entity.AuditAlert{
		Kind:      entity.AlertOrphanSaida,
		Direction: entity.DirectionSaida,
		Severity:  entity.SeverityCritical,
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"SAIDA_SEM_ENTRADA"`)
	assert.Contains(t, string(raw), `"Saída"`)

	var out entity.AuditAlert
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	var k entity.AlertKind
	require.NoError(t, k.UnmarshalText([]byte("SAIDA_ANTES_DA_ENTRADA")))
	assert.Equal(t, entity.AlertSaidaAntesEntrada, k)

	var st entity.InventoryStatus
	require.NoError(t, st.UnmarshalText([]byte("Em Estoque")))
	assert.Equal(t, entity.StatusEmEstoque, st)
}

func TestApuracao_Summary(t *testing.T) {
	a := &entity.Apuracao{
		ID: "x",
		Ledger: []entity.LedgerEntry{
			{Status: entity.StatusVendido}, {Status: entity.StatusVendido}, {Status: entity.StatusEmEstoque}, {Status: entity.StatusErro},
		},
		Alerts:        make([]entity.AuditAlert, 3),
		Indeterminate: make([]*entity.FiscalDocument, 1),
		Issues:        make([]entity.DocumentIssue, 2),
	}

	s := a.Summary()
	assert.Equal(t, 2, s.Sold)
	assert.Equal(t, 1, s.InStock)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 3, s.Alerts)
	assert.Equal(t, 3, s.Pending)
}

func TestFiscalDocument_KeyYValor(t *testing.T) {
	d := &entity.FiscalDocument{Vehicle: entity.VehicleAttributes{Placa: "ABC1234"}}
	assert.Equal(t, entity.IdentityKey("ABC1234"), d.Key())

	d.Vehicle.Chassi = "9BWZZZ377VT004251"
	assert.Equal(t, entity.IdentityKey("9BWZZZ377VT004251"), d.Key())

	assert.False(t, entity.IdentityKey("").Matches(""))
}
