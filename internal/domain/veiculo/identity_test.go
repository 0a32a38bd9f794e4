package veiculo_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
)

func TestValidChassi(t *testing.T) {
	v := veiculo.DefaultIdentityValidator()

	assert.True(t, v.ValidChassi("9BWZZZ377VT004251"))
	assert.True(t, v.ValidChassi("1HGCM82633A004352"))
	assert.False(t, v.ValidChassi("9BWZZZ377VT00425"), "16 caracteres")
	assert.False(t, v.ValidChassi("9BWZZZ377VT0042511"), "18 caracteres")
	assert.False(t, v.ValidChassi("9BWZZZ377VI004251"), "contiene I")
	assert.False(t, v.ValidChassi("9BWZZZ377VO004251"), "contiene O")
	assert.False(t, v.ValidChassi("9BWZZZ377VQ004251"), "contiene Q")
	assert.False(t, v.ValidChassi(""))
}

func TestValidPlaca(t *testing.T) {
	v := veiculo.DefaultIdentityValidator()

	assert.True(t, v.ValidPlaca("ABC1234"), "placa antigua")
	assert.True(t, v.ValidPlaca("ABC1D23"), "placa Mercosul")
	assert.False(t, v.ValidPlaca("AB12345"))
	assert.False(t, v.ValidPlaca("ABC12D3"))
	assert.False(t, v.ValidPlaca("ABC123"))
}

func TestValidRenavam(t *testing.T) {
	v := veiculo.DefaultIdentityValidator()

	assert.True(t, v.ValidRenavam("123456789"))
	assert.True(t, v.ValidRenavam("12345678901"))
	assert.False(t, v.ValidRenavam("12345678"))
	assert.False(t, v.ValidRenavam("123456789012"))
}

func TestApply_NormalizaYAnulaInvalidos(t *testing.T) {
	v := veiculo.DefaultIdentityValidator()
	doc := &entity.FiscalDocument{Vehicle: entity.VehicleAttributes{
		Chassi:  "9bwzzz377vt004251",
		Placa:   "abc-1d23",
		Renavam: "00.123",
	}}

	nulled := v.Apply(doc)

	assert.Equal(t, "9BWZZZ377VT004251", doc.Vehicle.Chassi)
	assert.Equal(t, "ABC1D23", doc.Vehicle.Placa)
	assert.Empty(t, doc.Vehicle.Renavam)
	assert.Equal(t, []string{"renavam"}, nulled)
	assert.Equal(t, entity.IdentityKey("9BWZZZ377VT004251"), doc.Key())
}

func TestApply_ChassiInvalidoCaeEnPlaca(t *testing.T) {
	v := veiculo.DefaultIdentityValidator()
	doc := &entity.FiscalDocument{Vehicle: entity.VehicleAttributes{
		Chassi: "CHASSI-ILEGIVEL",
		Placa:  "ABC1234",
	}}

	v.Apply(doc)

	assert.Empty(t, doc.Vehicle.Chassi)
	assert.Equal(t, entity.IdentityKey("ABC1234"), doc.Key())
}

func TestNewIdentityValidator_PatronInvalido(t *testing.T) {
	_, err := veiculo.NewIdentityValidator(veiculo.Patterns{Chassi: "[A-Z"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func TestIdentityKey_VaciaNoCoincide(t *testing.T) {
	var empty entity.IdentityKey
	assert.False(t, empty.Matches(empty))
	assert.False(t, empty.Usable())
	assert.True(t, entity.IdentityKey("ABC1234").Matches("ABC1234"))
}
