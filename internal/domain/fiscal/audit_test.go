package fiscal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
)

func buildProducts() *veiculo.ProductClassifier {
	return veiculo.NewProductClassifier(
		[]string{"VEICULO", "AUTOMOVEL"},
		[]string{"PNEU", "OLEO", "PECA"},
	)
}

func TestAudit_EntradaDuplicadaCritica(t *testing.T) {
	e1 := entrada(testChassiGol, "100", day(2024, time.January, 10), "50000")
	e2 := entrada(testChassiGol, "101", day(2024, time.January, 12), "50000")
	s := saida(testChassiGol, "200", day(2024, time.March, 1), "65000")

	alerts := fiscal.Audit([]*entity.FiscalDocument{e1, e2}, []*entity.FiscalDocument{s}, buildProducts())

	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, entity.AlertDuplicateEntrada, a.Kind)
	assert.Equal(t, "101", a.DocumentNumber)
	assert.Equal(t, entity.IdentityKey(testChassiGol), a.Key)
	assert.Equal(t, entity.SeverityCritical, a.Severity)
	assert.True(t, a.Excluded)
	assert.Equal(t, entity.DirectionEntrada, a.Direction)
}

func TestAudit_RecompraEsAviso(t *testing.T) {
	e1 := entrada(testChassiGol, "100", day(2024, time.January, 10), "50000")
	s1 := saida(testChassiGol, "200", day(2024, time.February, 1), "60000")
	e2 := entrada(testChassiGol, "101", day(2024, time.April, 3), "55000")
	s2 := saida(testChassiGol, "201", day(2024, time.June, 20), "58000")

	alerts := fiscal.Audit([]*entity.FiscalDocument{e1, e2}, []*entity.FiscalDocument{s1, s2}, buildProducts())

	require.Len(t, alerts, 2)
	assert.Equal(t, entity.AlertDuplicateEntrada, alerts[0].Kind)
	assert.Equal(t, entity.SeverityWarning, alerts[0].Severity)
	assert.Equal(t, entity.AlertDuplicateSaida, alerts[1].Kind)
	assert.Equal(t, entity.SeverityWarning, alerts[1].Severity)
	assert.False(t, alerts[1].Excluded)
}

func TestAudit_SaidaSinEntrada(t *testing.T) {
	s := saida(testChassiCivic, "300", day(2024, time.May, 5), "80000")

	alerts := fiscal.Audit(nil, []*entity.FiscalDocument{s}, buildProducts())

	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertOrphanSaida, alerts[0].Kind)
	assert.Equal(t, entity.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, "300", alerts[0].DocumentNumber)
}

// Una venta anterior a la primera compra desplaza el emparejamiento: la compra de febrero
// queda unida a la venta de enero y la de marzo queda sin compra.
func TestAudit_SaidaAntesDeLaEntrada(t *testing.T) {
	sJan := saida(testChassiGol, "200", day(2024, time.January, 5), "60000")
	eFeb := entrada(testChassiGol, "100", day(2024, time.February, 10), "50000")
	sMar := saida(testChassiGol, "201", day(2024, time.March, 20), "65000")

	alerts := fiscal.Audit([]*entity.FiscalDocument{eFeb}, []*entity.FiscalDocument{sJan, sMar}, buildProducts())

	require.Len(t, alerts, 2)
	assert.Equal(t, entity.AlertDuplicateSaida, alerts[0].Kind)
	assert.Equal(t, "201", alerts[0].DocumentNumber)

	a := alerts[1]
	assert.Equal(t, entity.AlertSaidaAntesEntrada, a.Kind)
	assert.Equal(t, "200", a.DocumentNumber)
	assert.Equal(t, entity.SeverityWarning, a.Severity)
	assert.False(t, a.Excluded)
	assert.Equal(t, day(2024, time.January, 5), a.IssuedAt)
}

func TestAudit_MismaFechaNoEsSaidaAntes(t *testing.T) {
	e := entrada(testChassiGol, "100", day(2024, time.January, 5), "50000")
	s := saida(testChassiGol, "200", day(2024, time.January, 5), "60000")

	alerts := fiscal.Audit([]*entity.FiscalDocument{e}, []*entity.FiscalDocument{s}, buildProducts())

	assert.Empty(t, alerts)
}

func TestAudit_ProductoExcluido(t *testing.T) {
	s := saida(testChassiCivic, "300", day(2024, time.May, 5), "800")
	s.Product = "PNEU ARO 15 PARA AUTOMOVEL"

	alerts := fiscal.Audit(nil, []*entity.FiscalDocument{s}, buildProducts())

	assert.Empty(t, alerts)
}

func TestAudit_ClaveVaciaNoGeneraAlertas(t *testing.T) {
	a := entrada("", "1", day(2024, time.January, 1), "100")
	b := entrada("", "2", day(2024, time.January, 2), "100")
	c := saida("", "3", day(2024, time.January, 3), "100")

	alerts := fiscal.Audit([]*entity.FiscalDocument{a, b}, []*entity.FiscalDocument{c}, buildProducts())

	assert.Empty(t, alerts)
}

func TestAudit_OrdenDeterminista(t *testing.T) {
	docsE := []*entity.FiscalDocument{
		entrada(testChassiGol, "1", day(2024, time.January, 1), "1"),
		entrada(testChassiGol, "2", day(2024, time.January, 2), "1"),
	}
	docsS := []*entity.FiscalDocument{
		saida(testChassiCivic, "3", day(2024, time.January, 3), "1"),
		saida(testChassiCivic, "4", day(2024, time.January, 4), "1"),
	}

	first := fiscal.Audit(docsE, docsS, nil)
	second := fiscal.Audit([]*entity.FiscalDocument{docsE[1], docsE[0]}, []*entity.FiscalDocument{docsS[1], docsS[0]}, nil)

	assert.Equal(t, first, second)
	// Civic (1HG...) ordena antes que Gol (9BW...)
	require.Len(t, first, 4)
	assert.Equal(t, entity.AlertDuplicateSaida, first[0].Kind)
	assert.Equal(t, entity.AlertOrphanSaida, first[1].Kind)
	assert.Equal(t, entity.AlertOrphanSaida, first[2].Kind)
	assert.Equal(t, entity.AlertDuplicateEntrada, first[3].Kind)
}
