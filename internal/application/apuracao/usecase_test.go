package apuracao_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/config"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const (
	cnpjRevenda    = "41492247000150"
	cnpjFornecedor = "11222333000181"
	chassiGol      = "9BWZZZ377VT004251"
	chassiCivic    = "1HGCM82633A004352"
)

type nota struct {
	numero, data, cfop, emit, dest, produto, valor, chassi string
}

func (n nota) xml() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
<NFe><infNFe versao="4.00">
<ide><nNF>%s</nNF><serie>1</serie><dhEmi>%sT10:00:00-03:00</dhEmi></ide>
<emit><CNPJ>%s</CNPJ><xNome>Emitente</xNome></emit>
<dest><CNPJ>%s</CNPJ><xNome>Destinatario</xNome></dest>
<det nItem="1"><prod><CFOP>%s</CFOP><xProd>%s</xProd><vProd>%s</vProd>
<veicProd><chassi>%s</chassi></veicProd></prod></det>
<total><ICMSTot><vNF>%s</vNF></ICMSTot></total>
</infNFe></NFe></nfeProc>`, n.numero, n.data, n.emit, n.dest, n.cfop, n.produto, n.valor, n.chassi, n.valor)
}

func source(name, body string) nfe.Source {
	return nfe.Source{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func compra(numero, data, chassi, valor string) nota {
	return nota{numero, data, "1102", cnpjFornecedor, cnpjRevenda, "VEICULO VW GOL", valor, chassi}
}

func venda(numero, data, chassi, valor string) nota {
	return nota{numero, data, "5102", cnpjRevenda, cnpjFornecedor, "VEICULO VW GOL", valor, chassi}
}

func sampleSources() []nfe.Source {
	return []nfe.Source{
		source("venda_gol.xml", venda("200", "2024-02-05", chassiGol, "65000.00").xml()),
		source("compra_gol.xml", compra("100", "2024-01-10", chassiGol, "50000.00").xml()),
		source("compra_civic.xml", compra("101", "2024-03-01", chassiCivic, "80000.00").xml()),
		source("venda_orfa.xml", venda("300", "2024-04-02", "9BGRD08X04G117974", "40000.00").xml()),
		source("quebrado.xml", `<nfeProc versao=4.00>`),
	}
}

func newUseCase(t *testing.T) *apuracao.UseCase {
	t.Helper()
	d := fiscal.DefaultTaxRates()
	extractor, rules, err := apuracao.NewEngine(&config.Rules{
		Companies: []config.CompanyRule{{CNPJ: cnpjRevenda, Name: "Revenda Modelo Veiculos Ltda"}},
	}, config.FiscalConfig{Rates: config.TaxRatesConfig{
		ICMS:                d.ICMS,
		PISCOFINS:           d.PISCOFINS,
		PresumedProfit:      d.PresumedProfit,
		IRPJ:                d.IRPJ,
		IRPJSurtax:          d.IRPJSurtax,
		IRPJSurtaxThreshold: d.IRPJSurtaxThreshold,
		CSLL:                d.CSLL,
	}})
	require.NoError(t, err)
	return apuracao.NewUseCase(extractor, rules, memory.NewApuracaoRepository(time.Hour), nil, nil, logger.Nop(), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Run
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_LoteCompleto(t *testing.T) {
	uc := newUseCase(t)

	a, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)

	_, err = uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Files)
	assert.Equal(t, 4, a.Documents)
	require.Len(t, a.Issues, 1)
	assert.Equal(t, "quebrado.xml", a.Issues[0].Path)

	s := a.Summary()
	assert.Equal(t, 1, s.Sold)
	assert.Equal(t, 1, s.InStock)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Alerts)
	assert.Equal(t, 1, s.Pending)

	require.Len(t, a.Quarters, 1, "la venta huérfana no genera tributos")
	assert.Equal(t, "2024-T1", a.Quarters[0].Quarter.String())
	assert.Equal(t, "4549.5", a.Quarters[0].TotalTaxes.String())

	require.Len(t, a.Alerts, 1)
	assert.Equal(t, entity.AlertOrphanSaida, a.Alerts[0].Kind)
	assert.Equal(t, entity.SeverityCritical, a.Alerts[0].Severity)
}

func TestRun_SinFuentes(t *testing.T) {
	_, err := newUseCase(t).Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newUseCase(t).Run(ctx, sampleSources())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Determinista(t *testing.T) {
	uc := newUseCase(t)
	a1, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)
	a2, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)

	assert.NotEqual(t, a1.ID, a2.ID)
	require.Len(t, a2.Ledger, len(a1.Ledger))
	for i := range a1.Ledger {
		assert.Equal(t, a1.Ledger[i].Key, a2.Ledger[i].Key)
		assert.Equal(t, a1.Ledger[i].Status, a2.Ledger[i].Status)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Get / List / Report
// ──────────────────────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	uc := newUseCase(t)
	a, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = uc.Get(context.Background(), "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	uc := newUseCase(t)
	for range 3 {
		_, err := uc.Run(context.Background(), sampleSources())
		require.NoError(t, err)
	}

	all, err := uc.List(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := uc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestReport_Periodo(t *testing.T) {
	uc := newUseCase(t)
	a, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)

	r, err := uc.Report(context.Background(), a.ID, fiscal.Period{Year: 2024, Month: time.February})
	require.NoError(t, err)
	require.Len(t, r.Ledger, 1)
	assert.Equal(t, entity.StatusVendido, r.Ledger[0].Status)
	assert.Equal(t, 1, r.KPIs.Sold)
	assert.Equal(t, "15000", r.KPIs.TotalProfit.String())
	require.Len(t, r.Quarters, 1)
	require.Len(t, r.VehicleTaxes, 1)
	assert.Empty(t, r.Alerts)
	assert.Equal(t, []int{2024}, r.Years)
	assert.Equal(t, []time.Month{time.February, time.March, time.April}, r.Months)

	_, err = uc.Report(context.Background(), a.ID, fiscal.Period{Month: 13})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExport_SinExportador(t *testing.T) {
	uc := newUseCase(t)
	a, err := uc.Run(context.Background(), sampleSources())
	require.NoError(t, err)

	_, _, err = uc.ExportXLSX(context.Background(), a.ID, fiscal.Period{})
	assert.Error(t, err)
	_, _, err = uc.ExportPDF(context.Background(), a.ID, fiscal.Period{})
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Engine
// ──────────────────────────────────────────────────────────────────────────────

func TestNewEngine_ConfigInvalida(t *testing.T) {
	regex := &config.RegexRules{}
	regex.Validators.Chassi = "[A-Z"
	_, _, err := apuracao.NewEngine(&config.Rules{Regex: regex}, config.FiscalConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, _, err = apuracao.NewEngine(&config.Rules{
		Companies: []config.CompanyRule{{CNPJ: "123"}},
	}, config.FiscalConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestBuildReport_FiltroMensalMantieneTrimestreCompleto(t *testing.T) {
	// base IRPJ: enero 40000 + febrero 30000; el adicional (1000) es del trimestre
	sold := func(key string, exit time.Time, profit int64) entity.LedgerEntry {
		purchase := decimal.NewFromInt(10000)
		p := decimal.NewFromInt(profit)
		sale := purchase.Add(p)
		return entity.LedgerEntry{
			Key: entity.IdentityKey(key), Status: entity.StatusVendido,
			PurchaseValue: &purchase, SaleValue: &sale, Profit: &p, ExitAt: &exit,
		}
	}
	ledger := []entity.LedgerEntry{
		sold(chassiGol, time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC), 125000),
		sold(chassiCivic, time.Date(2024, time.February, 10, 10, 0, 0, 0, time.UTC), 93750),
	}
	rates := fiscal.DefaultTaxRates()
	a := &entity.Apuracao{ID: uuid.NewString(), Ledger: ledger, Quarters: fiscal.Apportion(ledger, rates)}

	for _, m := range []time.Month{time.January, time.February} {
		r := apuracao.BuildReport(a, fiscal.Period{Year: 2024, Month: m}, apuracao.ReportSettings{Rates: rates})
		require.Len(t, r.Quarters, 1, m.String())
		assert.Equal(t, "2024-T1", r.Quarters[0].Quarter.String())
		assert.True(t, decimal.NewFromInt(1000).Equal(r.Quarters[0].IRPJSurtax), m.String())
		assert.Len(t, r.Ledger, 1, "el estoque sí se filtra por mes")
	}
}
