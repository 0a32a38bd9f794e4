package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/dto"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/excel"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-fiscal-veiculos/internal/interfaces/http"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const cnpjRevenda = "41492247000150"

func nfeXML(numero, data, cfop, emit, dest, valor string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
<NFe><infNFe versao="4.00">
<ide><nNF>%s</nNF><serie>1</serie><dhEmi>%sT10:00:00-03:00</dhEmi></ide>
<emit><CNPJ>%s</CNPJ><xNome>Emitente</xNome></emit>
<dest><CNPJ>%s</CNPJ><xNome>Destinatario</xNome></dest>
<det nItem="1"><prod><CFOP>%s</CFOP><xProd>VEICULO VW GOL</xProd><vProd>%s</vProd>
<veicProd><chassi>9BWZZZ377VT004251</chassi></veicProd></prod></det>
<total><ICMSTot><vNF>%s</vNF></ICMSTot></total>
</infNFe></NFe></nfeProc>`, numero, data, emit, dest, cfop, valor, valor)
}

// buildTestApp construye la aplicación Fiber con almacenamiento en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	extractor, err := nfe.NewExtractor(nfe.DefaultFieldMap(), nfe.DefaultRegexMap())
	require.NoError(t, err)
	rules, err := fiscal.NewRuleSet(fiscal.RuleSetConfig{
		Companies:       []fiscal.Company{{TaxID: cnpjRevenda, Name: "Revenda Modelo"}},
		VehicleKeywords: veiculo.DefaultVehicleKeywords,
		Blacklist:       veiculo.DefaultBlacklist,
		Rates:           fiscal.DefaultTaxRates(),
	})
	require.NoError(t, err)

	uc := apuracao.NewUseCase(extractor, rules, memory.NewApuracaoRepository(time.Hour),
		excel.NewExporter(), pdf.NewMarotoReportGenerator("Revenda Modelo"), logger.Nop(), 2)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{ApuracaoUC: uc})
	return app
}

// uploadRequest arma el multipart con los archivos indicados (nombre -> contenido).
func uploadRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("arquivos", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/apuracoes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createApuracao(t *testing.T, app *fiber.App) dto.ApuracaoResponse {
	t.Helper()
	req := uploadRequest(t, map[string]string{
		"compra.xml": nfeXML("100", "2024-01-10", "1102", "11222333000181", cnpjRevenda, "50000.00"),
		"venda.xml":  nfeXML("200", "2024-02-05", "5102", cnpjRevenda, "11222333000181", "65000.00"),
		"leiame.txt": "ignorado",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[dto.ApuracaoResponse](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ProcesaLote(t *testing.T) {
	app := buildTestApp(t)
	out := createApuracao(t, app)

	assert.Equal(t, 2, out.Arquivos)
	assert.Equal(t, 1, out.KPIs.Vendidos)
	require.Len(t, out.Estoque, 1)
	assert.Equal(t, "Vendido", out.Estoque[0].Situacao)
	require.NotNil(t, out.Estoque[0].Lucro)
	assert.Equal(t, "15000", out.Estoque[0].Lucro.String())
	require.Len(t, out.Trimestres, 1)
	assert.Equal(t, "2024-T1", out.Trimestres[0].Trimestre)
	assert.Equal(t, "4549.5", out.Trimestres[0].TotalTributos.String())
}

func TestCreate_SinXML(t *testing.T) {
	app := buildTestApp(t)
	resp, err := app.Test(uploadRequest(t, map[string]string{"notas.txt": "x"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCreate_CuerpoInvalido(t *testing.T) {
	app := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/apuracoes", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetByID(t *testing.T) {
	app := buildTestApp(t)
	created := createApuracao(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/apuracoes/"+created.ID, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.ApuracaoResponse](t, resp).ID)

	// Período sin ventas
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/apuracoes/"+created.ID+"?ano=2024&mes=6", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	filtered := decode[dto.ApuracaoResponse](t, resp)
	assert.Empty(t, filtered.Estoque)
	assert.Empty(t, filtered.Trimestres)
	assert.Equal(t, dto.PeriodResponse{Ano: 2024, Mes: 6}, filtered.Periodo)
}

func TestGetByID_Errores(t *testing.T) {
	app := buildTestApp(t)

	cases := []struct {
		path string
		code int
	}{
		{"/api/apuracoes/no-es-uuid", fiber.StatusBadRequest},
		{"/api/apuracoes/6f1c7b1e-3a55-4b7e-9a0e-2a8f1c0d9b11", fiber.StatusNotFound},
		{"/api/apuracoes/6f1c7b1e-3a55-4b7e-9a0e-2a8f1c0d9b11?mes=13", fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.path)
	}
}

func TestList(t *testing.T) {
	app := buildTestApp(t)
	createApuracao(t, app)
	createApuracao(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/apuracoes?limit=1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.ApuracaoListResponse](t, resp)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Page.Limit)
	assert.Equal(t, 1, out.Items[0].Sold)
}

func TestExports(t *testing.T) {
	app := buildTestApp(t)
	created := createApuracao(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/apuracoes/"+created.ID+"/xlsx?ano=2024", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "apuracao_"+created.ID[:8]+"_2024.xlsx")
	b, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("PK")), "xlsx es un zip")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/apuracoes/"+created.ID+"/pdf", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	b, _ = io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestCreate_Zip(t *testing.T) {
	app := buildTestApp(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"jan/compra.xml": nfeXML("100", "2024-01-10", "1102", "11222333000181", cnpjRevenda, "50000.00"),
		"fev/venda.xml":  nfeXML("200", "2024-02-05", "5102", cnpjRevenda, "11222333000181", "65000.00"),
	} {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	resp, err := app.Test(uploadRequest(t, map[string]string{"lote.zip": buf.String()}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	out := decode[dto.ApuracaoResponse](t, resp)
	assert.Equal(t, 2, out.Arquivos)
	assert.Equal(t, 1, out.KPIs.Vendidos)

	resp, err = app.Test(uploadRequest(t, map[string]string{"roto.zip": "no es zip"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
