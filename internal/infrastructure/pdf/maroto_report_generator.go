// Package pdf genera el relatório de apuração trimestral (lucro presumido) con Maroto v2.
//
// Layout de la página A4 horizontal:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón social / título  │  Apuração + período + fecha    │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  INDICADORES: vendidos / en estoque / errores / lucro / estoque  │
//	│  ALÍCUOTAS                                                       │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Trimestre | Veíc. | Lucro | ICMS | ... | Lucro líquido   │
//	│  TOTAL                                                           │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  FOOTER: alertas de auditoría + leyenda                          │
//	└──────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa apuracao.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	company string
}

var _ apuracao.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// NewMarotoReportGenerator construye el generador; company aparece en el encabezado.
func NewMarotoReportGenerator(company string) *MarotoReportGenerator {
	return &MarotoReportGenerator{company: company}
}

// GenerateReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReportPDF(ctx context.Context, r *apuracao.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Apuração Trimestral - Lucro Presumido", true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(r.KPIs))
	if r.Aging.Vehicles > 0 {
		m.AddRows(agingRow(r.Aging))
	}
	m.AddRows(ratesRow(r.Rates))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(quarterRows(r.Quarters)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + título (izq) y apuração + período (der).
func headerRow(company string, r *apuracao.Report) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "Revenda de Veículos"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Apuração trimestral - Lucro Presumido", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("APURAÇÃO "+shortID(r.Apuracao.ID), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(periodLabel(r.Period), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Gerado em: "+r.Apuracao.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// kpiRow: indicadores del estoque en el período.
func kpiRow(k fiscal.KPIs) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 10, Top: 5}),
		)
	}
	return row.New(14).Add(
		kpi("VENDIDOS", fmt.Sprint(k.Sold)),
		kpi("EM ESTOQUE", fmt.Sprint(k.InStock)),
		kpi("ERROS", fmt.Sprint(k.Errors)),
		kpi("TOTAL VENDIDO", "R$ "+formatMoney(k.TotalSold)),
		kpi("LUCRO TOTAL", "R$ "+formatMoney(k.TotalProfit)),
		kpi("VALOR DO ESTOQUE", "R$ "+formatMoney(k.StockValue)),
	)
}

// agingRow: antigüedad del estoque a la fecha de referencia.
func agingRow(a fiscal.StockAging) core.Row {
	s := fmt.Sprintf("Idade do estoque em %s: média %s dias   |   máximo %d   |   mínimo %d   |   parados (> %d dias): %d",
		a.Reference.Format("02/01/2006"), a.AvgDays.StringFixed(1), a.MaxDays, a.MinDays, a.Threshold, len(a.Stale))
	c := colorGray
	if len(a.Stale) > 0 {
		c = colorDanger
	}
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Size: 8, Top: 1.5, Color: c}),
	))
}

// ratesRow: alícuotas usadas en el cálculo.
func ratesRow(rt fiscal.TaxRates) core.Row {
	s := fmt.Sprintf("Alíquotas: ICMS %s%%   |   PIS/COFINS %s%%   |   Presunção %s%%   |   IRPJ %s%% (+%s%% acima de R$ %s/trimestre)   |   CSLL %s%%",
		percent(rt.ICMS), percent(rt.PISCOFINS), percent(rt.PresumedProfit),
		percent(rt.IRPJ), percent(rt.IRPJSurtax), formatMoney(rt.IRPJSurtaxThreshold), percent(rt.CSLL))
	return row.New(8).Add(col.New(12).Add(
		text.New(s, props.Text{Size: 7.5, Top: 2, Color: colorGray}),
	))
}

var tableColumns = []struct {
	label string
	a     align.Type
}{
	{"Trimestre", align.Left},
	{"Veíc.", align.Center},
	{"Lucro", align.Right},
	{"ICMS", align.Right},
	{"PIS/COFINS", align.Right},
	{"Base IRPJ/CSLL", align.Right},
	{"IRPJ", align.Right},
	{"Adic. IRPJ", align.Right},
	{"CSLL", align.Right},
	{"Tributos", align.Right},
	{"Lucro líquido", align.Right},
}

// colSize la última columna ocupa el resto de la grilla de 12.
func colSize(i int) int {
	if i == len(tableColumns)-1 {
		return 12 - (len(tableColumns) - 1)
	}
	return 1
}

// tableHeaderRow: cabecera de la tabla trimestral sobre fondo primario.
func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(tableColumns))
	for i, c := range tableColumns {
		cols = append(cols, col.New(colSize(i)).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: c.a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// quarterRows: una fila por trimestre más la fila de totales.
func quarterRows(quarters []entity.QuarterlyTaxRecord) []core.Row {
	if len(quarters) == 0 {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New("Nenhuma venda no período.", props.Text{
				Size: 9, Align: align.Center, Top: 3, Color: colorGray,
			}),
		))}
	}

	result := make([]core.Row, 0, len(quarters)+1)
	for i, q := range quarters {
		r := tableRow(q.Quarter.String(), q, false)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return append(result, tableRow("TOTAL", fiscal.SumQuarters(quarters), true))
}

func tableRow(label string, q entity.QuarterlyTaxRecord, bold bool) core.Row {
	values := []string{
		label,
		fmt.Sprint(q.VehiclesSold),
		formatMoney(q.Profit),
		formatMoney(q.ICMS),
		formatMoney(q.PISCOFINS),
		formatMoney(q.IRPJBase),
		formatMoney(q.IRPJ),
		formatMoney(q.IRPJSurtax),
		formatMoney(q.CSLL),
		formatMoney(q.TotalTaxes),
		formatMoney(q.NetProfit),
	}
	style := fontstyle.Normal
	var color *props.Color
	if bold {
		style, color = fontstyle.Bold, colorPrimary
	}
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, col.New(colSize(i)).Add(text.New(v, props.Text{
			Style: style, Size: 7.5, Align: tableColumns[i].a,
			Color: color, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(cols...)
}

// footerRows: resumen de auditoría y leyenda.
func footerRows(r *apuracao.Report) []core.Row {
	var critical int
	for _, a := range r.Alerts {
		if a.Severity == entity.SeverityCritical {
			critical++
		}
	}
	audit := fmt.Sprintf("Auditoria: %d alerta(s), %d crítico(s)   |   Pendências: %d indeterminado(s), %d sem identificação, %d XML descartado(s)",
		len(r.Alerts), critical,
		len(r.Apuracao.Indeterminate), len(r.Apuracao.Unidentifiable), len(r.Apuracao.Issues))

	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(audit, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Valores em R$. Tributos calculados sobre o lucro de cada venda (venda - compra); "+
					"o adicional de IRPJ incide sobre a base trimestral que excede o limite. "+
					"Documento de apoio, não substitui a escrituração fiscal.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func periodLabel(p fiscal.Period) string {
	switch {
	case p.IsZero():
		return "Todos os períodos"
	case p.Month == 0:
		return fmt.Sprintf("Ano %d", p.Year)
	case p.Year == 0:
		return "Mês " + monthName(p.Month)
	default:
		return fmt.Sprintf("%s/%d", monthName(p.Month), p.Year)
	}
}

var months = [...]string{"", "Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}

func monthName(m time.Month) string {
	if m < 1 || m > 12 {
		return fmt.Sprint(int(m))
	}
	return months[m]
}

// formatMoney formato brasileño con 2 decimales.
// Ej: 25000 → "25.000,00", -1234.5 → "-1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}

// percent 0.0365 → "3,65".
func percent(d decimal.Decimal) string {
	return strings.Replace(d.Mul(decimal.NewFromInt(100)).String(), ".", ",", 1)
}
