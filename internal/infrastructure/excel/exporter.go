// Package excel genera la planilla fiscal de una apuração con excelize.
package excel

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// Nombres de las hojas, en el orden en que aparecen en el libro.
const (
	SheetEstoque      = "Estoque"
	SheetAuditoria    = "Auditoria"
	SheetTrimestral   = "Apuração Trimestral"
	SheetDetalhamento = "Detalhamento"
	SheetMensal       = "Resumo Mensal"
	SheetPendencias   = "Pendências"
)

const dateLayout = "02/01/2006"

// Exporter implementa apuracao.SpreadsheetExporter.
type Exporter struct{}

// NewExporter crea el exportador.
func NewExporter() *Exporter { return &Exporter{} }

var _ apuracao.SpreadsheetExporter = (*Exporter)(nil)

// sheetWriter acumula filas de una hoja y aplica estilos comunes.
type sheetWriter struct {
	f      *excelize.File
	name   string
	row    int
	header int
	money  int
}

// ExportReport genera el libro completo en memoria.
func (e *Exporter) ExportReport(ctx context.Context, r *apuracao.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo moneda: %w", err)
	}

	sheets := []struct {
		name  string
		write func(*sheetWriter, *apuracao.Report) error
	}{
		{SheetEstoque, writeEstoque},
		{SheetAuditoria, writeAuditoria},
		{SheetTrimestral, writeTrimestral},
		{SheetDetalhamento, writeDetalhamento},
		{SheetMensal, writeMensal},
		{SheetPendencias, writePendencias},
	}
	for i, s := range sheets {
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", s.name, err)
		}
		w := &sheetWriter{f: f, name: s.name, row: 1, header: header, money: money}
		if err := s.write(w, r); err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// columns escribe el encabezado, congela la primera fila y ajusta anchos.
func (w *sheetWriter) columns(titles ...string) error {
	if err := w.append(toAny(titles)...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.name, "A1", last, w.header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(titles))
	if err := w.f.SetColWidth(w.name, "A", lastCol, 18); err != nil {
		return err
	}
	return w.f.SetPanes(w.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *sheetWriter) append(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.name, cell, &values); err != nil {
		return err
	}
	w.row++
	return nil
}

// moneyColumns aplica el formato monetario a las columnas indicadas (1-based) de los datos.
func (w *sheetWriter) moneyColumns(cols ...int) error {
	if w.row <= 2 {
		return nil
	}
	for _, c := range cols {
		from, _ := excelize.CoordinatesToCellName(c, 2)
		to, _ := excelize.CoordinatesToCellName(c, w.row-1)
		if err := w.f.SetCellStyle(w.name, from, to, w.money); err != nil {
			return err
		}
	}
	return nil
}

func writeEstoque(w *sheetWriter, r *apuracao.Report) error {
	err := w.columns("Chave", "Ciclo", "Situação", "Produto", "Chassi", "Placa", "Renavam",
		"Ano Modelo", "Cor", "NF Entrada", "Data Entrada", "Fornecedor", "Valor Compra",
		"NF Saída", "Data Saída", "Cliente", "Valor Venda", "Lucro", "Dias em Estoque")
	if err != nil {
		return err
	}
	for _, e := range r.Ledger {
		doc := e.Document()
		row := []any{
			string(e.Key), e.Cycle + 1, e.Status.String(), doc.Product,
			doc.Vehicle.Chassi, doc.Vehicle.Placa, doc.Vehicle.Renavam, doc.Vehicle.AnoModelo, doc.Vehicle.Cor,
		}
		if e.Entrada != nil {
			row = append(row, e.Entrada.Number, date(e.EntryAt), party(e.Entrada.IssuerName, e.Entrada.IssuerTaxID), money(e.PurchaseValue))
		} else {
			row = append(row, "", "", "", nil)
		}
		if e.Saida != nil {
			row = append(row, e.Saida.Number, date(e.ExitAt), party(e.Saida.RecipientName, e.Saida.RecipientTaxID), money(e.SaleValue))
		} else {
			row = append(row, "", "", "", nil)
		}
		row = append(row, money(e.Profit))
		if days, ok := fiscal.DaysInStock(e, r.Aging.Reference); ok {
			row = append(row, days)
		}
		if err := w.append(row...); err != nil {
			return err
		}
	}
	k := r.KPIs
	w.row++
	if err := w.append("Em estoque", k.InStock, "Valor do estoque", round(k.StockValue)); err != nil {
		return err
	}
	if err := w.append("Vendidos", k.Sold, "Total vendido", round(k.TotalSold), "Lucro total", round(k.TotalProfit)); err != nil {
		return err
	}
	if err := w.append("Erros", k.Errors); err != nil {
		return err
	}
	if ag := r.Aging; ag.Vehicles > 0 {
		if err := w.append("Dias em estoque (média)", ag.AvgDays.Round(1).InexactFloat64(), "Máximo", ag.MaxDays,
			"Mínimo", ag.MinDays, fmt.Sprintf("Parados (> %d dias)", ag.Threshold), len(ag.Stale)); err != nil {
			return err
		}
	}
	return w.moneyColumns(13, 17, 18)
}

func writeAuditoria(w *sheetWriter, r *apuracao.Report) error {
	if err := w.columns("Tipo", "Gravidade", "Sentido", "NF", "Chave", "Data", "Fora do Pareamento"); err != nil {
		return err
	}
	for _, a := range r.Alerts {
		excluded := "Não"
		if a.Excluded {
			excluded = "Sim"
		}
		if err := w.append(a.Kind.String(), string(a.Severity), a.Direction.String(), a.DocumentNumber,
			string(a.Key), a.IssuedAt.Format(dateLayout), excluded); err != nil {
			return err
		}
	}
	return nil
}

func writeTrimestral(w *sheetWriter, r *apuracao.Report) error {
	err := w.columns("Trimestre", "Veículos Vendidos", "Lucro", "ICMS", "PIS/COFINS",
		"Base IRPJ/CSLL", "IRPJ", "Adicional IRPJ", "CSLL", "Total Tributos", "Lucro Líquido")
	if err != nil {
		return err
	}
	for _, q := range r.Quarters {
		if err := w.append(q.Quarter.String(), q.VehiclesSold, round(q.Profit), round(q.ICMS), round(q.PISCOFINS),
			round(q.IRPJBase), round(q.IRPJ), round(q.IRPJSurtax), round(q.CSLL), round(q.TotalTaxes), round(q.NetProfit)); err != nil {
			return err
		}
	}
	if len(r.Quarters) > 0 {
		total := fiscal.SumQuarters(r.Quarters)
		if err := w.append("TOTAL", total.VehiclesSold, round(total.Profit), round(total.ICMS), round(total.PISCOFINS),
			round(total.IRPJBase), round(total.IRPJ), round(total.IRPJSurtax), round(total.CSLL), round(total.TotalTaxes), round(total.NetProfit)); err != nil {
			return err
		}
	}
	return w.moneyColumns(3, 4, 5, 6, 7, 8, 9, 10, 11)
}

func writeDetalhamento(w *sheetWriter, r *apuracao.Report) error {
	err := w.columns("Trimestre", "Chave", "NF Saída", "Data Saída", "Lucro", "ICMS", "PIS/COFINS",
		"Base IRPJ/CSLL", "IRPJ", "CSLL", "Total")
	if err != nil {
		return err
	}
	for _, t := range r.VehicleTaxes {
		if err := w.append(t.Quarter.String(), string(t.Entry.Key), t.Entry.Saida.Number, date(t.Entry.ExitAt),
			round(t.Profit), round(t.ICMS), round(t.PISCOFINS), round(t.IRPJBase), round(t.IRPJ), round(t.CSLL), round(t.Total)); err != nil {
			return err
		}
	}
	return w.moneyColumns(5, 6, 7, 8, 9, 10, 11)
}

func writeMensal(w *sheetWriter, r *apuracao.Report) error {
	if err := w.columns("Mês", "Vendidos", "Em Estoque", "Compras", "Vendas", "Lucro"); err != nil {
		return err
	}
	for _, m := range r.Monthly {
		if err := w.append(fmt.Sprintf("%02d/%d", int(m.Month.Month), m.Month.Year), m.Vehicles, m.InStock,
			round(m.Purchase), round(m.Sale), round(m.Profit)); err != nil {
			return err
		}
	}
	return w.moneyColumns(4, 5, 6)
}

// writePendencias lista lo que requiere revisión manual: sentido indeterminado,
// documentos sin chassi ni placa, XML descartados y vehículos parados en estoque.
func writePendencias(w *sheetWriter, r *apuracao.Report) error {
	if err := w.columns("Motivo", "Arquivo", "Item", "NF", "Data", "CFOP", "Produto", "Detalhe"); err != nil {
		return err
	}
	a := r.Apuracao
	for _, d := range a.Indeterminate {
		if err := w.append("Sentido indeterminado", d.SourcePath, d.ItemNumber, d.Number,
			d.IssuedAt.Format(dateLayout), d.CFOP, d.Product, ""); err != nil {
			return err
		}
	}
	for _, d := range a.Unidentifiable {
		if err := w.append("Sem chassi/placa", d.SourcePath, d.ItemNumber, d.Number,
			d.IssuedAt.Format(dateLayout), d.CFOP, d.Product, d.Direction.String()); err != nil {
			return err
		}
	}
	for _, is := range a.Issues {
		if err := w.append("XML descartado", is.Path, is.Item, "", "", "", "", is.Message); err != nil {
			return err
		}
	}
	for _, s := range r.Aging.Stale {
		d := s.Entry.Entrada
		if err := w.append("Estoque parado", d.SourcePath, d.ItemNumber, d.Number, date(s.Entry.EntryAt),
			d.CFOP, d.Product, fmt.Sprintf("%d dias (limite %d)", s.Days, r.Aging.Threshold)); err != nil {
			return err
		}
	}
	return nil
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func money(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return round(*d)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func party(name, taxID string) string {
	if taxID == "" {
		return name
	}
	return name + " (" + nfe.FormatCNPJ(taxID) + ")"
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
