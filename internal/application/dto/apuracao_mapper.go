package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
)

// El redondeo a 2 decimales ocurre solo aquí y en los exportes.
func round(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}

// ToApuracaoSummaryResponse mapea el resumen de listado.
func ToApuracaoSummaryResponse(s entity.ApuracaoSummary) ApuracaoSummaryResponse {
	return ApuracaoSummaryResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Files:     s.Files,
		Documents: s.Documents,
		InStock:   s.InStock,
		Sold:      s.Sold,
		Errors:    s.Errors,
		Alerts:    s.Alerts,
		Pending:   s.Pending,
	}
}

// ToApuracaoResponse mapea el reporte (ya filtrado por período).
func ToApuracaoResponse(r *apuracao.Report) ApuracaoResponse {
	a := r.Apuracao
	out := ApuracaoResponse{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		Arquivos:         a.Files,
		Documentos:       a.Documents,
		Periodo:          PeriodResponse{Ano: r.Period.Year, Mes: int(r.Period.Month)},
		AnosDisponiveis:  append([]int{}, r.Years...),
		MesesDisponiveis: make([]int, 0, len(r.Months)),
		KPIs: KPIResponse{
			TotalVendido: round(r.KPIs.TotalSold),
			LucroTotal:   round(r.KPIs.TotalProfit),
			ValorEstoque: round(r.KPIs.StockValue),
			EmEstoque:    r.KPIs.InStock,
			Vendidos:     r.KPIs.Sold,
			Erros:        r.KPIs.Errors,
		},
		IdadeEstoque:     aging(r.Aging),
		Estoque:          make([]LedgerEntryResponse, 0, len(r.Ledger)),
		Alertas:          make([]AlertResponse, 0, len(r.Alerts)),
		Trimestres:       make([]QuarterResponse, 0, len(r.Quarters)),
		ResumoMensal:     make([]MonthlyResponse, 0, len(r.Monthly)),
		Indeterminados:   documents(a.Indeterminate),
		SemIdentificacao: documents(a.Unidentifiable),
		Descartados:      make([]IssueResponse, 0, len(a.Issues)),
		CamposAnulados:   a.NulledFields,
	}
	for _, m := range r.Months {
		out.MesesDisponiveis = append(out.MesesDisponiveis, int(m))
	}
	for i := range r.Ledger {
		e := ledgerEntry(&r.Ledger[i])
		if days, ok := fiscal.DaysInStock(r.Ledger[i], r.Aging.Reference); ok {
			e.DiasEstoque = &days
		}
		out.Estoque = append(out.Estoque, e)
	}
	for _, al := range r.Alerts {
		out.Alertas = append(out.Alertas, AlertResponse{
			Tipo:        al.Kind.String(),
			Gravidade:   string(al.Severity),
			Sentido:     al.Direction.String(),
			NumeroNota:  al.DocumentNumber,
			Chave:       string(al.Key),
			DataEmissao: al.IssuedAt,
			Excluido:    al.Excluded,
		})
	}
	for _, q := range r.Quarters {
		out.Trimestres = append(out.Trimestres, QuarterResponse{
			Trimestre:        q.Quarter.String(),
			VeiculosVendidos: q.VehiclesSold,
			Lucro:            round(q.Profit),
			ICMS:             round(q.ICMS),
			PISCOFINS:        round(q.PISCOFINS),
			BaseIRPJCSLL:     round(q.IRPJBase),
			IRPJ:             round(q.IRPJ),
			IRPJAdicional:    round(q.IRPJSurtax),
			CSLL:             round(q.CSLL),
			TotalTributos:    round(q.TotalTaxes),
			LucroLiquido:     round(q.NetProfit),
		})
	}
	for _, m := range r.Monthly {
		out.ResumoMensal = append(out.ResumoMensal, MonthlyResponse{
			Mes:       fmt.Sprintf("%d-%02d", m.Month.Year, int(m.Month.Month)),
			Veiculos:  m.Vehicles,
			EmEstoque: m.InStock,
			Compras:   round(m.Purchase),
			Vendas:    round(m.Sale),
			Lucro:     round(m.Profit),
		})
	}
	for _, is := range a.Issues {
		out.Descartados = append(out.Descartados, IssueResponse{
			Arquivo:  is.Path,
			Item:     is.Item,
			Campo:    is.Field,
			Mensagem: is.Message,
		})
	}
	return out
}

func aging(a fiscal.StockAging) AgingResponse {
	out := AgingResponse{
		Referencia: a.Reference,
		Limite:     a.Threshold,
		Veiculos:   a.Vehicles,
		MediaDias:  a.AvgDays.Round(1),
		MaxDias:    a.MaxDays,
		MinDias:    a.MinDays,
		Parados:    make([]StaleVehicleResponse, 0, len(a.Stale)),
	}
	for _, s := range a.Stale {
		doc := s.Entry.Document()
		out.Parados = append(out.Parados, StaleVehicleResponse{
			Chave:       string(s.Entry.Key),
			NumeroNota:  doc.Number,
			Produto:     doc.Product,
			DiasEstoque: s.Days,
		})
	}
	return out
}

func ledgerEntry(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		Chave:       string(e.Key),
		Ciclo:       e.Cycle,
		Situacao:    e.Status.String(),
		Entrada:     document(e.Entrada),
		Saida:       document(e.Saida),
		ValorCompra: roundPtr(e.PurchaseValue),
		ValorVenda:  roundPtr(e.SaleValue),
		Lucro:       roundPtr(e.Profit),
		DataEntrada: e.EntryAt,
		DataSaida:   e.ExitAt,
	}
}

func document(d *entity.FiscalDocument) *DocumentResponse {
	if d == nil {
		return nil
	}
	return &DocumentResponse{
		Arquivo:          d.SourcePath,
		Item:             d.ItemNumber,
		Numero:           d.Number,
		Serie:            d.Series,
		DataEmissao:      d.IssuedAt,
		CFOP:             d.CFOP,
		EmitenteCNPJ:     d.IssuerTaxID,
		EmitenteNome:     d.IssuerName,
		DestinatarioCNPJ: d.RecipientTaxID,
		DestinatarioNome: d.RecipientName,
		Produto:          d.Product,
		Valor:            round(d.Value()),
		Sentido:          d.Direction.String(),
		Veiculo: VehicleResponse{
			Chassi:        d.Vehicle.Chassi,
			Placa:         d.Vehicle.Placa,
			Renavam:       d.Vehicle.Renavam,
			AnoModelo:     d.Vehicle.AnoModelo,
			AnoFabricacao: d.Vehicle.AnoFabricacao,
			Cor:           d.Vehicle.Cor,
			Quilometragem: d.Vehicle.Quilometragem,
		},
	}
}

func documents(docs []*entity.FiscalDocument) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, *document(d))
	}
	return out
}
