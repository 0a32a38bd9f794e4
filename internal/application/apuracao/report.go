package apuracao

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
)

// Report vista de una apuração restringida a un período.
type Report struct {
	Apuracao     *entity.Apuracao
	Period       fiscal.Period
	Rates        fiscal.TaxRates
	Ledger       []entity.LedgerEntry
	Alerts       []entity.AuditAlert
	KPIs         fiscal.KPIs
	Monthly      []fiscal.MonthlyRow
	Quarters     []entity.QuarterlyTaxRecord
	VehicleTaxes []entity.VehicleTax
	Aging        fiscal.StockAging
	Years        []int
	Months       []time.Month
}

// ReportSettings parámetros de presentación de una apuração.
type ReportSettings struct {
	Rates          fiscal.TaxRates
	StaleStockDays int       // 0 = fiscal.DefaultStaleStockDays
	Reference      time.Time // fecha para la antigüedad del estoque; cero = fecha de la apuração
}

// DefaultReportSettings alícuotas y límite por defecto, con referencia en la fecha de la apuração.
func DefaultReportSettings() ReportSettings {
	return ReportSettings{Rates: fiscal.DefaultTaxRates(), StaleStockDays: fiscal.DefaultStaleStockDays}
}

// BuildReport filtra el estoque por período y recalcula los indicadores. Los trimestres
// no se recalculan: se muestran completos los que el período toca.
func BuildReport(a *entity.Apuracao, p fiscal.Period, s ReportSettings) *Report {
	ledger := fiscal.FilterLedger(a.Ledger, p)
	years, months := fiscal.AvailablePeriods(a.Ledger)

	ref := s.Reference
	if ref.IsZero() {
		ref = a.CreatedAt
	}
	stale := s.StaleStockDays
	if stale <= 0 {
		stale = fiscal.DefaultStaleStockDays
	}

	r := &Report{
		Apuracao: a,
		Period:   p,
		Rates:    s.Rates,
		Ledger:   ledger,
		KPIs:     fiscal.ComputeKPIs(ledger),
		Monthly:  fiscal.MonthlySummary(ledger),
		Aging:    fiscal.AnalyzeStock(ledger, ref, stale),
		Years:    years,
		Months:   months,
	}
	if p.IsZero() {
		r.Quarters = a.Quarters
		r.Alerts = a.Alerts
	} else {
		r.Quarters = fiscal.QuartersInPeriod(a.Quarters, p)
		for _, al := range a.Alerts {
			if inPeriod(al.IssuedAt, p) {
				r.Alerts = append(r.Alerts, al)
			}
		}
	}
	r.VehicleTaxes = fiscal.VehicleTaxes(r.Ledger, s.Rates)
	return r
}

func inPeriod(t time.Time, p fiscal.Period) bool {
	return (p.Year == 0 || t.Year() == p.Year) && (p.Month == 0 || t.Month() == p.Month)
}

// ValidatePeriod rechaza meses fuera de 1..12 y años negativos.
func ValidatePeriod(p fiscal.Period) error {
	if p.Month < 0 || p.Month > 12 || p.Year < 0 {
		return fmt.Errorf("%w: período %d/%d", domain.ErrInvalidInput, p.Month, p.Year)
	}
	return nil
}

// Report devuelve la vista filtrada de una apuração guardada.
func (uc *UseCase) Report(ctx context.Context, id string, p fiscal.Period) (*Report, error) {
	if err := ValidatePeriod(p); err != nil {
		return nil, err
	}
	a, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildReport(a, p, uc.ReportSettings()), nil
}

// ExportXLSX genera la planilla fiscal. Devuelve bytes y nombre sugerido del archivo.
func (uc *UseCase) ExportXLSX(ctx context.Context, id string, p fiscal.Period) ([]byte, string, error) {
	if uc.xlsx == nil {
		return nil, "", fmt.Errorf("apuracao: exportador xlsx no configurado")
	}
	r, err := uc.Report(ctx, id, p)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.xlsx.ExportReport(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("apuracao: exportar xlsx: %w", err)
	}
	return b, fileName(r, "xlsx"), nil
}

// ExportPDF genera el PDF de la apuração trimestral.
func (uc *UseCase) ExportPDF(ctx context.Context, id string, p fiscal.Period) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("apuracao: generador pdf no configurado")
	}
	r, err := uc.Report(ctx, id, p)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateReportPDF(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("apuracao: generar pdf: %w", err)
	}
	return b, fileName(r, "pdf"), nil
}

// fileName "apuracao_<id corto>[_AAAA[-MM]].<ext>".
func fileName(r *Report, ext string) string {
	name := "apuracao_" + shortID(r.Apuracao.ID)
	if r.Period.Year != 0 {
		name += fmt.Sprintf("_%d", r.Period.Year)
	}
	if r.Period.Month != 0 {
		name += fmt.Sprintf("-%02d", int(r.Period.Month))
	}
	return name + "." + ext
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
