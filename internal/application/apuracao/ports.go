package apuracao

import (
	"context"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
)

// DocumentExtractor lee un lote de XML y devuelve los documentos por ítem.
type DocumentExtractor interface {
	ExtractAll(ctx context.Context, sources []nfe.Source, workers int) (*nfe.Batch, error)
}

// SpreadsheetExporter genera la planilla fiscal (xlsx) de un reporte.
type SpreadsheetExporter interface {
	ExportReport(ctx context.Context, r *Report) ([]byte, error)
}

// ReportPDFGenerator genera el PDF de la apuração trimestral.
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, r *Report) ([]byte, error)
}
