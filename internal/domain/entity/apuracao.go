package entity

import "time"

// DocumentIssue documento o ítem descartado en la extracción, en forma persistible.
type DocumentIssue struct {
	Path    string
	Item    int
	Field   string
	Message string
}

// Apuracao una ejecución completa sobre un lote de XML.
type Apuracao struct {
	ID        string
	CreatedAt time.Time
	Files     int
	Documents int

	Ledger   []LedgerEntry
	Alerts   []AuditAlert
	Quarters []QuarterlyTaxRecord

	Indeterminate  []*FiscalDocument
	Unidentifiable []*FiscalDocument
	Duplicates     []*FiscalDocument
	NonVehicles    []*FiscalDocument
	Issues         []DocumentIssue
	NulledFields   int
}

// ApuracaoSummary datos de listado de una apuração.
type ApuracaoSummary struct {
	ID        string
	CreatedAt time.Time
	Files     int
	Documents int
	InStock   int
	Sold      int
	Errors    int
	Alerts    int
	Pending   int // indeterminados + sin identificación + descartados
}

// Summary resume la apuração para listados.
func (a *Apuracao) Summary() ApuracaoSummary {
	s := ApuracaoSummary{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Files:     a.Files,
		Documents: a.Documents,
		Alerts:    len(a.Alerts),
		Pending:   len(a.Indeterminate) + len(a.Unidentifiable) + len(a.Issues),
	}
	for _, e := range a.Ledger {
		switch e.Status {
		case StatusEmEstoque:
			s.InStock++
		case StatusVendido:
			s.Sold++
		case StatusErro:
			s.Errors++
		}
	}
	return s
}
