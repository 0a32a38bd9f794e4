package fiscal

import (
	"fmt"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
)

// RuleSetConfig configuración de las reglas fiscales, ya leída de los archivos.
type RuleSetConfig struct {
	Patterns        veiculo.Patterns
	Companies       []Company
	VehicleKeywords []string
	Blacklist       []string
	Rates           TaxRates
	StaleStockDays  int // 0 = DefaultStaleStockDays
}

// RuleSet reglas compiladas una sola vez y compartidas por todos los componentes.
type RuleSet struct {
	Identity   *veiculo.IdentityValidator
	Products   *veiculo.ProductClassifier
	Registry   *CompanyRegistry
	Directions *DirectionClassifier
	Rates      TaxRates
	// StaleStockDays límite de días en estoque para considerar un vehículo parado.
	StaleStockDays int
}

// NewRuleSet compila y valida la configuración; cualquier falla es ErrInvalidConfig.
func NewRuleSet(cfg RuleSetConfig) (*RuleSet, error) {
	identity, err := veiculo.NewIdentityValidator(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	registry, err := NewCompanyRegistry(cfg.Companies)
	if err != nil {
		return nil, err
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, err
	}
	stale := cfg.StaleStockDays
	switch {
	case stale < 0:
		return nil, fmt.Errorf("%w: días de estoque parado negativos (%d)", domain.ErrInvalidConfig, stale)
	case stale == 0:
		stale = DefaultStaleStockDays
	}
	return &RuleSet{
		Identity:       identity,
		Products:       veiculo.NewProductClassifier(cfg.VehicleKeywords, cfg.Blacklist),
		Registry:       registry,
		Directions:     NewDirectionClassifier(registry),
		Rates:          cfg.Rates,
		StaleStockDays: stale,
	}, nil
}

// Outcome resultado del procesamiento de un lote de documentos.
type Outcome struct {
	Ledger         []entity.LedgerEntry
	Alerts         []entity.AuditAlert
	Quarters       []entity.QuarterlyTaxRecord
	Indeterminate  []*entity.FiscalDocument // sentido no decidido; revisión manual
	Unidentifiable []*entity.FiscalDocument // vehículo sin chassi ni placa válidos
	Duplicates     []*entity.FiscalDocument // excluidos del emparejamiento
	NonVehicles    []*entity.FiscalDocument // ítems descartados por la heurística de producto
	NulledFields   int                      // atributos anulados por formato inválido
}

// Process valida identidades, clasifica el sentido, concilia, audita y apura el lote.
// Modifica los documentos (atributos normalizados y Direction).
func (rs *RuleSet) Process(docs []*entity.FiscalDocument) Outcome {
	var out Outcome
	for _, items := range byNote(docs) {
		rs.Products.AssignInheritedChassi(items)
	}
	for _, d := range docs {
		out.NulledFields += len(rs.Identity.Apply(d))
		d.Direction = rs.Directions.Classify(d)
	}

	entradas, saidas, indeterminados := Split(docs)
	out.Indeterminate = indeterminados

	var vehE, vehS []*entity.FiscalDocument
	for _, d := range entradas {
		if rs.Products.IsVehicle(d) {
			vehE = append(vehE, d)
		} else {
			out.NonVehicles = append(out.NonVehicles, d)
		}
	}
	for _, d := range saidas {
		if rs.Products.IsVehicle(d) {
			vehS = append(vehS, d)
		} else {
			out.NonVehicles = append(out.NonVehicles, d)
		}
	}

	rec := Reconcile(vehE, vehS)
	out.Ledger = rec.Entries
	out.Unidentifiable = rec.Unidentifiable
	out.Duplicates = rec.Duplicates
	out.Alerts = Audit(vehE, vehS, nil)
	out.Quarters = Apportion(out.Ledger, rs.Rates)
	return out
}

type noteKey struct {
	path, series, number string
}

// byNote agrupa los ítems por NFe de origen, en orden de llegada.
func byNote(docs []*entity.FiscalDocument) [][]*entity.FiscalDocument {
	index := make(map[noteKey]int)
	var groups [][]*entity.FiscalDocument
	for _, d := range docs {
		k := noteKey{d.SourcePath, d.Series, d.Number}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], d)
	}
	return groups
}
