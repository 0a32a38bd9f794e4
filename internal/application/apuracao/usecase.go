// Package apuracao orquesta el lote: extracción, reglas fiscales, persistencia y exportes.
package apuracao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/fiscal"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/repository"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/nfe"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/logger"
)

// UseCase caso de uso de la apuração fiscal de vehículos.
type UseCase struct {
	extractor DocumentExtractor
	rules     *fiscal.RuleSet
	repo      repository.ApuracaoRepository
	xlsx      SpreadsheetExporter
	pdf       ReportPDFGenerator
	log       *logger.Logger
	workers   int
	now       func() time.Time
}

// NewUseCase construye el caso de uso inyectando todas sus dependencias.
// xlsx y pdf pueden ser nil (la CLI solo exporta planilla).
func NewUseCase(
	extractor DocumentExtractor,
	rules *fiscal.RuleSet,
	repo repository.ApuracaoRepository,
	xlsx SpreadsheetExporter,
	pdf ReportPDFGenerator,
	log *logger.Logger,
	workers int,
) *UseCase {
	return &UseCase{
		extractor: extractor,
		rules:     rules,
		repo:      repo,
		xlsx:      xlsx,
		pdf:       pdf,
		log:       log.Child("apuracao"),
		workers:   workers,
		now:       time.Now,
	}
}

// Run procesa el lote completo y guarda el resultado.
// Los documentos descartados no interrumpen el lote: quedan en Issues y en el log.
func (uc *UseCase) Run(ctx context.Context, sources []nfe.Source) (*entity.Apuracao, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: lote sin XML", domain.ErrInvalidInput)
	}
	started := uc.now()

	batch, err := uc.extractor.ExtractAll(ctx, sources, uc.workers)
	if err != nil {
		return nil, fmt.Errorf("apuracao: extraer lote: %w", err)
	}
	issues := make([]entity.DocumentIssue, 0, len(batch.Errors))
	for _, e := range batch.Errors {
		uc.log.Warn().
			Str("arquivo", e.Path).
			Int("item", e.Item).
			Str("campo", e.Field).
			Err(e.Err).
			Msg("documento descartado")
		issues = append(issues, entity.DocumentIssue{Path: e.Path, Item: e.Item, Field: e.Field, Message: e.Err.Error()})
	}

	out := uc.rules.Process(batch.Documents)
	for _, d := range out.Indeterminate {
		uc.log.Warn().
			Str("arquivo", d.SourcePath).
			Str("nota", d.Number).
			Str("cfop", d.CFOP).
			Msg("sentido indeterminado; requiere revisión manual")
	}

	a := &entity.Apuracao{
		ID:             uuid.New().String(),
		CreatedAt:      started,
		Files:          batch.Files,
		Documents:      len(batch.Documents),
		Ledger:         out.Ledger,
		Alerts:         out.Alerts,
		Quarters:       out.Quarters,
		Indeterminate:  out.Indeterminate,
		Unidentifiable: out.Unidentifiable,
		Duplicates:     out.Duplicates,
		NonVehicles:    out.NonVehicles,
		Issues:         issues,
		NulledFields:   out.NulledFields,
	}
	if err := uc.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("apuracao: guardar: %w", err)
	}

	s := a.Summary()
	uc.log.Info().
		Str("id", a.ID).
		Int("arquivos", a.Files).
		Int("documentos", a.Documents).
		Int("vendidos", s.Sold).
		Int("em_estoque", s.InStock).
		Int("erros", s.Errors).
		Int("alertas", s.Alerts).
		Int("descartados", len(issues)).
		Dur("duracao", uc.now().Sub(started)).
		Msg("apuração concluída")
	return a, nil
}

// Get devuelve una apuração guardada.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Apuracao, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: id %q", domain.ErrInvalidInput, id)
	}
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apuracao: obtener %s: %w", id, err)
	}
	return a, nil
}

// List devuelve las apurações más recientes.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]entity.ApuracaoSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, limit, offset)
}

// ReportSettings alícuotas y límite de estoque parado configurados, con referencia en el
// momento de la consulta.
func (uc *UseCase) ReportSettings() ReportSettings {
	return ReportSettings{
		Rates:          uc.rules.Rates,
		StaleStockDays: uc.rules.StaleStockDays,
		Reference:      uc.now(),
	}
}
