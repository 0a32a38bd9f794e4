package fiscal

import (
	"strings"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// DirectionRule regla que decidió el sentido del documento.
type DirectionRule string

const (
	RuleNoteType  DirectionRule = "tpNF"
	RuleCFOP      DirectionRule = "CFOP"
	RuleTaxID     DirectionRule = "CNPJ"
	RuleTradeName DirectionRule = "nome_proprio"
	RuleNone      DirectionRule = "nenhuma"
)

// DirectionClassifier clasifica cada documento en Entrada, Saída o Indeterminado.
// Orden de prioridad (la primera regla decisiva gana):
//  1. tpNF explícito (0 = Entrada, 1 = Saída)
//  2. CFOP 1/2/3 = Entrada, 5/6/7 = Saída
//  3. destinatario del grupo = Entrada; emisor del grupo = Saída
//  4. nombre del destinatario/emisor contiene un nombre propio del grupo (igual que 3)
//  5. Indeterminado: nunca se adivina
type DirectionClassifier struct {
	registry *CompanyRegistry
}

// NewDirectionClassifier construye el clasificador; registry puede ser nil (reglas 3 y 4 inactivas).
func NewDirectionClassifier(registry *CompanyRegistry) *DirectionClassifier {
	return &DirectionClassifier{registry: registry}
}

// Classify devuelve el sentido del documento.
func (c *DirectionClassifier) Classify(doc *entity.FiscalDocument) entity.Direction {
	d, _ := c.ClassifyWithRule(doc)
	return d
}

// ClassifyWithRule devuelve el sentido y la regla que lo decidió.
func (c *DirectionClassifier) ClassifyWithRule(doc *entity.FiscalDocument) (entity.Direction, DirectionRule) {
	switch strings.TrimSpace(doc.NoteType) {
	case nfe.NoteTypeEntrada:
		return entity.DirectionEntrada, RuleNoteType
	case nfe.NoteTypeSaida:
		return entity.DirectionSaida, RuleNoteType
	}

	switch nfe.ClassifyCFOP(doc.CFOP) {
	case nfe.CFOPEntrada:
		return entity.DirectionEntrada, RuleCFOP
	case nfe.CFOPSaida:
		return entity.DirectionSaida, RuleCFOP
	}

	if c.registry != nil {
		if c.registry.IsRegistered(doc.RecipientTaxID) {
			return entity.DirectionEntrada, RuleTaxID
		}
		if c.registry.IsRegistered(doc.IssuerTaxID) {
			return entity.DirectionSaida, RuleTaxID
		}
		if c.registry.MatchesTradeName(doc.RecipientName) {
			return entity.DirectionEntrada, RuleTradeName
		}
		if c.registry.MatchesTradeName(doc.IssuerName) {
			return entity.DirectionSaida, RuleTradeName
		}
	}
	return entity.DirectionIndeterminado, RuleNone
}

// Split separa los documentos por sentido, preservando el orden de entrada.
func Split(docs []*entity.FiscalDocument) (entradas, saidas, indeterminados []*entity.FiscalDocument) {
	for _, d := range docs {
		switch d.Direction {
		case entity.DirectionEntrada:
			entradas = append(entradas, d)
		case entity.DirectionSaida:
			saidas = append(saidas, d)
		case entity.DirectionIndeterminado:
			indeterminados = append(indeterminados, d)
		}
	}
	return entradas, saidas, indeterminados
}
