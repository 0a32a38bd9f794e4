// Package fiscal implementa el núcleo del estoque fiscal de vehículos:
// clasificación de sentido, conciliación entrada/saída, auditoría y apuración trimestral.
// Todo el paquete es puro: no hace I/O ni guarda estado global.
package fiscal

import (
	"fmt"
	"strings"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// Company empresa del grupo (revenda) cuyas notas se procesan.
type Company struct {
	TaxID      string   // CNPJ, con o sin máscara
	Name       string   // razón social
	TradeNames []string // nombres propios / fantasía usados en el texto de las notas
}

// CompanyRegistry registro de CNPJs y nombres propios de las empresas del grupo.
type CompanyRegistry struct {
	taxIDs     map[string]Company
	tradeNames []string
}

// NewCompanyRegistry valida y normaliza el registro. Un CNPJ con cantidad de dígitos
// inválida es un error de configuración.
func NewCompanyRegistry(companies []Company) (*CompanyRegistry, error) {
	r := &CompanyRegistry{taxIDs: make(map[string]Company, len(companies))}
	for _, c := range companies {
		id := nfe.OnlyDigits(c.TaxID)
		if len(id) != 14 && len(id) != 11 {
			return nil, fmt.Errorf("%w: empresa %q con CNPJ/CPF %q", domain.ErrInvalidConfig, c.Name, c.TaxID)
		}
		c.TaxID = id
		r.taxIDs[id] = c
		for _, name := range append([]string{c.Name}, c.TradeNames...) {
			if f := nfe.Fold(name); f != "" {
				r.tradeNames = append(r.tradeNames, f)
			}
		}
	}
	return r, nil
}

// IsRegistered indica si el CNPJ/CPF pertenece al grupo.
func (r *CompanyRegistry) IsRegistered(taxID string) bool {
	id := nfe.OnlyDigits(taxID)
	if id == "" {
		return false
	}
	_, ok := r.taxIDs[id]
	return ok
}

// MatchesTradeName indica si el texto contiene algún nombre propio del grupo.
func (r *CompanyRegistry) MatchesTradeName(text string) bool {
	folded := nfe.Fold(text)
	if folded == "" {
		return false
	}
	for _, name := range r.tradeNames {
		if strings.Contains(folded, name) {
			return true
		}
	}
	return false
}

// Companies devuelve las empresas registradas (orden no garantizado).
func (r *CompanyRegistry) Companies() []Company {
	out := make([]Company, 0, len(r.taxIDs))
	for _, c := range r.taxIDs {
		out = append(out, c)
	}
	return out
}
