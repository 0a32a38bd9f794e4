// Package veiculo contiene las reglas de identidad del vehículo (chassi, placa, renavam)
// y la heurística que separa ítems de vehículo de ítems de consumo.
package veiculo

import (
	"fmt"
	"regexp"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// Patrones por defecto (VIN sin I/O/Q; placa antigua AAA9999 y Mercosul AAA9A99).
const (
	DefaultChassiPattern        = `[A-HJ-NPR-Z0-9]{17}`
	DefaultPlacaAntigaPattern   = `[A-Z]{3}[0-9]{4}`
	DefaultPlacaMercosulPattern = `[A-Z]{3}[0-9][A-Z][0-9]{2}`
	DefaultRenavamPattern       = `[0-9]{9,11}`
)

// Patterns expresiones de validación; vacío = patrón por defecto.
type Patterns struct {
	Chassi        string
	PlacaAntiga   string
	PlacaMercosul string
	Renavam       string
}

// IdentityValidator valida formatos de chassi, placa y renavam.
// Un formato inválido nunca es un error: el campo se anula.
type IdentityValidator struct {
	chassi        *regexp.Regexp
	placaAntiga   *regexp.Regexp
	placaMercosul *regexp.Regexp
	renavam       *regexp.Regexp
}

// NewIdentityValidator compila los patrones (anclados al texto completo).
// Un patrón que no compila es un error de configuración.
func NewIdentityValidator(p Patterns) (*IdentityValidator, error) {
	compile := func(name, expr, def string) (*regexp.Regexp, error) {
		if expr == "" {
			expr = def
		}
		re, err := regexp.Compile(`^(?:` + expr + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w: validador %s: %v", domain.ErrInvalidConfig, name, err)
		}
		return re, nil
	}
	var (
		v   IdentityValidator
		err error
	)
	if v.chassi, err = compile("chassi", p.Chassi, DefaultChassiPattern); err != nil {
		return nil, err
	}
	if v.placaAntiga, err = compile("placa_antiga", p.PlacaAntiga, DefaultPlacaAntigaPattern); err != nil {
		return nil, err
	}
	if v.placaMercosul, err = compile("placa_mercosul", p.PlacaMercosul, DefaultPlacaMercosulPattern); err != nil {
		return nil, err
	}
	if v.renavam, err = compile("renavam", p.Renavam, DefaultRenavamPattern); err != nil {
		return nil, err
	}
	return &v, nil
}

// DefaultIdentityValidator validador con los patrones por defecto.
func DefaultIdentityValidator() *IdentityValidator {
	v, err := NewIdentityValidator(Patterns{})
	if err != nil {
		panic(err) // los patrones por defecto siempre compilan
	}
	return v
}

// ValidChassi indica si el valor (ya normalizado) es un chassi válido.
func (v *IdentityValidator) ValidChassi(s string) bool {
	return s != "" && v.chassi.MatchString(s)
}

// ValidPlaca acepta placa antigua o Mercosul.
func (v *IdentityValidator) ValidPlaca(s string) bool {
	return s != "" && (v.placaAntiga.MatchString(s) || v.placaMercosul.MatchString(s))
}

// ValidRenavam 9 a 11 dígitos.
func (v *IdentityValidator) ValidRenavam(s string) bool {
	return s != "" && v.renavam.MatchString(s)
}

// Apply normaliza chassi/placa/renavam del documento y anula los que no pasan la validación.
// Devuelve los nombres de los campos anulados (para log).
func (v *IdentityValidator) Apply(doc *entity.FiscalDocument) []string {
	var nulled []string
	attrs := &doc.Vehicle

	attrs.Chassi = nfe.Alnum(attrs.Chassi)
	if attrs.Chassi != "" && !v.ValidChassi(attrs.Chassi) {
		attrs.Chassi = ""
		nulled = append(nulled, "chassi")
	}
	attrs.Placa = nfe.Alnum(attrs.Placa)
	if attrs.Placa != "" && !v.ValidPlaca(attrs.Placa) {
		attrs.Placa = ""
		nulled = append(nulled, "placa")
	}
	attrs.Renavam = nfe.OnlyDigits(attrs.Renavam)
	if attrs.Renavam != "" && !v.ValidRenavam(attrs.Renavam) {
		attrs.Renavam = ""
		nulled = append(nulled, "renavam")
	}
	return nulled
}
