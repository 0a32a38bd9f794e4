package veiculo

import (
	"strings"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/nfe"
)

// Listas por defecto cuando classificacao_produto.json no existe.
var (
	DefaultVehicleKeywords = []string{"VEICULO", "AUTOMOVEL", "CAMINHONETE", "UTILITARIO", "MOTOCICLETA", "CAMINHAO", "ONIBUS"}
	DefaultBlacklist       = []string{"PNEU", "OLEO", "FILTRO", "PECA", "ACESSORIO", "SERVICO"}
)

// ProductClassifier decide si un ítem de la NFe es un vehículo.
//
// Regla: ningún término de la lista de exclusión en el texto del ítem, y (alguna palabra
// clave de vehículo o un chassi propio del ítem). Las observaciones generales de la nota
// (infCpl) no cuentan: son comunes a todos los ítems. Los ítems que no son vehículo no
// entran en el estoque ni generan alertas.
type ProductClassifier struct {
	keywords  []string
	blacklist []string
}

// NewProductClassifier construye el clasificador; los términos se comparan sin acentos.
func NewProductClassifier(keywords, blacklist []string) *ProductClassifier {
	return &ProductClassifier{
		keywords:  foldAll(keywords),
		blacklist: foldAll(blacklist),
	}
}

// IsVehicle aplica la heurística sobre el producto y las observaciones del ítem.
func (c *ProductClassifier) IsVehicle(doc *entity.FiscalDocument) bool {
	text := nfe.Fold(doc.ItemText())
	if text == "" && doc.Vehicle.Chassi == "" {
		return false
	}
	if c.excluded(text) {
		return false
	}
	if doc.Vehicle.Chassi != "" && !doc.ChassiInherited {
		return true
	}
	return c.hasKeyword(text)
}

// AssignInheritedChassi decide a qué ítem de una nota pertenecen el chassi y la placa hallados
// en infCpl. items son todos los ítems de la misma NFe. Con un solo ítem, son suyos. Con varios,
// se quedan en el único ítem que pasa la heurística por su propio texto; si ninguno o más de
// uno la pasan, se borran de todos. Devuelve los ítems que perdieron algún valor.
func (c *ProductClassifier) AssignInheritedChassi(items []*entity.FiscalDocument) []*entity.FiscalDocument {
	var inherited []*entity.FiscalDocument
	for _, d := range items {
		if d.ChassiInherited || d.PlacaInherited {
			inherited = append(inherited, d)
		}
	}
	if len(inherited) == 0 {
		return nil
	}
	if len(items) == 1 {
		items[0].ChassiInherited, items[0].PlacaInherited = false, false
		return nil
	}

	var owner *entity.FiscalDocument
	owners := 0
	for _, d := range inherited {
		text := nfe.Fold(d.ItemText())
		if !c.excluded(text) && c.hasKeyword(text) {
			owner = d
			owners++
		}
	}
	if owners != 1 {
		owner = nil
	}

	var cleared []*entity.FiscalDocument
	for _, d := range inherited {
		if d != owner {
			if d.ChassiInherited {
				d.Vehicle.Chassi = ""
			}
			if d.PlacaInherited {
				d.Vehicle.Placa = ""
			}
			cleared = append(cleared, d)
		}
		d.ChassiInherited, d.PlacaInherited = false, false
	}
	return cleared
}

func (c *ProductClassifier) excluded(text string) bool {
	for _, term := range c.blacklist {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func (c *ProductClassifier) hasKeyword(text string) bool {
	for _, kw := range c.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func foldAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if f := nfe.Fold(t); f != "" {
			out = append(out, f)
		}
	}
	return out
}
