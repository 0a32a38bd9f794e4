// Package nfe contiene catálogos y utilidades de la Nota Fiscal eletrônica (modelo 55),
// según el Manual de Orientação do Contribuinte (MOC) 7.0.
package nfe

// Namespace del layout NFe 4.00.
const NamespaceNFe = "http://www.portalfiscal.inf.br/nfe"

// =============================================================================
// tpNF - Tipo de operación (MOC - B11)
// =============================================================================

const (
	NoteTypeEntrada = "0"
	NoteTypeSaida   = "1"
)

// =============================================================================
// CFOP - primer dígito (Convênio s/nº de 1970, Ajuste SINIEF 07/01)
// 1/2/3: entradas (estadual, interestadual, exterior)
// 5/6/7: saídas (estadual, interestadual, exterior)
// =============================================================================

// CFOPGroup grupo fiscal del CFOP según su primer dígito.
type CFOPGroup uint8

const (
	CFOPUnknown CFOPGroup = iota
	CFOPEntrada
	CFOPSaida
)

// ClassifyCFOP clasifica el CFOP por su primer dígito significativo.
func ClassifyCFOP(cfop string) CFOPGroup {
	d := OnlyDigits(cfop)
	if d == "" {
		return CFOPUnknown
	}
	switch d[0] {
	case '1', '2', '3':
		return CFOPEntrada
	case '5', '6', '7':
		return CFOPSaida
	}
	return CFOPUnknown
}

// CFOPs de compra/venta de mercadería para revenda (uso informativo en reportes).
var ResaleCFOPs = map[string]bool{
	"1101": true, "1102": true, "2102": true,
	"5101": true, "5102": true, "6101": true, "6102": true,
	"5551": true,
	"1403": true, "5405": true, "6404": true,
}
