package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry una línea del estoque fiscal: un ciclo compra/venta de un vehículo.
//
//	EmEstoque: Entrada != nil, Saida == nil
//	Vendido:   Entrada != nil, Saida != nil, SaleValue y Profit != nil
//	Erro:      Entrada == nil, Saida = venta huérfana, sin datos de compra
type LedgerEntry struct {
	Key    IdentityKey
	Cycle  int // índice del ciclo dentro de la clave (0 = primera compra)
	Status InventoryStatus

	Entrada *FiscalDocument
	Saida   *FiscalDocument

	PurchaseValue *decimal.Decimal
	SaleValue     *decimal.Decimal
	Profit        *decimal.Decimal

	EntryAt *time.Time
	ExitAt  *time.Time
}

// Paired indica si la entrada tiene una venta emparejada.
func (e *LedgerEntry) Paired() bool {
	return e.Entrada != nil && e.Saida != nil
}

// Document devuelve el documento representativo (la entrada, o la saída huérfana).
func (e *LedgerEntry) Document() *FiscalDocument {
	if e.Entrada != nil {
		return e.Entrada
	}
	return e.Saida
}
