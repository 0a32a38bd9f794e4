package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdentityKey identifica un vehículo físico: chassi normalizado o, en su defecto, la placa.
// La clave vacía no coincide con ninguna otra (ni consigo misma).
type IdentityKey string

// Usable indica si la clave sirve para agrupar documentos.
func (k IdentityKey) Usable() bool { return k != "" }

// Matches compara dos claves; ambas deben ser no vacías.
func (k IdentityKey) Matches(other IdentityKey) bool {
	return k != "" && other != "" && k == other
}

// VehicleAttributes atributos opcionales del vehículo extraídos de la NFe.
// Cadena vacía = ausente (o anulado por el validador).
type VehicleAttributes struct {
	Chassi        string
	Placa         string
	Renavam       string
	AnoModelo     string
	AnoFabricacao string
	Cor           string
	Quilometragem string
}

// FiscalDocument representa un ítem (det) de una NFe, aplanado con los datos de cabecera.
type FiscalDocument struct {
	SourcePath string
	ItemNumber int // posición del det dentro de la NFe (1..n)
	Sequence   int // orden de entrada en el lote; desempata fechas iguales

	Number         string
	Series         string
	IssuedAt       time.Time
	CFOP           string
	NoteType       string // tpNF (0/1) si el mapa de campos lo provee
	IssuerTaxID    string // solo dígitos
	IssuerName     string
	RecipientTaxID string // solo dígitos
	RecipientName  string
	Product        string
	ItemNotes      string // infAdProd
	Notes          string // infAdProd + infCpl
	TotalValue     decimal.Decimal
	ItemValue      *decimal.Decimal // vProd del ítem, si existe

	Vehicle VehicleAttributes
	// ChassiInherited y PlacaInherited: el valor salió de infCpl y no del propio ítem; en una
	// nota con varios ítems todos lo heredan hasta que se decide a cuál pertenece.
	ChassiInherited bool
	PlacaInherited  bool
	Direction       Direction
}

// Key devuelve la clave de identidad: chassi si existe, si no la placa.
// Los atributos ya llegan normalizados y validados por el validador de identidad.
func (d *FiscalDocument) Key() IdentityKey {
	if d.Vehicle.Chassi != "" {
		return IdentityKey(d.Vehicle.Chassi)
	}
	return IdentityKey(d.Vehicle.Placa)
}

// Value valor usado en el cálculo de lucro: el del ítem cuando existe, si no el total de la nota.
func (d *FiscalDocument) Value() decimal.Decimal {
	if d.ItemValue != nil {
		return *d.ItemValue
	}
	return d.TotalValue
}

// ItemText texto propio del ítem (producto + infAdProd), sin las observaciones de la nota.
func (d *FiscalDocument) ItemText() string {
	if d.ItemNotes == "" {
		return d.Product
	}
	return d.Product + " " + d.ItemNotes
}

// SearchText texto libre del ítem (producto + observaciones) sobre el que corren las regex.
func (d *FiscalDocument) SearchText() string {
	if d.Notes == "" {
		return d.Product
	}
	return d.Product + " " + d.Notes
}
