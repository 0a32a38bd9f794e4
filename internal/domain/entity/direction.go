package entity

import "fmt"

// Direction sentido de la nota fiscal desde el punto de vista de la revenda.
type Direction uint8

const (
	DirectionIndeterminado Direction = iota // no se pudo decidir; queda para revisión manual
	DirectionEntrada                        // compra del vehículo
	DirectionSaida                          // venta del vehículo
)

func (d Direction) String() string {
	switch d {
	case DirectionEntrada:
		return "Entrada"
	case DirectionSaida:
		return "Saída"
	case DirectionIndeterminado:
		return "Indeterminado"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// MarshalText serializa el sentido con su nombre (JSON/planillas).
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Entrada":
		*d = DirectionEntrada
	case "Saída":
		*d = DirectionSaida
	case "Indeterminado":
		*d = DirectionIndeterminado
	default:
		return fmt.Errorf("sentido desconocido %q", b)
	}
	return nil
}

// InventoryStatus situación del vehículo en el estoque fiscal.
type InventoryStatus uint8

const (
	StatusEmEstoque InventoryStatus = iota + 1 // entrada sin venta
	StatusVendido                              // entrada emparejada con su saída
	StatusErro                                 // saída sin entrada
)

func (s InventoryStatus) String() string {
	switch s {
	case StatusEmEstoque:
		return "Em Estoque"
	case StatusVendido:
		return "Vendido"
	case StatusErro:
		return "Erro"
	}
	return fmt.Sprintf("InventoryStatus(%d)", uint8(s))
}

// MarshalText serializa la situación con su nombre.
func (s InventoryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *InventoryStatus) UnmarshalText(b []byte) error {
	for _, v := range []InventoryStatus{StatusEmEstoque, StatusVendido, StatusErro} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("situación desconocida %q", b)
}
