package entity

import (
	"fmt"
	"time"
)

// AlertKind tipo de alerta de auditoría.
type AlertKind uint8

const (
	AlertDuplicateEntrada AlertKind = iota + 1
	AlertDuplicateSaida
	AlertOrphanSaida
	AlertSaidaAntesEntrada
)

func (k AlertKind) String() string {
	switch k {
	case AlertDuplicateEntrada:
		return "DUPLICIDADE_ENTRADA"
	case AlertDuplicateSaida:
		return "DUPLICIDADE_SAIDA"
	case AlertOrphanSaida:
		return "SAIDA_SEM_ENTRADA"
	case AlertSaidaAntesEntrada:
		return "SAIDA_ANTES_DA_ENTRADA"
	}
	return fmt.Sprintf("AlertKind(%d)", uint8(k))
}

func (k AlertKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AlertKind) UnmarshalText(b []byte) error {
	for _, v := range []AlertKind{AlertDuplicateEntrada, AlertDuplicateSaida, AlertOrphanSaida, AlertSaidaAntesEntrada} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("tipo de alerta desconocido %q", b)
}

// Severity gravedad de la alerta.
type Severity string

const (
	SeverityCritical Severity = "CRITICO" // el documento quedó fuera del emparejamiento o no tiene compra
	SeverityWarning  Severity = "AVISO"   // repetición compatible con una recompra del mismo vehículo
)

// AuditAlert anomalía detectada sobre los documentos de vehículos.
type AuditAlert struct {
	Kind           AlertKind
	Direction      Direction
	DocumentNumber string
	Key            IdentityKey
	Severity       Severity
	IssuedAt       time.Time
	Excluded       bool // el documento no participó del emparejamiento
}
