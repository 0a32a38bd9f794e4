package fiscal

import (
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/veiculo"
)

// Audit detecta repeticiones de chassi/placa y ventas sin compra.
//
// Solo se auditan documentos de vehículo (según products; nil = todos) con clave no vacía.
// Cada ocurrencia extra de una clave entre las entradas genera DUPLICIDADE_ENTRADA (igual
// para saídas); cada saída cuya clave no aparece en ninguna entrada genera SAIDA_SEM_ENTRADA.
// Si el emparejamiento une una saída con una entrada emitida después, la saída genera
// SAIDA_ANTES_DA_ENTRADA (AVISO).
// Una repetición es CRITICO si quedó fuera del emparejamiento y AVISO si forma un ciclo
// legítimo de recompra. Orden: clave, luego tipo de alerta, luego fecha de emisión.
func Audit(entradas, saidas []*entity.FiscalDocument, products *veiculo.ProductClassifier) []entity.AuditAlert {
	byKey, _ := partition(vehicles(entradas, products), vehicles(saidas, products))

	var alerts []entity.AuditAlert
	for _, key := range sortedKeys(byKey) {
		t := byKey[key]
		keptE, keptS, dups := dedupe(t)
		excluded := make(map[*entity.FiscalDocument]bool, len(dups))
		for _, d := range dups {
			excluded[d] = true
		}

		for i := 1; i < len(t.entradas); i++ {
			alerts = append(alerts, newAlert(entity.AlertDuplicateEntrada, key, t.entradas[i], excluded[t.entradas[i]]))
		}
		for i := 1; i < len(t.saidas); i++ {
			alerts = append(alerts, newAlert(entity.AlertDuplicateSaida, key, t.saidas[i], excluded[t.saidas[i]]))
		}
		if len(t.entradas) == 0 {
			for _, s := range t.saidas {
				a := newAlert(entity.AlertOrphanSaida, key, s, excluded[s])
				a.Severity = entity.SeverityCritical
				alerts = append(alerts, a)
			}
		}
		for i := 0; i < len(keptE) && i < len(keptS); i++ {
			if keptS[i].IssuedAt.Before(keptE[i].IssuedAt) {
				alerts = append(alerts, newAlert(entity.AlertSaidaAntesEntrada, key, keptS[i], false))
			}
		}
	}
	return alerts
}

func newAlert(kind entity.AlertKind, key entity.IdentityKey, doc *entity.FiscalDocument, excluded bool) entity.AuditAlert {
	sev := entity.SeverityWarning
	if excluded {
		sev = entity.SeverityCritical
	}
	return entity.AuditAlert{
		Kind:           kind,
		Direction:      doc.Direction,
		DocumentNumber: doc.Number,
		Key:            key,
		Severity:       sev,
		IssuedAt:       doc.IssuedAt,
		Excluded:       excluded,
	}
}

func vehicles(docs []*entity.FiscalDocument, products *veiculo.ProductClassifier) []*entity.FiscalDocument {
	if products == nil {
		return docs
	}
	out := make([]*entity.FiscalDocument, 0, len(docs))
	for _, d := range docs {
		if products.IsVehicle(d) {
			out = append(out, d)
		}
	}
	return out
}
