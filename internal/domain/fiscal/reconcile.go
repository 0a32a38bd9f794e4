package fiscal

import (
	"sort"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// Reconciliation resultado de la conciliación entrada/saída.
type Reconciliation struct {
	Entries        []entity.LedgerEntry     // ordenadas por clave y luego por ciclo
	Unidentifiable []*entity.FiscalDocument // documentos sin chassi ni placa
	Duplicates     []*entity.FiscalDocument // repeticiones excluidas del emparejamiento
}

// timeline documentos de una misma clave, ordenados por emisión.
type timeline struct {
	entradas []*entity.FiscalDocument
	saidas   []*entity.FiscalDocument
}

// Reconcile empareja compras y ventas del mismo vehículo por posición cronológica.
//
// Para cada clave, las entradas y saídas se ordenan por fecha de emisión (empate: orden
// de llegada al lote). Recorriendo la línea de tiempo, una entrada que llega mientras el
// vehículo ya está en estoque, o una saída que sigue a otra saída, es una repetición: se
// conserva la primera y las demás quedan fuera. Luego entradas[i] se empareja con saidas[i].
// Nunca devuelve error; entradas vacías producen un resultado vacío.
func Reconcile(entradas, saidas []*entity.FiscalDocument) Reconciliation {
	var out Reconciliation
	byKey, unidentifiable := partition(entradas, saidas)
	sortByIssue(unidentifiable)
	out.Unidentifiable = unidentifiable

	for _, key := range sortedKeys(byKey) {
		keptE, keptS, dups := dedupe(byKey[key])
		out.Duplicates = append(out.Duplicates, dups...)

		n := max(len(keptE), len(keptS))
		for i := 0; i < n; i++ {
			var e, s *entity.FiscalDocument
			if i < len(keptE) {
				e = keptE[i]
			}
			if i < len(keptS) {
				s = keptS[i]
			}
			out.Entries = append(out.Entries, newEntry(key, i, e, s))
		}
	}
	return out
}

func partition(entradas, saidas []*entity.FiscalDocument) (map[entity.IdentityKey]*timeline, []*entity.FiscalDocument) {
	byKey := make(map[entity.IdentityKey]*timeline)
	var unidentifiable []*entity.FiscalDocument
	get := func(k entity.IdentityKey) *timeline {
		t, ok := byKey[k]
		if !ok {
			t = &timeline{}
			byKey[k] = t
		}
		return t
	}
	for _, d := range entradas {
		if k := d.Key(); k.Usable() {
			t := get(k)
			t.entradas = append(t.entradas, d)
		} else {
			unidentifiable = append(unidentifiable, d)
		}
	}
	for _, d := range saidas {
		if k := d.Key(); k.Usable() {
			t := get(k)
			t.saidas = append(t.saidas, d)
		} else {
			unidentifiable = append(unidentifiable, d)
		}
	}
	for _, t := range byKey {
		sortByIssue(t.entradas)
		sortByIssue(t.saidas)
	}
	return byKey, unidentifiable
}

// dedupe recorre la línea de tiempo de una clave. A igual fecha, la entrada va primero.
func dedupe(t *timeline) (entradas, saidas, dups []*entity.FiscalDocument) {
	const (
		none = iota
		held
		sold
	)
	state := none
	i, j := 0, 0
	for i < len(t.entradas) || j < len(t.saidas) {
		takeEntrada := j >= len(t.saidas) ||
			(i < len(t.entradas) && !t.saidas[j].IssuedAt.Before(t.entradas[i].IssuedAt))
		if takeEntrada {
			d := t.entradas[i]
			i++
			if state == held {
				dups = append(dups, d)
				continue
			}
			entradas = append(entradas, d)
			state = held
			continue
		}
		d := t.saidas[j]
		j++
		if state == sold {
			dups = append(dups, d)
			continue
		}
		saidas = append(saidas, d)
		state = sold
	}
	return entradas, saidas, dups
}

func newEntry(key entity.IdentityKey, cycle int, e, s *entity.FiscalDocument) entity.LedgerEntry {
	entry := entity.LedgerEntry{Key: key, Cycle: cycle, Entrada: e, Saida: s}
	if e != nil {
		purchase := e.Value()
		entryAt := e.IssuedAt
		entry.PurchaseValue = &purchase
		entry.EntryAt = &entryAt
	}
	if s != nil {
		exitAt := s.IssuedAt
		entry.ExitAt = &exitAt
	}
	switch {
	case e != nil && s != nil:
		sale := s.Value()
		profit := sale.Sub(*entry.PurchaseValue)
		entry.Status = entity.StatusVendido
		entry.SaleValue = &sale
		entry.Profit = &profit
	case e != nil:
		entry.Status = entity.StatusEmEstoque
	default:
		entry.Status = entity.StatusErro
	}
	return entry
}

// sortByIssue orden estable por fecha de emisión; empate por secuencia de llegada.
func sortByIssue(docs []*entity.FiscalDocument) {
	sort.SliceStable(docs, func(a, b int) bool {
		if !docs[a].IssuedAt.Equal(docs[b].IssuedAt) {
			return docs[a].IssuedAt.Before(docs[b].IssuedAt)
		}
		return docs[a].Sequence < docs[b].Sequence
	})
}

func sortedKeys(m map[entity.IdentityKey]*timeline) []entity.IdentityKey {
	keys := make([]entity.IdentityKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}
