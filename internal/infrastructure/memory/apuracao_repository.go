// Package memory guarda las apurações en memoria con expiración (go-cache).
// Se usa cuando no hay PostgreSQL configurado (STORAGE_DRIVER=memory) y en la CLI.
package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/repository"
)

var _ repository.ApuracaoRepository = (*ApuracaoRepo)(nil)

// ApuracaoRepo implementación en memoria de ApuracaoRepository.
type ApuracaoRepo struct {
	c *gocache.Cache
}

// NewApuracaoRepository construye el store; ttl <= 0 significa sin expiración.
func NewApuracaoRepository(ttl time.Duration) *ApuracaoRepo {
	exp := ttl
	if ttl <= 0 {
		exp = gocache.NoExpiration
	}
	return &ApuracaoRepo{c: gocache.New(exp, 10*time.Minute)}
}

// Save guarda (o reemplaza) una copia de la apuração.
func (r *ApuracaoRepo) Save(_ context.Context, a *entity.Apuracao) error {
	r.c.SetDefault(a.ID, clone(a))
	return nil
}

// GetByID devuelve domain.ErrNotFound si no existe o expiró.
func (r *ApuracaoRepo) GetByID(_ context.Context, id string) (*entity.Apuracao, error) {
	v, ok := r.c.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(v.(*entity.Apuracao)), nil
}

// List recorre los ítems vigentes, más recientes primero.
func (r *ApuracaoRepo) List(_ context.Context, limit, offset int) ([]entity.ApuracaoSummary, error) {
	items := r.c.Items()
	out := make([]entity.ApuracaoSummary, 0, len(items))
	for _, it := range items {
		if a, ok := it.Object.(*entity.Apuracao); ok {
			out = append(out, a.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if offset >= len(out) {
		return []entity.ApuracaoSummary{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// clone copia la apuração y sus slices; los FiscalDocument se comparten porque no se
// modifican después del procesamiento.
func clone(a *entity.Apuracao) *entity.Apuracao {
	c := *a
	c.Ledger = slices.Clone(a.Ledger)
	c.Alerts = slices.Clone(a.Alerts)
	c.Quarters = slices.Clone(a.Quarters)
	c.Indeterminate = slices.Clone(a.Indeterminate)
	c.Unidentifiable = slices.Clone(a.Unidentifiable)
	c.Duplicates = slices.Clone(a.Duplicates)
	c.NonVehicles = slices.Clone(a.NonVehicles)
	c.Issues = slices.Clone(a.Issues)
	return &c
}
