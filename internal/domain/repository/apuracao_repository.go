package repository

import (
	"context"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
)

// ApuracaoRepository define el puerto de persistencia de las apurações.
type ApuracaoRepository interface {
	Save(ctx context.Context, a *entity.Apuracao) error
	// GetByID devuelve domain.ErrNotFound si no existe (o expiró).
	GetByID(ctx context.Context, id string) (*entity.Apuracao, error)
	// List devuelve las más recientes primero.
	List(ctx context.Context, limit, offset int) ([]entity.ApuracaoSummary, error)
}
