package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/entity"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/repository"
)

var _ repository.ApuracaoRepository = (*ApuracaoRepo)(nil)

// ApuracaoRepo implementación de ApuracaoRepository sobre PostgreSQL.
// La cabecera y el detalle van en apuracoes (payload JSONB); los trimestres en su propia tabla.
type ApuracaoRepo struct {
	db DB
}

// NewApuracaoRepository construye el adaptador.
func NewApuracaoRepository(db DB) *ApuracaoRepo {
	return &ApuracaoRepo{db: db}
}

// Save persiste la apuração y sus trimestres en una sola transacción.
func (r *ApuracaoRepo) Save(ctx context.Context, a *entity.Apuracao) error {
	payload, err := encodePayload(a)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := a.Summary()
	_, err = tx.Exec(ctx, `
		INSERT INTO apuracoes (id, created_at, files, documents, in_stock, sold, errors, alerts, pending, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.CreatedAt, a.Files, a.Documents, s.InStock, s.Sold, s.Errors, s.Alerts, s.Pending, payload,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("apuração %s ya existe: %w", a.ID, err)
		}
		return fmt.Errorf("insert apuracao: %w", err)
	}

	batch := &pgx.Batch{}
	for _, q := range a.Quarters {
		batch.Queue(`
			INSERT INTO apuracao_trimestres (apuracao_id, trimestre, veiculos_vendidos, lucro, icms, pis_cofins,
				base_irpj_csll, irpj, irpj_adicional, csll, total_tributos, lucro_liquido)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, q.Quarter.String(), q.VehiclesSold, q.Profit, q.ICMS, q.PISCOFINS,
			q.IRPJBase, q.IRPJ, q.IRPJSurtax, q.CSLL, q.TotalTaxes, q.NetProfit,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert trimestres: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID carga la apuração completa.
func (r *ApuracaoRepo) GetByID(ctx context.Context, id string) (*entity.Apuracao, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM apuracoes WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select apuracao: %w", err)
	}
	a, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT trimestre, veiculos_vendidos, lucro, icms, pis_cofins, base_irpj_csll,
		       irpj, irpj_adicional, csll, total_tributos, lucro_liquido
		FROM apuracao_trimestres
		WHERE apuracao_id = $1
		ORDER BY trimestre`, id)
	if err != nil {
		return nil, fmt.Errorf("select trimestres: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			q       entity.QuarterlyTaxRecord
			quarter string
		)
		if err := rows.Scan(&quarter, &q.VehiclesSold, &q.Profit, &q.ICMS, &q.PISCOFINS, &q.IRPJBase,
			&q.IRPJ, &q.IRPJSurtax, &q.CSLL, &q.TotalTaxes, &q.NetProfit); err != nil {
			return nil, fmt.Errorf("scan trimestre: %w", err)
		}
		if q.Quarter, err = entity.ParseQuarter(quarter); err != nil {
			return nil, err
		}
		a.Quarters = append(a.Quarters, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows trimestres: %w", err)
	}
	return a, nil
}

// List devuelve los resúmenes más recientes primero.
func (r *ApuracaoRepo) List(ctx context.Context, limit, offset int) ([]entity.ApuracaoSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, created_at, files, documents, in_stock, sold, errors, alerts, pending
		FROM apuracoes
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list apuracoes: %w", err)
	}
	defer rows.Close()

	out := []entity.ApuracaoSummary{}
	for rows.Next() {
		var s entity.ApuracaoSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Files, &s.Documents, &s.InStock, &s.Sold, &s.Errors, &s.Alerts, &s.Pending); err != nil {
			return nil, fmt.Errorf("scan apuracao: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// encodePayload serializa todo menos los trimestres, que viven en su tabla.
func encodePayload(a *entity.Apuracao) ([]byte, error) {
	cp := *a
	cp.Quarters = nil
	b, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func decodePayload(b []byte) (*entity.Apuracao, error) {
	var a entity.Apuracao
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &a, nil
}
