package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGCompoundStore implements CompoundStore backed by PostgreSQL.
type PGCompoundStore struct {
	pool *pgxpool.Pool
}

func (s *PGCompoundStore) Upsert(ctx context.Context, c *Compound) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO chemical_compounds (id, name, formula, properties, synthesis_notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		ON CONFLICT (name) DO UPDATE SET
			formula = EXCLUDED.formula,
			properties = EXCLUDED.properties,
			synthesis_notes = EXCLUDED.synthesis_notes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		c.ID, c.Name, c.Formula, c.Properties, c.SynthesisNotes)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("upsert compound: %w", err)
	}
	return nil
}

func (s *PGCompoundStore) UpsertProperties(ctx context.Context, compoundID uuid.UUID, props []CompoundProperty) error {
	if len(props) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, p := range props {
		b.Queue(`
			INSERT INTO compound_properties (compound_id, attribute, value)
			VALUES ($1,$2,$3)
			ON CONFLICT (compound_id, attribute) DO UPDATE SET value = EXCLUDED.value`,
			compoundID, p.Attribute, p.Value)
	}
	br := s.pool.SendBatch(ctx, b)
	defer br.Close()
	for range props {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert property: %w", err)
		}
	}
	return nil
}

func (s *PGCompoundStore) ListRecent(ctx context.Context) ([]*Compound, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, formula, properties, synthesis_notes, created_at, updated_at
		FROM mv_recent_compounds`)
	if err != nil {
		return nil, fmt.Errorf("list recent compounds: %w", err)
	}
	defer rows.Close()

	var compounds []*Compound
	for rows.Next() {
		c, err := scanCompound(rows)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, c)
	}
	return compounds, rows.Err()
}

func (s *PGCompoundStore) RefreshRecent(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `SELECT refresh_recent_compounds()`); err != nil {
		return fmt.Errorf("refresh recent compounds: %w", err)
	}
	return nil
}

func scanCompound(rows pgx.Rows) (*Compound, error) {
	var c Compound
	err := rows.Scan(
		&c.ID, &c.Name, &c.Formula, &c.Properties, &c.SynthesisNotes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan compound: %w", err)
	}
	return &c, nil
}
