package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
)

var ErrSectionNotFound = errors.New("section not found")

type PgSectionRepository struct {
	pool *pgxpool.Pool
}

func NewSectionRepository(pool *pgxpool.Pool) section.Repository {
	return &PgSectionRepository{pool: pool}
}

const selectSections = `
SELECT id, title, attributes, value_domains
FROM cv_sections
ORDER BY position, title`

func (r *PgSectionRepository) GetAll(ctx context.Context) ([]section.Section, error) {
	rows, err := r.pool.Query(ctx, selectSections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []section.Section
	for rows.Next() {
		var (
			s              section.Section
			attrs, domains []byte
		)
		if err := rows.Scan(&s.ID, &s.Title, &attrs, &domains); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &s.Attributes); err != nil {
			return nil, err
		}
		if len(domains) > 0 {
			if err := json.Unmarshal(domains, &s.ValueDomains); err != nil {
				return nil, err
			}
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *PgSectionRepository) GetByID(ctx context.Context, id string) (section.Section, error) {
	var (
		s              section.Section
		attrs, domains []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, attributes, value_domains FROM cv_sections WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &attrs, &domains)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return section.Section{}, ErrSectionNotFound
		}
		return section.Section{}, err
	}
	if err := json.Unmarshal(attrs, &s.Attributes); err != nil {
		return section.Section{}, err
	}
	if len(domains) > 0 {
		if err := json.Unmarshal(domains, &s.ValueDomains); err != nil {
			return section.Section{}, err
		}
	}
	return s, nil
}
