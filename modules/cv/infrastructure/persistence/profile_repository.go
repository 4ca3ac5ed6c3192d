package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/profile"
)

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) profile.Repository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) GetDeclarations(ctx context.Context, userID string) ([]profile.Declaration, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, title, body, signed_at
FROM cv_declarations
WHERE user_id = $1
ORDER BY signed_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var declarations []profile.Declaration
	for rows.Next() {
		var d profile.Declaration
		if err := rows.Scan(&d.UserID, &d.Title, &d.Body, &d.SignedAt); err != nil {
			return nil, err
		}
		declarations = append(declarations, d)
	}
	return declarations, rows.Err()
}

func (r *PgProfileRepository) GetAffiliations(ctx context.Context, userID string) ([]profile.Affiliation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, role, department, start_year, end_year, is_primary
FROM cv_affiliations
WHERE user_id = $1
ORDER BY is_primary DESC, start_year`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var affiliations []profile.Affiliation
	for rows.Next() {
		var a profile.Affiliation
		if err := rows.Scan(&a.UserID, &a.Role, &a.Department, &a.StartYear, &a.EndYear, &a.Primary); err != nil {
			return nil, err
		}
		affiliations = append(affiliations, a)
	}
	return affiliations, rows.Err()
}
