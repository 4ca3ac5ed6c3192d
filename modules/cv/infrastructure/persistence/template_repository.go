package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

var ErrTemplateNotFound = errors.New("template not found")

type PgTemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) template.Repository {
	return &PgTemplateRepository{pool: pool}
}

const selectTemplates = `
SELECT id, title, start_year, end_year, sort_ascending,
       show_declaration, show_visual_nesting, document_tree
FROM cv_templates`

func (r *PgTemplateRepository) GetAll(ctx context.Context) ([]*template.Template, error) {
	rows, err := r.pool.Query(ctx, selectTemplates+` ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*template.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *PgTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	row := r.pool.QueryRow(ctx, selectTemplates+` WHERE id = $1`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (r *PgTemplateRepository) Save(ctx context.Context, tpl *template.Template) error {
	tree, err := template.EncodeTree(tpl.Root)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO cv_templates (
	id, title, start_year, end_year, sort_ascending,
	show_declaration, show_visual_nesting, document_tree
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	start_year = EXCLUDED.start_year,
	end_year = EXCLUDED.end_year,
	sort_ascending = EXCLUDED.sort_ascending,
	show_declaration = EXCLUDED.show_declaration,
	show_visual_nesting = EXCLUDED.show_visual_nesting,
	document_tree = EXCLUDED.document_tree,
	updated_at = now()`,
		tpl.ID, tpl.Title, tpl.StartYear, tpl.EndYear, tpl.SortAscending,
		tpl.ShowDeclaration, tpl.ShowVisualNesting, tree,
	)
	return err
}

func (r *PgTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cv_templates WHERE id = $1`, id)
	return err
}

func scanTemplate(row pgx.Row) (*template.Template, error) {
	var (
		tpl  template.Template
		tree []byte
	)
	err := row.Scan(
		&tpl.ID, &tpl.Title, &tpl.StartYear, &tpl.EndYear, &tpl.SortAscending,
		&tpl.ShowDeclaration, &tpl.ShowVisualNesting, &tree,
	)
	if err != nil {
		return nil, err
	}
	root, err := template.DecodeTree(tree)
	if err != nil {
		return nil, err
	}
	tpl.Root = root
	return &tpl, nil
}
