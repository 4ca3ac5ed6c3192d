package persistence

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
)

type PgRecordRepository struct {
	pool *pgxpool.Pool
}

func NewRecordRepository(pool *pgxpool.Pool) section.RecordRepository {
	return &PgRecordRepository{pool: pool}
}

const selectRecords = `
SELECT id, section_id, fields
FROM cv_records
WHERE user_id = $1 AND section_id = ANY($2)`

func (r *PgRecordRepository) GetForUser(ctx context.Context, userID string, sectionIDs []string) ([]section.Record, error) {
	rows, err := r.pool.Query(ctx, selectRecords, userID, sectionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []section.Record
	for rows.Next() {
		var (
			rec     section.Record
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SectionID, &payload); err != nil {
			return nil, err
		}
		rec.Fields = decodeFields(payload)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// decodeFields decodes a record's field payload. A payload that is not
// valid JSON is kept as-is under a single raw key rather than dropping
// the record.
func decodeFields(payload []byte) map[string]any {
	if len(payload) == 0 {
		return map[string]any{}
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return map[string]any{"raw": string(payload)}
	}
	return fields
}
