package postgres

import (
	"context"
	"database/sql"
	"fmt"

	lookupDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/lookup"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
	"github.com/jmoiron/sqlx"
)

// QuerySource resolves lookup references against registered queries in the
// lookup_sources table. The registered query must yield (value, label)
// rows; it is admin-authored, and the ref itself is always bound as a
// parameter, never interpolated.
type QuerySource struct {
	db *sqlx.DB
}

func NewQuerySource(db *sqlx.DB) lookup.SourceAPI {
	return &QuerySource{db: db}
}

func (s *QuerySource) Resolve(ctx context.Context, ref string) ([]lookup.Option, error) {
	var source lookupDatamodel.LookupSource
	err := s.db.GetContext(ctx, &source,
		`SELECT id, ref, query FROM lookup_sources WHERE ref = $1 AND is_active = true`, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("lookup source %q not registered", ref)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, source.Query)
	if err != nil {
		return nil, fmt.Errorf("lookup query for %q failed: %w", ref, err)
	}
	defer rows.Close()

	var options []lookup.Option
	for rows.Next() {
		var opt lookup.Option
		if err := rows.Scan(&opt.Key, &opt.Label); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return options, nil
}
