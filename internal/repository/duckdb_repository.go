package repository

import (
	"context"
	"database/sql"

	"tabledump/internal/model"

	_ "github.com/marcboeker/go-duckdb"
)

const (
	duckdbProbe       = "SELECT count(*) FROM information_schema.tables"
	duckdbTablesQuery = `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = 'main' AND table_type IN ('BASE TABLE', 'VIEW')`
	duckdbColumnsQuery = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position`
)

// DuckDBRepository DuckDB文件的只读访问
type DuckDBRepository struct {
	db   *sql.DB
	path string
}

func NewDuckDBRepository(ctx context.Context, path string, opts Options) (*DuckDBRepository, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	db, err := openDB(ctx, "duckdb", path+"?access_mode=read_only", path, duckdbProbe, opts)
	if err != nil {
		return nil, err
	}

	return &DuckDBRepository{db: db, path: path}, nil
}

func (r *DuckDBRepository) Close() error {
	return r.db.Close()
}

func (r *DuckDBRepository) ListTables(ctx context.Context, includeViews bool) ([]model.TableInfo, error) {
	rows, err := r.db.QueryContext(ctx, duckdbTablesQuery)
	if err != nil {
		return nil, &model.QueryError{Query: duckdbTablesQuery, Err: err}
	}
	defer rows.Close()

	tables := make([]model.TableInfo, 0)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, &model.QueryError{Query: duckdbTablesQuery, Err: err}
		}
		kind := model.KindTable
		if typ == "VIEW" {
			if !includeViews {
				continue
			}
			kind = model.KindView
		}
		tables = append(tables, model.TableInfo{Name: name, Kind: kind})
	}
	if err := rows.Err(); err != nil {
		return nil, &model.QueryError{Query: duckdbTablesQuery, Err: err}
	}
	return tables, nil
}

func (r *DuckDBRepository) Columns(ctx context.Context, table string) ([]model.Column, error) {
	return queryColumns(ctx, r.db, table, duckdbColumnsQuery, table)
}

func (r *DuckDBRepository) ScanTable(ctx context.Context, table string, limit int, fn func(model.Row) error) error {
	return scanRows(ctx, r.db, table, selectAll(table, limit), fn)
}
