package repository

import (
	"context"
	"database/sql"
	"strings"

	"tabledump/internal/model"

	_ "modernc.org/sqlite"
)

const (
	sqliteProbe        = "SELECT count(*) FROM sqlite_master"
	sqliteTablesQuery  = "SELECT name, type FROM sqlite_master WHERE type = 'table'"
	sqliteObjectsQuery = "SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view')"
	sqliteColumnsQuery = "SELECT name, type FROM pragma_table_xinfo(?) WHERE hidden <> 1"
)

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// sqliteDSN 只读URI，文件不存在时SQLite不会创建
func sqliteDSN(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?mode=ro"
}

func NewSQLiteRepository(ctx context.Context, path string, opts Options) (*SQLiteRepository, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	db, err := openDB(ctx, "sqlite", sqliteDSN(path), path, sqliteProbe, opts)
	if err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db, path: path}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ListTables 查询sqlite_master，不加ORDER BY，保持目录顺序
func (r *SQLiteRepository) ListTables(ctx context.Context, includeViews bool) ([]model.TableInfo, error) {
	query := sqliteTablesQuery
	if includeViews {
		query = sqliteObjectsQuery
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &model.QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	tables := make([]model.TableInfo, 0)
	for rows.Next() {
		var t model.TableInfo
		if err := rows.Scan(&t.Name, &t.Kind); err != nil {
			return nil, &model.QueryError{Query: query, Err: err}
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.QueryError{Query: query, Err: err}
	}
	return tables, nil
}

func (r *SQLiteRepository) Columns(ctx context.Context, table string) ([]model.Column, error) {
	return queryColumns(ctx, r.db, table, sqliteColumnsQuery, table)
}

// ScanTable 按列名展开扫描，DATE/DATETIME 等列原样返回存储的文本或数字
func (r *SQLiteRepository) ScanTable(ctx context.Context, table string, limit int, fn func(model.Row) error) error {
	columns, err := r.Columns(ctx, table)
	if err != nil {
		return err
	}
	return scanRows(ctx, r.db, table, selectPlain(table, columns, limit), fn)
}
