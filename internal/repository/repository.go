package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"tabledump/internal/model"
)

// 支持的数据库引擎
const (
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

// Repository 只读访问数据库目录和表数据
type Repository interface {
	// ListTables 按目录返回的顺序列出表（includeViews时包含视图）
	ListTables(ctx context.Context, includeViews bool) ([]model.TableInfo, error)
	// Columns 返回表的列定义
	Columns(ctx context.Context, table string) ([]model.Column, error)
	// ScanTable 全表扫描，逐行回调；limit<=0 表示不限制
	ScanTable(ctx context.Context, table string, limit int, fn func(model.Row) error) error
	Close() error
}

// Options 连接参数
type Options struct {
	MaxOpen int
	MaxIdle int
}

// Open 按引擎打开只读连接
func Open(ctx context.Context, driver, path string, opts Options) (Repository, error) {
	switch driver {
	case "", DriverSQLite:
		return NewSQLiteRepository(ctx, path, opts)
	case DriverDuckDB:
		return NewDuckDBRepository(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedDriver, driver)
	}
}

// checkFile 确认数据库文件存在且是普通文件，只读打开时不会新建文件
func checkFile(path string) error {
	if path == "" {
		return &model.ConnectionError{Path: path, Err: fmt.Errorf("empty database path")}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return &model.ConnectionError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return &model.ConnectionError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	f, err := os.Open(path)
	if err != nil {
		return &model.ConnectionError{Path: path, Err: err}
	}
	return f.Close()
}

// openDB 打开连接池并执行校验查询，校验失败时关闭连接
func openDB(ctx context.Context, driverName, dsn, path, probe string, opts Options) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &model.ConnectionError{Path: path, Err: err}
	}
	if opts.MaxOpen > 0 {
		db.SetMaxOpenConns(opts.MaxOpen)
	}
	if opts.MaxIdle > 0 {
		db.SetMaxIdleConns(opts.MaxIdle)
	}

	var n int64
	if err := db.QueryRowContext(ctx, probe).Scan(&n); err != nil {
		db.Close()
		return nil, &model.ConnectionError{Path: path, Err: err}
	}
	return db, nil
}

// quoteIdent 转义SQL标识符
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// selectAll 构造全表扫描语句
func selectAll(table string, limit int) string {
	return selectFrom("*", table, limit)
}

// selectPlain 逐列加一元+，结果列不再带声明类型，驱动按存储类型返回原值
// 没有列信息时退回 SELECT *
func selectPlain(table string, columns []model.Column, limit int) string {
	if len(columns) == 0 {
		return selectAll(table, limit)
	}
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = "+" + quoteIdent(c.Name)
	}
	return selectFrom(strings.Join(exprs, ", "), table, limit)
}

func selectFrom(list, table string, limit int) string {
	query := "SELECT " + list + " FROM " + quoteIdent(table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query
}

// scanRows 逐行读取结果集，按列位置转换为model.Row
func scanRows(ctx context.Context, db *sql.DB, table, query string, fn func(model.Row) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &model.QueryError{Table: table, Query: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return &model.QueryError{Table: table, Query: query, Err: err}
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return &model.QueryError{Table: table, Query: query, Err: err}
		}
		row := make(model.Row, len(values))
		for i, v := range values {
			row[i] = model.FromDriver(v)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &model.QueryError{Table: table, Query: query, Err: err}
	}
	return nil
}

// queryColumns 执行返回(name, type)两列的查询
func queryColumns(ctx context.Context, db *sql.DB, table, query string, args ...interface{}) ([]model.Column, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &model.QueryError{Table: table, Query: query, Err: err}
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var name string
		var ctype sql.NullString
		if err := rows.Scan(&name, &ctype); err != nil {
			return nil, &model.QueryError{Table: table, Query: query, Err: err}
		}
		cols = append(cols, model.Column{Name: name, Type: ctype.String})
	}
	if err := rows.Err(); err != nil {
		return nil, &model.QueryError{Table: table, Query: query, Err: err}
	}
	return cols, nil
}
