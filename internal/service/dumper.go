package service

import (
	"context"
	"fmt"
	"strings"

	"tabledump/internal/model"
	"tabledump/internal/render"
	"tabledump/internal/repository"

	"github.com/sirupsen/logrus"
)

// Options 导出参数
type Options struct {
	Driver        string   // sqlite / duckdb
	Path          string   // 数据库文件路径
	Tables        []string // 只导出这些表，空表示全部
	IncludeViews  bool     // 同时列出视图
	IncludeSystem bool     // 保留 sqlite_ 开头的内部表
	Limit         int      // 每张表最多行数，0表示全部
	MaxOpen       int
	MaxIdle       int
}

// Summary 一次导出的统计
type Summary struct {
	Tables int
	Rows   int64
}

type openFunc func(ctx context.Context, driver, path string, opts repository.Options) (repository.Repository, error)

// Dumper 表导出器，持有唯一的数据库连接
type Dumper struct {
	opts   Options
	open   openFunc
	repo   repository.Repository
	closed bool
}

func NewDumper(opts Options) *Dumper {
	return &Dumper{
		opts: opts,
		open: repository.Open,
	}
}

// Connect 打开只读连接，失败返回ConnectionError
func (d *Dumper) Connect(ctx context.Context) error {
	if d.repo != nil {
		return fmt.Errorf("dumper already connected")
	}
	if d.closed {
		return fmt.Errorf("dumper already released")
	}

	repo, err := d.open(ctx, d.opts.Driver, d.opts.Path, repository.Options{
		MaxOpen: d.opts.MaxOpen,
		MaxIdle: d.opts.MaxIdle,
	})
	if err != nil {
		return err
	}
	d.repo = repo
	logrus.Debugf("[Dumper] Connected to %s (driver: %s)", d.opts.Path, d.driverName())
	return nil
}

// Release 关闭连接，可重复调用
func (d *Dumper) Release() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.repo == nil {
		return nil
	}
	err := d.repo.Close()
	d.repo = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	logrus.Debugf("[Dumper] Released connection to %s", d.opts.Path)
	return nil
}

// ListTables 列出目录中的表，按选项过滤，保持目录顺序
func (d *Dumper) ListTables(ctx context.Context) ([]model.TableInfo, error) {
	if err := d.ensureConnected(); err != nil {
		return nil, err
	}

	all, err := d.repo.ListTables(ctx, d.opts.IncludeViews)
	if err != nil {
		return nil, err
	}

	tables := make([]model.TableInfo, 0, len(all))
	for _, t := range all {
		if !d.opts.IncludeSystem && strings.HasPrefix(t.Name, "sqlite_") {
			continue
		}
		tables = append(tables, t)
	}

	if len(d.opts.Tables) == 0 {
		return tables, nil
	}
	return selectTables(tables, d.opts.Tables)
}

// Columns 返回表的列定义
func (d *Dumper) Columns(ctx context.Context, table string) ([]model.Column, error) {
	if err := d.ensureConnected(); err != nil {
		return nil, err
	}
	return d.repo.Columns(ctx, table)
}

// DumpTable 全表扫描，每行回调一次
func (d *Dumper) DumpTable(ctx context.Context, table string, limit int, fn func(model.Row) error) error {
	if err := d.ensureConnected(); err != nil {
		return err
	}
	return d.repo.ScanTable(ctx, table, limit, fn)
}

// Run 连接、列表、逐表输出、释放连接
func (d *Dumper) Run(ctx context.Context, out render.Renderer) (summary Summary, err error) {
	if err := d.Connect(ctx); err != nil {
		return summary, err
	}
	defer func() {
		if ferr := out.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("failed to write output: %w", ferr)
		}
		if rerr := d.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	tables, err := d.ListTables(ctx)
	if err != nil {
		return summary, err
	}

	names := model.TableNames(tables)
	if err := out.Tables(names); err != nil {
		return summary, err
	}

	for _, name := range names {
		columns, err := d.Columns(ctx, name)
		if err != nil {
			return summary, err
		}
		if err := out.TableHeader(name, columns); err != nil {
			return summary, err
		}

		var count int64
		err = d.DumpTable(ctx, name, d.opts.Limit, func(row model.Row) error {
			count++
			return out.Row(name, row)
		})
		if err != nil {
			return summary, err
		}

		summary.Tables++
		summary.Rows += count
		logrus.Debugf("[Dumper] Table %s: %d rows", name, count)
	}

	logrus.Infof("[Dumper] Dumped %d tables, %d rows from %s", summary.Tables, summary.Rows, d.opts.Path)
	return summary, nil
}

func (d *Dumper) ensureConnected() error {
	if d.repo == nil {
		return fmt.Errorf("dumper is not connected")
	}
	return nil
}

func (d *Dumper) driverName() string {
	if d.opts.Driver == "" {
		return repository.DriverSQLite
	}
	return d.opts.Driver
}

// selectTables 按目录顺序保留请求的表，缺失的表返回QueryError
func selectTables(tables []model.TableInfo, wanted []string) ([]model.TableInfo, error) {
	want := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		want[name] = true
	}

	selected := make([]model.TableInfo, 0, len(wanted))
	for _, t := range tables {
		if want[t.Name] {
			selected = append(selected, t)
			delete(want, t.Name)
		}
	}

	for _, name := range wanted {
		if want[name] {
			return nil, &model.QueryError{Table: name, Err: model.ErrTableNotFound}
		}
	}
	return selected, nil
}
