package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabledump/internal/fixture"
	"tabledump/internal/model"
	"tabledump/internal/render"
	"tabledump/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo 记录扫描和关闭次数
type fakeRepo struct {
	tables    []model.TableInfo
	rows      map[string][]model.Row
	failTable string
	scans     []string
	closed    int
}

func (f *fakeRepo) ListTables(_ context.Context, includeViews bool) ([]model.TableInfo, error) {
	var out []model.TableInfo
	for _, t := range f.tables {
		if t.Kind == model.KindView && !includeViews {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeRepo) Columns(context.Context, string) ([]model.Column, error) {
	return nil, nil
}

func (f *fakeRepo) ScanTable(_ context.Context, table string, limit int, fn func(model.Row) error) error {
	f.scans = append(f.scans, table)
	if table == f.failTable {
		return &model.QueryError{Table: table, Err: errors.New("no such table")}
	}
	for i, row := range f.rows[table] {
		if limit > 0 && i >= limit {
			break
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepo) Close() error {
	f.closed++
	return nil
}

func newFakeDumper(repo *fakeRepo, opts Options) *Dumper {
	d := NewDumper(opts)
	d.open = func(context.Context, string, string, repository.Options) (repository.Repository, error) {
		return repo, nil
	}
	return d
}

func runText(t *testing.T, d *Dumper) (string, Summary, error) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render.New(render.FormatText, &buf)
	require.NoError(t, err)
	summary, err := d.Run(context.Background(), out)
	return buf.String(), summary, err
}

func dbWith(t *testing.T, stmts []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, fixture.Create(path, stmts))
	return path
}

func TestRunUsersFixture(t *testing.T) {
	d := NewDumper(Options{Path: dbWith(t, fixture.Users)})

	out, summary, err := runText(t, d)
	require.NoError(t, err)

	want := "Tables: [users]\n" +
		"\nContents of table 'users':\n" +
		"(1, 'alice')\n" +
		"(2, 'bob')\n"
	assert.Equal(t, want, out)
	assert.Equal(t, Summary{Tables: 1, Rows: 2}, summary)
}

func TestRunEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	out, summary, err := runText(t, NewDumper(Options{Path: path}))
	require.NoError(t, err)
	assert.Equal(t, "Tables: []\n", out)
	assert.Equal(t, Summary{}, summary)
}

func TestRunZeroTablesPerformsNoScans(t *testing.T) {
	repo := &fakeRepo{}
	out, _, err := runText(t, newFakeDumper(repo, Options{}))
	require.NoError(t, err)

	assert.Equal(t, "Tables: []\n", out)
	assert.Empty(t, repo.scans)
	assert.Equal(t, 1, repo.closed)
}

func TestRunOneSectionPerTable(t *testing.T) {
	out, summary, err := runText(t, NewDumper(Options{Path: dbWith(t, fixture.Sample)}))
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "Contents of table"))
	assert.True(t, strings.HasPrefix(out, "Tables: [users, orders, audit_log]\n"))
	assert.NotContains(t, out, "sqlite_sequence")
	assert.NotContains(t, out, "user_names")
	assert.Equal(t, int64(5), summary.Rows)
}

func TestRunZeroRowTable(t *testing.T) {
	d := NewDumper(Options{Path: dbWith(t, fixture.Sample), Tables: []string{"audit_log"}})

	out, _, err := runText(t, d)
	require.NoError(t, err)
	assert.Equal(t, "Tables: [audit_log]\n\nContents of table 'audit_log':\n", out)
}

func TestRunMissingFile(t *testing.T) {
	d := NewDumper(Options{Path: filepath.Join(t.TempDir(), "nope.db")})

	out, _, err := runText(t, d)
	require.Error(t, err)
	assert.True(t, model.IsConnectionError(err))
	assert.Empty(t, out)
}

func TestRunNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database\n", 100)), 0644))

	out, _, err := runText(t, NewDumper(Options{Path: path}))
	require.Error(t, err)
	assert.True(t, model.IsConnectionError(err))
	assert.Empty(t, out)
}

func TestRunReleasesOnSuccess(t *testing.T) {
	repo := &fakeRepo{
		tables: []model.TableInfo{{Name: "a", Kind: model.KindTable}},
		rows:   map[string][]model.Row{"a": {{model.IntegerValue(1)}}},
	}
	d := newFakeDumper(repo, Options{})

	_, _, err := runText(t, d)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.closed)

	require.NoError(t, d.Release())
	assert.Equal(t, 1, repo.closed, "release is idempotent")
}

func TestRunReleasesOnPartialFailure(t *testing.T) {
	repo := &fakeRepo{
		tables: []model.TableInfo{
			{Name: "first", Kind: model.KindTable},
			{Name: "gone", Kind: model.KindTable},
			{Name: "third", Kind: model.KindTable},
		},
		rows: map[string][]model.Row{
			"first": {{model.TextValue("ok")}},
			"third": {{model.TextValue("never")}},
		},
		failTable: "gone",
	}

	out, _, err := runText(t, newFakeDumper(repo, Options{}))
	require.Error(t, err)
	assert.True(t, model.IsQueryError(err))
	assert.Equal(t, 1, repo.closed)
	assert.Equal(t, []string{"first", "gone"}, repo.scans, "no scans after the failure")
	assert.Contains(t, out, "('ok')")
	assert.NotContains(t, out, "never")
}

func TestRunFilters(t *testing.T) {
	path := dbWith(t, fixture.Sample)

	out, _, err := runText(t, NewDumper(Options{Path: path, IncludeViews: true}))
	require.NoError(t, err)
	assert.Contains(t, out, "\nContents of table 'user_names':\n('alice')\n('bob')\n")

	out, _, err = runText(t, NewDumper(Options{Path: path, IncludeSystem: true}))
	require.NoError(t, err)
	assert.Contains(t, out, "Contents of table 'sqlite_sequence'")
	assert.Contains(t, out, "('orders', 3)")
}

func TestRunLimit(t *testing.T) {
	d := NewDumper(Options{Path: dbWith(t, fixture.Sample), Tables: []string{"orders"}, Limit: 1})

	out, summary, err := runText(t, d)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Rows)
	assert.Equal(t, "Tables: [orders]\n\nContents of table 'orders':\n(1, 1, 9.5, 'first', x'0a0b')\n", out)
}

func TestRunRequestedTableMissing(t *testing.T) {
	d := NewDumper(Options{Path: dbWith(t, fixture.Users), Tables: []string{"users", "ghost"}})

	out, _, err := runText(t, d)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTableNotFound)
	assert.True(t, model.IsQueryError(err))
	assert.Empty(t, out)
}

func TestSelectTablesKeepsCatalogOrder(t *testing.T) {
	tables := []model.TableInfo{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := selectTables(tables, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, model.TableNames(got))
}

func TestDumperRequiresConnect(t *testing.T) {
	d := NewDumper(Options{})

	_, err := d.ListTables(context.Background())
	assert.Error(t, err)
	assert.NoError(t, d.Release())
	assert.Error(t, d.Connect(context.Background()), "cannot reconnect after release")
}
