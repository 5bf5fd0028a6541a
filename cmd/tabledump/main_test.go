package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabledump/internal/fixture"
	"tabledump/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, fixture.Create(path, fixture.Users))
	return path
}

func TestRunPrintsTables(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-db", usersDB(t)}, &out)
	require.NoError(t, err)
	assert.Equal(t, exitOK, exitCode(err))

	assert.Equal(t, "Tables: [users]\n\nContents of table 'users':\n(1, 'alice')\n(2, 'bob')\n", out.String())
}

func TestRunMissingDatabase(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-db", filepath.Join(t.TempDir(), "missing.db")}, &out)

	require.Error(t, err)
	assert.Equal(t, exitConnection, exitCode(err))
	assert.Empty(t, out.String())
}

func TestRunUnknownTable(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-db", usersDB(t), "-table", "ghost"}, &out)

	require.Error(t, err)
	assert.Equal(t, exitQuery, exitCode(err))
}

func TestRunBadArguments(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), []string{"-db", usersDB(t), "-format", "xml"}, &out)
	assert.Equal(t, exitConfig, exitCode(err))

	err = run(context.Background(), []string{"-no-such-flag"}, &out)
	assert.Equal(t, exitConfig, exitCode(err))

	err = run(context.Background(), []string{"-db", usersDB(t), "-driver", "oracle"}, &out)
	assert.Equal(t, exitConfig, exitCode(err))
	assert.Empty(t, out.String())
}

func TestRunJSONFormat(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-db", usersDB(t), "-format", "json"}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"tables":["users"]}`, lines[0])
	assert.JSONEq(t, `{"table":"users","row":[1,"alice"]}`, lines[2])
}

func TestRunJSONInfinity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measures.db")
	require.NoError(t, fixture.Create(path, []string{
		`CREATE TABLE m (id INTEGER, v REAL)`,
		`INSERT INTO m VALUES (1, 9e999), (2, -9e999)`,
	}))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-db", path, "-format", "json"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"table":"m","row":[1,"inf"]}`, lines[2])
	assert.JSONEq(t, `{"table":"m","row":[2,"-inf"]}`, lines[3])

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-db", path}, &out))
	assert.Contains(t, out.String(), "(1, inf)\n(2, -inf)\n")
}

func TestRunPathPrecedence(t *testing.T) {
	dir := t.TempDir()
	fromConfig := usersDB(t)
	configPath := filepath.Join(dir, "tabledump.ini")
	require.NoError(t, os.WriteFile(configPath, []byte("[database]\npath = "+fromConfig+"\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", configPath}, &out))
	assert.Contains(t, out.String(), "(1, 'alice')")

	// 环境变量覆盖配置文件
	t.Setenv(envDBPath, filepath.Join(dir, "from-env.db"))
	err := run(context.Background(), []string{"-config", configPath}, &out)
	assert.Equal(t, exitConnection, exitCode(err))

	// 命令行覆盖环境变量
	out.Reset()
	require.NoError(t, run(context.Background(), []string{"-config", configPath, "-db", fromConfig}, &out))
	assert.Contains(t, out.String(), "(2, 'bob')")
}

func TestTableListFlag(t *testing.T) {
	var tl tableList
	require.NoError(t, tl.Set("a, b"))
	require.NoError(t, tl.Set("c"))
	assert.Equal(t, tableList{"a", "b", "c"}, tl)
	assert.Equal(t, "a,b,c", tl.String())
}

func TestDumperOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Database.MaxOpen = 4
	cfg.Database.MaxIdle = 2
	cfg.Database.Tables = []string{"users", " ", "orders"}
	cfg.Output.Limit = 10

	opts := dumperOptions(cfg)
	assert.Equal(t, 4, opts.MaxOpen)
	assert.Equal(t, 2, opts.MaxIdle)
	assert.Equal(t, []string{"users", "orders"}, opts.Tables)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, config.DefaultDBPath, opts.Path)
}
