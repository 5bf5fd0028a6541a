package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tabledump/internal/model"
	"tabledump/internal/render"
	"tabledump/internal/service"
	"tabledump/pkg/config"

	"github.com/sirupsen/logrus"
)

// 退出码
const (
	exitOK = iota
	exitConnection
	exitQuery
	exitConfig
)

// envDBPath 环境变量指定数据库路径
const envDBPath = "TABLEDUMP_DB"

// tableList 可重复的 -table 参数
type tableList []string

func (t *tableList) String() string { return strings.Join(*t, ",") }

func (t *tableList) Set(v string) error {
	for _, name := range strings.Split(v, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*t = append(*t, name)
		}
	}
	return nil
}

// configError 参数或配置错误
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		logrus.Errorf("tabledump failed: %v", err)
	}
	os.Exit(exitCode(err))
}

// run 解析参数并执行一次导出
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tabledump", flag.ContinueOnError)
	var (
		dbPath     = fs.String("db", "", "path to the database file (env "+envDBPath+")")
		driver     = fs.String("driver", "", "database engine: sqlite or duckdb")
		configPath = fs.String("config", "", "path to an ini config file")
		format     = fs.String("format", "", "output format: text or json")
		limit      = fs.Int("limit", 0, "max rows per table (0 = all)")
		views      = fs.Bool("views", false, "also dump views")
		system     = fs.Bool("system", false, "include sqlite_ internal tables")
		debug      = fs.Bool("debug", false, "enable debug logging")
		tables     tableList
	)
	fs.Var(&tables, "table", "dump only this table (repeatable)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &configError{err}
	}

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			return &configError{err}
		}
		cfg = loaded
	}

	// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
	if env := os.Getenv(envDBPath); env != "" {
		cfg.Database.Path = env
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["db"] {
		cfg.Database.Path = *dbPath
	}
	if set["driver"] {
		cfg.Database.Driver = *driver
	}
	if set["format"] {
		cfg.Output.Format = *format
	}
	if set["limit"] {
		cfg.Output.Limit = *limit
	}
	if set["views"] {
		cfg.Database.IncludeViews = *views
	}
	if set["system"] {
		cfg.Database.IncludeSystem = *system
	}
	if set["table"] {
		cfg.Database.Tables = tables
	}
	if err := cfg.Validate(); err != nil {
		return &configError{err}
	}

	out, err := render.New(cfg.Output.Format, stdout)
	if err != nil {
		return &configError{err}
	}

	dumper := service.NewDumper(dumperOptions(cfg))

	logrus.Debugf("Database: %s (driver: %s, format: %s)", cfg.Database.Path, cfg.Database.Driver, cfg.Output.Format)
	if _, err := dumper.Run(ctx, out); err != nil {
		return err
	}
	return nil
}

// exitCode 把错误类型映射为退出码
func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return exitOK
	case model.IsConnectionError(err):
		return exitConnection
	case model.IsQueryError(err):
		return exitQuery
	case errors.As(err, &cfgErr), errors.Is(err, model.ErrUnsupportedDriver):
		return exitConfig
	default:
		return exitQuery
	}
}

// dumperOptions 把合并后的配置转换为导出参数
func dumperOptions(cfg *config.Config) service.Options {
	return service.Options{
		Driver:        cfg.Database.Driver,
		Path:          cfg.Database.Path,
		Tables:        nonEmpty(cfg.Database.Tables),
		IncludeViews:  cfg.Database.IncludeViews,
		IncludeSystem: cfg.Database.IncludeSystem,
		Limit:         cfg.Output.Limit,
		MaxOpen:       cfg.Database.MaxOpen,
		MaxIdle:       cfg.Database.MaxIdle,
	}
}

func nonEmpty(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
