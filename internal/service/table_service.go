package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tabledump/internal/cache/lru"
	"tabledump/internal/model"
	"tabledump/pkg/common"
	"tabledump/pkg/json"

	"github.com/sirupsen/logrus"
)

// TableService HTTP查询用的表服务，共享一个已连接的Dumper
// Dumper连接后只读，可被多个请求并发使用
type TableService struct {
	dumper   *Dumper
	cache    *lru.Cache
	maxLimit int
}

// CacheOptions 响应缓存配置
type CacheOptions struct {
	MaxBytes int64
	TTL      time.Duration
}

// NewTableService 创建表服务，dumper必须已Connect
func NewTableService(dumper *Dumper, cacheOpts CacheOptions, maxLimit int) *TableService {
	cache := lru.NewCache(cacheOpts.MaxBytes, cacheOpts.TTL, func(key string, value lru.Value) {
		logrus.Debugf("[TableService] Cache evicted: %s", key)
	})
	return &TableService{
		dumper:   dumper,
		cache:    cache,
		maxLimit: maxLimit,
	}
}

// ListTables 列出目录中的表
func (s *TableService) ListTables(ctx context.Context) ([]model.TableInfo, error) {
	return s.dumper.ListTables(ctx)
}

// ReadTable 读取表内容，返回JSON编码后的TableDump
// 表名必须出现在目录中，否则返回ErrTableNotFound
func (s *TableService) ReadTable(ctx context.Context, name string, limit int) ([]byte, error) {
	if s.maxLimit > 0 && (limit <= 0 || limit > s.maxLimit) {
		limit = s.maxLimit
	}

	cacheKey := fmt.Sprintf("%s|%d", name, limit)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if view, ok := cached.(common.ByteView); ok {
			logrus.Debugf("[TableService] Cache hit: %s", cacheKey)
			return view.ByteSlice(), nil
		}
	}

	if err := s.checkTable(ctx, name); err != nil {
		return nil, err
	}

	columns, err := s.dumper.Columns(ctx, name)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []model.Column{}
	}

	dump := &model.TableDump{
		Name:    name,
		Columns: columns,
		Rows:    make([][]interface{}, 0),
	}
	err = s.dumper.DumpTable(ctx, name, limit, func(row model.Row) error {
		dump.Rows = append(dump.Rows, row.Values())
		return nil
	})
	if err != nil {
		return nil, err
	}
	dump.RowCount = len(dump.Rows)

	data, err := json.Marshal(dump)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table %s: %w", name, err)
	}
	s.cache.Add(cacheKey, common.NewByteView(data))
	return data, nil
}

// Stats 缓存统计
func (s *TableService) Stats() lru.Stats {
	return s.cache.Stats()
}

func (s *TableService) checkTable(ctx context.Context, name string) error {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t.Name == name {
			return nil
		}
	}
	return &model.QueryError{Table: name, Err: model.ErrTableNotFound}
}

// IsNotFound 判断是否为表不存在
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrTableNotFound)
}
