package model

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound 目录中不存在该表
	ErrTableNotFound = errors.New("table not found in catalog")

	// ErrUnsupportedDriver 不支持的数据库引擎
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// ConnectionError 无法打开或读取数据库文件
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError 目录查询或全表扫描失败
type QueryError struct {
	Table string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("query error: %s: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("query error on table %q: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsConnectionError 判断是否为连接错误
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsQueryError 判断是否为查询错误
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
