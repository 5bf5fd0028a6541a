package model

import "strings"

// 目录条目类型
const (
	KindTable = "table"
	KindView  = "view"
)

// TableInfo 目录中的表条目
type TableInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Column 列定义
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row 一行数据，按列位置排列
type Row []Value

// String 以元组形式输出，如 (1, 'alice')
func (r Row) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Values 返回适合JSON编码的原生值切片
func (r Row) Values() []interface{} {
	out := make([]interface{}, len(r))
	for i, v := range r {
		out[i] = v.Interface()
	}
	return out
}

// TableDump 一张表的完整内容（HTTP接口使用）
type TableDump struct {
	Name     string          `json:"name"`
	Columns  []Column        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// TableNames 提取表名列表
func TableNames(tables []TableInfo) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
