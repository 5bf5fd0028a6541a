package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tabledump/internal/model"
	"tabledump/pkg/json"
)

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Renderer 把目录和行数据写到输出
type Renderer interface {
	Tables(names []string) error
	TableHeader(table string, columns []model.Column) error
	Row(table string, row model.Row) error
	// Flush 把缓冲内容写出，出错退出前也必须调用
	Flush() error
}

// New 按格式创建Renderer
func New(format string, w io.Writer) (Renderer, error) {
	bw := bufio.NewWriter(w)
	switch format {
	case "", FormatText:
		return &textRenderer{w: bw}, nil
	case FormatJSON:
		return &jsonRenderer{w: bw, enc: json.NewEncoder(bw)}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

type textRenderer struct {
	w *bufio.Writer
}

func (r *textRenderer) Tables(names []string) error {
	_, err := fmt.Fprintf(r.w, "Tables: [%s]\n", strings.Join(names, ", "))
	return err
}

func (r *textRenderer) TableHeader(table string, _ []model.Column) error {
	_, err := fmt.Fprintf(r.w, "\nContents of table '%s':\n", table)
	return err
}

func (r *textRenderer) Row(_ string, row model.Row) error {
	_, err := fmt.Fprintln(r.w, row.String())
	return err
}

func (r *textRenderer) Flush() error {
	return r.w.Flush()
}

type tablesLine struct {
	Tables []string `json:"tables"`
}

type headerLine struct {
	Table   string         `json:"table"`
	Columns []model.Column `json:"columns"`
}

type rowLine struct {
	Table string        `json:"table"`
	Row   []interface{} `json:"row"`
}

// jsonRenderer 每条记录一行JSON
type jsonRenderer struct {
	w   *bufio.Writer
	enc interface{ Encode(interface{}) error }
}

func (r *jsonRenderer) Tables(names []string) error {
	if names == nil {
		names = []string{}
	}
	return r.enc.Encode(tablesLine{Tables: names})
}

func (r *jsonRenderer) TableHeader(table string, columns []model.Column) error {
	if columns == nil {
		columns = []model.Column{}
	}
	return r.enc.Encode(headerLine{Table: table, Columns: columns})
}

func (r *jsonRenderer) Row(table string, row model.Row) error {
	return r.enc.Encode(rowLine{Table: table, Row: row.Values()})
}

func (r *jsonRenderer) Flush() error {
	return r.w.Flush()
}
