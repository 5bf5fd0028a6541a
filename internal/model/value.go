package model

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind 值类型标签
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// String 返回类型名称
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value 列值，按Kind解释对应字段
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
	Blob  []byte
}

// NullValue 空值
func NullValue() Value { return Value{Kind: KindNull} }

// IntegerValue 整数值
func IntegerValue(v int64) Value { return Value{Kind: KindInteger, Int: v} }

// FloatValue 浮点值
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// TextValue 文本值
func TextValue(v string) Value { return Value{Kind: KindText, Text: v} }

// BlobValue 二进制值
func BlobValue(v []byte) Value {
	b := make([]byte, len(v))
	copy(b, v)
	return Value{Kind: KindBlob, Blob: b}
}

// IsNull 是否为空值
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// FromDriver 把database/sql扫描出的值转换为Value
// 驱动返回的[]byte在下一次Scan时会被复用，这里会拷贝
func FromDriver(src interface{}) Value {
	switch vv := src.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntegerValue(vv)
	case int32:
		return IntegerValue(int64(vv))
	case int16:
		return IntegerValue(int64(vv))
	case int8:
		return IntegerValue(int64(vv))
	case int:
		return IntegerValue(int64(vv))
	case uint8:
		return IntegerValue(int64(vv))
	case uint16:
		return IntegerValue(int64(vv))
	case uint32:
		return IntegerValue(int64(vv))
	case uint64:
		if vv > math.MaxInt64 {
			return TextValue(strconv.FormatUint(vv, 10))
		}
		return IntegerValue(int64(vv))
	case bool:
		if vv {
			return IntegerValue(1)
		}
		return IntegerValue(0)
	case float64:
		return FloatValue(vv)
	case float32:
		return FloatValue(float64(vv))
	case string:
		return TextValue(vv)
	case []byte:
		return BlobValue(vv)
	case time.Time:
		return TextValue(vv.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return TextValue(vv.String())
	default:
		return TextValue(fmt.Sprintf("%v", vv))
	}
}

// Interface 返回适合JSON编码的原生值
// NaN和±Inf无法编码为JSON数字，输出与文本格式相同的字符串
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return formatFloat(v.Float)
		}
		return v.Float
	case KindText:
		return v.Text
	case KindBlob:
		return v.Blob
	default:
		return nil
	}
}

// String 以默认文本形式输出
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindText:
		return quoteText(v.Text)
	case KindBlob:
		return "x'" + hex.EncodeToString(v.Blob) + "'"
	default:
		return "?"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

var textEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quoteText(s string) string {
	return "'" + textEscaper.Replace(s) + "'"
}
