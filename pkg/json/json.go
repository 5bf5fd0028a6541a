package json

import (
	stdjson "encoding/json"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var std = jsoniter.ConfigCompatibleWithStandardLibrary

// RawMessage 已编码的JSON，原样嵌入
type RawMessage = stdjson.RawMessage

// Marshal 序列化
func Marshal(v interface{}) ([]byte, error) {
	return std.Marshal(v)
}

// Unmarshal 反序列化
func Unmarshal(data []byte, v interface{}) error {
	return std.Unmarshal(data, v)
}

// NewEncoder 创建流式编码器，每次Encode写一行
func NewEncoder(w io.Writer) *jsoniter.Encoder {
	return std.NewEncoder(w)
}

// NewDecoder 创建流式解码器
func NewDecoder(r io.Reader) *jsoniter.Decoder {
	return std.NewDecoder(r)
}
