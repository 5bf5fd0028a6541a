package common

// ByteView 只读的字节切片包装，用作缓存值
type ByteView struct {
	b []byte
}

// NewByteView 创建字节视图（拷贝输入）
func NewByteView(b []byte) ByteView {
	return ByteView{b: cloneBytes(b)}
}

// Len 实现 lru.Value
func (v ByteView) Len() int {
	return len(v.b)
}

// ByteSlice 返回拷贝
func (v ByteView) ByteSlice() []byte {
	return cloneBytes(v.b)
}

func (v ByteView) String() string {
	return string(v.b)
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
