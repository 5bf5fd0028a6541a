package lru

import (
	"container/list"
	"sync"
	"time"
)

// Cache 按字节数限制容量的LRU缓存，条目超过ttl后失效
type Cache struct {
	mu        sync.Mutex
	maxBytes  int64
	usedBytes int64
	ttl       time.Duration
	ll        *list.List
	cache     map[string]*list.Element
	hits      int64
	misses    int64
	now       func() time.Time
	OnEvicted func(key string, value Value)
}

type entry struct {
	key      string
	value    Value
	createAt time.Time
}

// Value 缓存值接口
type Value interface {
	Len() int
}

// Stats 缓存统计
type Stats struct {
	Entries   int   `json:"entries"`
	UsedBytes int64 `json:"used_bytes"`
	MaxBytes  int64 `json:"max_bytes"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
}

// NewCache 创建LRU缓存；maxBytes<=0不限容量，ttl<=0不过期
func NewCache(maxBytes int64, ttl time.Duration, onEvicted func(string, Value)) *Cache {
	return &Cache{
		maxBytes:  maxBytes,
		ttl:       ttl,
		ll:        list.New(),
		cache:     make(map[string]*list.Element),
		now:       time.Now,
		OnEvicted: onEvicted,
	}
}

// Get 获取缓存值，过期条目会被移除
func (c *Cache) Get(key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.cache[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := ele.Value.(*entry)
	if c.expired(e) {
		c.removeElement(ele)
		c.misses++
		return nil, false
	}
	c.ll.MoveToFront(ele)
	c.hits++
	return e.value, true
}

// Add 添加或更新缓存值
func (c *Cache) Add(key string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ele)
		e := ele.Value.(*entry)
		c.usedBytes += int64(value.Len()) - int64(e.value.Len())
		e.value = value
		e.createAt = c.now()
	} else {
		ele := c.ll.PushFront(&entry{key: key, value: value, createAt: c.now()})
		c.cache[key] = ele
		c.usedBytes += int64(len(key)) + int64(value.Len())
	}

	c.removeExpired()

	for c.maxBytes > 0 && c.usedBytes > c.maxBytes {
		c.removeOldest()
	}
}

// Remove 移除指定缓存
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.cache[key]; ok {
		c.removeElement(ele)
	}
}

// Len 返回缓存条目数量
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.cache = make(map[string]*list.Element)
	c.usedBytes = 0
}

// Stats 返回统计信息
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.ll.Len(),
		UsedBytes: c.usedBytes,
		MaxBytes:  c.maxBytes,
		Hits:      c.hits,
		Misses:    c.misses,
	}
}

func (c *Cache) expired(e *entry) bool {
	return c.ttl > 0 && c.now().Sub(e.createAt) > c.ttl
}

func (c *Cache) removeOldest() {
	if ele := c.ll.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(ele *list.Element) {
	c.ll.Remove(ele)
	e := ele.Value.(*entry)
	delete(c.cache, e.key)
	c.usedBytes -= int64(len(e.key)) + int64(e.value.Len())

	if c.OnEvicted != nil {
		c.OnEvicted(e.key, e.value)
	}
}

// removeExpired 从队尾开始清理过期条目，遇到未过期的即停止
func (c *Cache) removeExpired() {
	for ele := c.ll.Back(); ele != nil; {
		if !c.expired(ele.Value.(*entry)) {
			break
		}
		prev := ele.Prev()
		c.removeElement(ele)
		ele = prev
	}
}
