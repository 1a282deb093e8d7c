// Package capture 实现有界、保序、按ID去重的请求捕获历史。
package capture

import (
	"strings"
	"sync"

	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/pkg/wildcard"
)

// DefaultCapacity 捕获历史的默认容量上限
const DefaultCapacity = 10000

// Options 捕获仓库配置
type Options struct {
	Capacity  int      // 容量上限，<=0 时取 DefaultCapacity
	AllowList []string // 非空时仅保留命中任一模式的 URL，优先于 DenyList
	DenyList  []string // 命中任一模式的 URL 被拒绝
	Decrypt   bool     // 全局解密开关
	Cipher    Cipher   // 加密协作方，可为 nil
	Logger    logger.Logger
}

// Store 捕获仓库。互斥锁保证容量、去重与序号不变量的原子性，
// 多个生产者并发调用 Add 是安全的。
type Store struct {
	mu       sync.Mutex
	records  []*Record
	index    map[string]struct{}
	capacity int
	allow    []string
	deny     []string
	decrypt  bool
	cipher   Cipher
	events   chan Event
	log      logger.Logger
}

// NewStore 创建捕获仓库
func NewStore(opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Store{
		index:    make(map[string]struct{}),
		capacity: opts.Capacity,
		allow:    opts.AllowList,
		deny:     opts.DenyList,
		decrypt:  opts.Decrypt,
		cipher:   opts.Cipher,
		events:   make(chan Event, 64),
		log:      opts.Logger,
	}
}

// Add 尝试追加记录，仅当记录真正入库时返回 true。
// 依次执行：空URL拒绝、允许/拒绝列表过滤、按ID去重、容量淘汰、
// 序号分配与解密管线。去重先于容量淘汰，被拒绝的重复记录不会挤掉无关的旧记录。
func (s *Store) Add(r *Record) bool {
	if r == nil || strings.TrimSpace(r.URL) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allowed(r.URL) {
		return false
	}
	if _, dup := s.index[r.ID]; dup {
		s.log.Debug("丢弃重复捕获记录", "id", r.ID)
		return false
	}
	if len(s.records) >= s.capacity {
		s.evictOldestLocked()
	}

	r.SequenceIndex = len(s.records)
	s.maybeDecrypt(r)
	s.records = append(s.records, r)
	s.index[r.ID] = struct{}{}
	s.emit(Event{Type: EventAdded, Record: r})
	return true
}

// allowed 允许列表非空时只看允许列表，否则看拒绝列表
func (s *Store) allowed(url string) bool {
	if len(s.allow) > 0 {
		return wildcard.MatchAny(url, s.allow, wildcard.StrategyContains, true)
	}
	if len(s.deny) > 0 && wildcard.MatchAny(url, s.deny, wildcard.StrategyContains, true) {
		return false
	}
	return true
}

// evictOldestLocked 淘汰最旧的一条记录，调用方须持锁
func (s *Store) evictOldestLocked() {
	oldest := s.records[0]
	rest := make([]*Record, len(s.records)-1, s.capacity)
	copy(rest, s.records[1:])
	s.records = rest
	delete(s.index, oldest.ID)
	s.emit(Event{Type: EventRemoved, Record: oldest})
}

// maybeDecrypt 尽力解密响应体：先尝试按 URL 的自定义解密器，
// 再回退到按 URL 查找密钥的通用解密。任何失败只会让解密字段留空，
// 原始字节始终保留，记录照常入库。
func (s *Store) maybeDecrypt(r *Record) {
	if !s.decrypt || s.cipher == nil || len(r.ResponseBody) == 0 {
		return
	}
	if !s.cipher.IsEncrypted(r.ResponseBody) {
		return
	}
	r.IsEncrypted = true
	if out := s.cipher.CustomDecrypt(r.ResponseBody, r.URL); len(out) > 0 {
		r.DecryptedBody = out
		return
	}
	key := s.cipher.DecryptionKey(r.URL)
	if len(key) == 0 {
		return
	}
	if out := s.cipher.Decrypt(r.ResponseBody, key); len(out) > 0 {
		r.DecryptedBody = out
	}
}

// Records 返回当前记录的快照副本
func (s *Store) Records() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out
}

// Size 返回当前记录数
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Remove 移除所有共享该ID的记录。正常入库路径不会产生重复ID，
// 但移除逻辑不作此假设。
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID == id {
			s.emit(Event{Type: EventRemoved, Record: r})
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	delete(s.index, id)
}

// RemoveAll 清空仓库
func (s *Store) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[string]struct{})
	s.emit(Event{Type: EventCleared})
}

// Events 返回变更事件通道，供检查界面订阅。
// 事件以非阻塞方式投递，消费不及时会丢事件。
func (s *Store) Events() <-chan Event {
	return s.events
}

func (s *Store) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
