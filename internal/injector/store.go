// Package injector 承载注入配置存取与故障注入决策。
// 配置由宿主进程构造一次的 Store 持有，拦截器与检查界面共享同一实例。
package injector

import (
	"sync"

	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// Datasource 重写规则的持久化能力
type Datasource interface {
	Load() []injectspec.RewriteRule
	Save(rules []injectspec.RewriteRule) error
}

// Store 注入配置存取器。
// 读写锁保护三个相互独立的聚合：并发读互不阻塞，写独占。
// 三个聚合不作为整体事务更新，每个 setter 只影响自己的聚合。
type Store struct {
	mu      sync.RWMutex
	delay   injectspec.DelayConfig
	failure injectspec.FailureConfig
	rewrite injectspec.RewriteConfig
	ds      Datasource
	log     logger.Logger
}

// NewStore 创建配置存取器并加载持久化的重写规则。
// 无论持久化中记录过什么，加载后的重写配置始终处于停用状态，须显式重新启用。
func NewStore(ds Datasource, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{
		ds:      ds,
		log:     log,
		failure: injectspec.FailureConfig{Kind: injectspec.FailureTimeout}.Normalized(),
	}
	if ds != nil {
		s.rewrite = injectspec.RewriteConfig{Enabled: false, Rules: ds.Load()}
		if n := len(s.rewrite.Rules); n > 0 {
			log.Info("已加载持久化重写规则", "count", n)
		}
	}
	return s
}

// DelayConfig 返回当前延迟配置
func (s *Store) DelayConfig() injectspec.DelayConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delay
}

// SetDelayConfig 整体替换延迟配置
func (s *Store) SetDelayConfig(cfg injectspec.DelayConfig) {
	s.mu.Lock()
	s.delay = cfg
	s.mu.Unlock()
}

// FailureConfig 返回当前失败配置
func (s *Store) FailureConfig() injectspec.FailureConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// SetFailureConfig 整体替换失败配置，失败率与候选状态码在此规范化
func (s *Store) SetFailureConfig(cfg injectspec.FailureConfig) {
	normalized := cfg.Normalized()
	s.mu.Lock()
	s.failure = normalized
	s.mu.Unlock()
}

// RewriteConfig 返回当前重写配置。
// 规则列表返回副本，调用方修改不会影响存取器内部状态。
func (s *Store) RewriteConfig() injectspec.RewriteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.rewrite
	cfg.Rules = append([]injectspec.RewriteRule(nil), s.rewrite.Rules...)
	return cfg
}

// SetRewriteConfig 整体替换重写配置。
// 规则列表与上一版结构不同才触发持久化；持久化在临界区外执行，保持临界区最小。
func (s *Store) SetRewriteConfig(cfg injectspec.RewriteConfig) {
	s.mu.Lock()
	changed := !injectspec.EqualRules(s.rewrite.Rules, cfg.Rules)
	s.rewrite = cfg
	s.mu.Unlock()

	if changed && s.ds != nil {
		if err := s.ds.Save(cfg.Rules); err != nil {
			s.log.Warn("持久化重写规则失败", "error", err)
		}
	}
}

// AppendRule 把一条规则原子地追加到现有列表末尾并持久化，返回追加后的规则总数。
// 读取、追加与状态更新在同一临界区内完成，并发追加不会互相覆盖。
func (s *Store) AppendRule(rule injectspec.RewriteRule) int {
	s.mu.Lock()
	s.rewrite.Rules = append(s.rewrite.Rules, rule)
	rules := append([]injectspec.RewriteRule(nil), s.rewrite.Rules...)
	s.mu.Unlock()

	if s.ds != nil {
		if err := s.ds.Save(rules); err != nil {
			s.log.Warn("持久化重写规则失败", "error", err)
		}
	}
	return len(rules)
}
