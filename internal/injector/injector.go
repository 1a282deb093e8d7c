package injector

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/pkg/errx"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
	"github.com/ajinumoto/DebugSwift/pkg/urlmatch"
	"github.com/ajinumoto/DebugSwift/pkg/wildcard"
)

// Rand 随机源。作为依赖注入以便测试替换为确定性实现。
type Rand interface {
	Float64() float64
	Intn(n int) int
	Int63n(n int64) int64
}

// NewRand 创建基于时间种子的默认随机源
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Failure 失败注入结果
type Failure struct {
	Kind       injectspec.FailureKind
	StatusCode int   // 仅 httpError 时有效
	Err        error // 合成的错误实体，由调用方代替真实响应抛出
}

// Injector 故障注入决策器。
// 三个操作相互独立，均针对 Store 的当前快照做纯决策，不含状态机。
type Injector struct {
	store *Store
	mu    sync.Mutex // math/rand.Rand 非并发安全
	rng   Rand
	log   logger.Logger
	sleep func(time.Duration)
}

// New 创建故障注入器，rng 为 nil 时使用时间种子随机源
func New(store *Store, rng Rand, log logger.Logger) *Injector {
	if rng == nil {
		rng = NewRand()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Injector{store: store, rng: rng, log: log, sleep: time.Sleep}
}

// ApplyDelay 按延迟配置同步阻塞当前 goroutine，返回实际延迟时长。
// 配置未启用或请求被过滤时不阻塞并返回 0。延迟一旦开始不可取消，
// 调用方须保证不在对延迟敏感的执行上下文里调用。
func (i *Injector) ApplyDelay(url, method string) time.Duration {
	cfg := i.store.DelayConfig()
	if !cfg.Enabled || !cfg.AppliesTo(url, method) {
		return 0
	}
	d := i.delayDuration(cfg)
	if d <= 0 {
		return 0
	}
	i.log.Debug("注入请求延迟", "url", url, "delay", d.String())
	i.sleep(d)
	return d
}

// delayDuration 固定延迟优先，否则取 [min,max] 区间内的均匀随机值
func (i *Injector) delayDuration(cfg injectspec.DelayConfig) time.Duration {
	if cfg.FixedDelay != nil {
		return *cfg.FixedDelay
	}
	lo, hi := cfg.MinDelay, cfg.MaxDelay
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	i.mu.Lock()
	n := i.rng.Int63n(int64(hi-lo) + 1)
	i.mu.Unlock()
	return lo + time.Duration(n)
}

// DecideFailure 决定是否注入失败，返回 nil 表示放行。
// 抽取一次 [0,1] 均匀随机值，小于等于失败率即注入。
func (i *Injector) DecideFailure(url, method string) *Failure {
	cfg := i.store.FailureConfig()
	if !cfg.Enabled || !cfg.AppliesTo(url, method) {
		return nil
	}
	i.mu.Lock()
	roll := i.rng.Float64()
	i.mu.Unlock()
	if roll > cfg.FailureRate {
		return nil
	}

	f := &Failure{Kind: cfg.Kind}
	switch cfg.Kind {
	case injectspec.FailureHTTPError:
		f.StatusCode = i.resolveStatusCode(cfg)
		f.Err = errx.New(errx.CodeHTTPError, fmt.Sprintf("模拟 HTTP 错误，状态码 %d", f.StatusCode))
	case injectspec.FailureCustom:
		f.Err = errx.New(errx.Code(cfg.CustomDomain), fmt.Sprintf("%d: %s", cfg.CustomCode, cfg.CustomMessage))
	default:
		f.Err = canonicalError(cfg.Kind)
	}
	i.log.Debug("注入请求失败", "url", url, "kind", string(cfg.Kind))
	return f
}

// resolveStatusCode 显式状态码优先，否则从候选集中均匀随机挑选
func (i *Injector) resolveStatusCode(cfg injectspec.FailureConfig) int {
	if cfg.HTTPStatusCode != nil {
		return *cfg.HTTPStatusCode
	}
	codes := cfg.CandidateStatusCodes
	if len(codes) == 0 {
		codes = injectspec.DefaultCandidateStatusCodes()
	}
	i.mu.Lock()
	idx := i.rng.Intn(len(codes))
	i.mu.Unlock()
	return codes[idx]
}

// canonicalError 各失败种类对应的固定错误实体
func canonicalError(kind injectspec.FailureKind) error {
	switch kind {
	case injectspec.FailureTimeout:
		return errx.New(errx.CodeTimeout, "请求超时")
	case injectspec.FailureConnectionLost:
		return errx.New(errx.CodeConnectionLost, "网络连接中断")
	case injectspec.FailureOffline:
		return errx.New(errx.CodeOffline, "网络不可用")
	case injectspec.FailureHostNotFound:
		return errx.New(errx.CodeHostNotFound, "无法找到主机")
	case injectspec.FailureDNSFailure:
		return errx.New(errx.CodeDNSFailure, "DNS 解析失败")
	case injectspec.FailureSSLFailure:
		return errx.New(errx.CodeSSLFailure, "SSL 连接失败")
	case injectspec.FailureCancelled:
		return errx.New(errx.CodeCancelled, "请求已取消")
	default:
		return errx.New(errx.CodeConnectionLost, "网络连接中断")
	}
}

// MatchingRewriteRule 按列表顺序返回首条命中请求 URL 的重写规则。
// 基础匹配用 full 策略，查询匹配用 exact 策略；首条命中即停止，不比较特异度。
// 未启用或无命中时返回 nil。
func (i *Injector) MatchingRewriteRule(url string) *injectspec.RewriteRule {
	cfg := i.store.RewriteConfig()
	if !cfg.Enabled {
		return nil
	}
	for idx := range cfg.Rules {
		if urlmatch.Parse(cfg.Rules[idx].URLPattern).MatchURL(url, wildcard.StrategyFull, urlmatch.QueryExact) {
			rule := cfg.Rules[idx]
			return &rule
		}
	}
	return nil
}
