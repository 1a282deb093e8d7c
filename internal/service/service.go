// Package service 是组装根：打开数据库、构建注入配置存取器与捕获仓库，
// 并向上暴露配置读写、规则提交与捕获查询的统一入口。
package service

import (
	"net/http"
	"time"

	"github.com/ajinumoto/DebugSwift/internal/capture"
	"github.com/ajinumoto/DebugSwift/internal/config"
	"github.com/ajinumoto/DebugSwift/internal/injector"
	"github.com/ajinumoto/DebugSwift/internal/interceptor"
	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/internal/storage"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// Options 服务构建参数，零值字段均有合理默认
type Options struct {
	Config *config.Config
	Logger logger.Logger

	// Cipher 宿主提供的加密载荷识别与解密实现，nil 时跳过解密管线
	Cipher capture.Cipher

	// BaseTransport 真实发包的底层传输，nil 时使用 http.DefaultTransport
	BaseTransport http.RoundTripper
}

// Service 调试服务实例
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	db      *storage.DB
	store   *injector.Store
	inj     *injector.Injector
	capture *capture.Store
	base    http.RoundTripper
}

// New 创建服务实例并完成各组件装配
func New(opts Options) (*Service, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.New(logger.Options{
			Level:   cfg.Log.Level,
			Writers: cfg.Log.Writer,
			File:    cfg.Log.File,
		})
	}

	db, err := storage.NewDB(cfg.Sqlite.Dsn, log)
	if err != nil {
		return nil, err
	}
	repo := storage.NewRewriteRuleRepo(storage.NewSettingsRepo(db), log)

	store := injector.NewStore(repo, log)
	inj := injector.New(store, injector.NewRand(), log)

	capStore := capture.NewStore(capture.Options{
		Capacity:  cfg.Capture.Capacity,
		AllowList: cfg.Capture.AllowList,
		DenyList:  cfg.Capture.DenyList,
		Decrypt:   cfg.Capture.Decrypt,
		Cipher:    opts.Cipher,
		Logger:    log,
	})

	log.Info("调试服务已装配", "captureCapacity", cfg.Capture.Capacity)
	return &Service{
		cfg:     cfg,
		log:     log,
		db:      db,
		store:   store,
		inj:     inj,
		capture: capStore,
		base:    opts.BaseTransport,
	}, nil
}

// Transport 返回串接了注入与捕获的传输层，可直接装入 http.Client
func (s *Service) Transport() http.RoundTripper {
	return interceptor.New(s.base, s.inj, s.capture, s.log)
}

// Client 返回装配好注入传输层的 HTTP 客户端
func (s *Service) Client() *http.Client {
	return &http.Client{Transport: s.Transport()}
}

// DelayConfig 返回当前延迟注入配置
func (s *Service) DelayConfig() injectspec.DelayConfig {
	return s.store.DelayConfig()
}

// SetDelayConfig 整体替换延迟注入配置
func (s *Service) SetDelayConfig(cfg injectspec.DelayConfig) {
	s.store.SetDelayConfig(cfg)
}

// FailureConfig 返回当前失败注入配置
func (s *Service) FailureConfig() injectspec.FailureConfig {
	return s.store.FailureConfig()
}

// SetFailureConfig 整体替换失败注入配置，失败率会被收敛到 [0,1]
func (s *Service) SetFailureConfig(cfg injectspec.FailureConfig) {
	s.store.SetFailureConfig(cfg)
}

// RewriteConfig 返回当前响应重写配置
func (s *Service) RewriteConfig() injectspec.RewriteConfig {
	return s.store.RewriteConfig()
}

// SetRewriteConfig 整体替换响应重写配置并持久化规则列表
func (s *Service) SetRewriteConfig(cfg injectspec.RewriteConfig) {
	s.store.SetRewriteConfig(cfg)
}

// SubmitRewriteRule 校验表单提交并把新规则追加到现有列表
func (s *Service) SubmitRewriteRule(sub injectspec.RuleSubmission) error {
	rule, err := sub.Validate()
	if err != nil {
		s.log.Warn("重写规则提交被拒绝", "pattern", sub.URLPattern, "err", err)
		return err
	}
	total := s.store.AppendRule(rule)
	s.log.Info("新增重写规则", "pattern", rule.URLPattern, "total", total)
	return nil
}

// ApplyDelay 对给定请求执行延迟注入，返回实际阻塞时长
func (s *Service) ApplyDelay(url, method string) time.Duration {
	return s.inj.ApplyDelay(url, method)
}

// DecideFailure 对给定请求做失败注入决策，未命中时返回 nil
func (s *Service) DecideFailure(url, method string) *injector.Failure {
	return s.inj.DecideFailure(url, method)
}

// MatchingRewriteRule 返回命中给定 URL 的首条启用规则，未命中时返回 nil
func (s *Service) MatchingRewriteRule(url string) *injectspec.RewriteRule {
	return s.inj.MatchingRewriteRule(url)
}

// AddRecord 手动追加一条捕获记录，供不经过传输层的调用方使用
func (s *Service) AddRecord(r *capture.Record) bool {
	return s.capture.Add(r)
}

// Records 返回按到达顺序排列的全部捕获记录快照
func (s *Service) Records() []*capture.Record {
	return s.capture.Records()
}

// RemoveRecord 删除指定 ID 的捕获记录
func (s *Service) RemoveRecord(id string) {
	s.capture.Remove(id)
}

// RemoveAllRecords 清空捕获仓库
func (s *Service) RemoveAllRecords() {
	s.capture.RemoveAll()
}

// CaptureEvents 返回捕获仓库的变更事件通道
func (s *Service) CaptureEvents() <-chan capture.Event {
	return s.capture.Events()
}

// Close 释放底层资源
func (s *Service) Close() error {
	s.log.Info("调试服务关闭")
	return s.db.Close()
}
