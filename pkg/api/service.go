package api

import (
	"net/http"
	"time"

	"github.com/ajinumoto/DebugSwift/internal/capture"
	"github.com/ajinumoto/DebugSwift/internal/config"
	"github.com/ajinumoto/DebugSwift/internal/injector"
	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/internal/service"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// Service 服务接口
type Service interface {
	// Transport 返回串接注入与捕获的传输层
	Transport() http.RoundTripper

	// Client 返回装配好传输层的 HTTP 客户端
	Client() *http.Client

	// DelayConfig 返回当前延迟注入配置
	DelayConfig() injectspec.DelayConfig

	// SetDelayConfig 整体替换延迟注入配置
	SetDelayConfig(cfg injectspec.DelayConfig)

	// FailureConfig 返回当前失败注入配置
	FailureConfig() injectspec.FailureConfig

	// SetFailureConfig 整体替换失败注入配置
	SetFailureConfig(cfg injectspec.FailureConfig)

	// RewriteConfig 返回当前响应重写配置
	RewriteConfig() injectspec.RewriteConfig

	// SetRewriteConfig 整体替换响应重写配置
	SetRewriteConfig(cfg injectspec.RewriteConfig)

	// SubmitRewriteRule 校验并追加一条重写规则
	SubmitRewriteRule(sub injectspec.RuleSubmission) error

	// ApplyDelay 执行延迟注入并返回实际阻塞时长
	ApplyDelay(url, method string) time.Duration

	// DecideFailure 做失败注入决策
	DecideFailure(url, method string) *injector.Failure

	// MatchingRewriteRule 返回命中给定 URL 的首条启用规则
	MatchingRewriteRule(url string) *injectspec.RewriteRule

	// AddRecord 手动追加一条捕获记录
	AddRecord(r *capture.Record) bool

	// Records 返回全部捕获记录快照
	Records() []*capture.Record

	// RemoveRecord 删除指定记录
	RemoveRecord(id string)

	// RemoveAllRecords 清空捕获仓库
	RemoveAllRecords()

	// CaptureEvents 订阅捕获变更事件
	CaptureEvents() <-chan capture.Event

	// Close 释放底层资源
	Close() error
}

// Options 服务构建参数
type Options = service.Options

// NewService 创建并返回服务接口实现
func NewService(opts Options) (Service, error) {
	return service.New(opts)
}

// LoadConfig 从 YAML 文件加载配置，文件不存在时回退到默认配置
func LoadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}

// NewLogger 按配置创建结构化日志器
func NewLogger(opts logger.Options) logger.Logger {
	return logger.New(opts)
}
