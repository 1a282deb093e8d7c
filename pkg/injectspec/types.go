// Package injectspec 定义故障注入的三类配置聚合：延迟、失败与响应重写。
// 聚合均为值类型，更新时整体替换，各自携带判断请求是否适用的谓词。
package injectspec

import (
	"reflect"
	"strings"
	"time"

	"github.com/ajinumoto/DebugSwift/pkg/urlmatch"
	"github.com/ajinumoto/DebugSwift/pkg/wildcard"
)

// DelayConfig 延迟注入配置。FixedDelay 一经设置始终优先于随机区间。
type DelayConfig struct {
	Enabled     bool           `json:"enabled"`
	FixedDelay  *time.Duration `json:"fixedDelay,omitempty"`
	MinDelay    time.Duration  `json:"minDelay"`
	MaxDelay    time.Duration  `json:"maxDelay"`
	URLPatterns []string       `json:"urlPatterns,omitempty"`
	HTTPMethods []string       `json:"httpMethods,omitempty"`
}

// AppliesTo 判断请求是否落入 URL 与方法过滤范围，空列表表示不限制
func (c DelayConfig) AppliesTo(url, method string) bool {
	return matchesFilters(url, method, c.URLPatterns, c.HTTPMethods)
}

// FailureKind 失败种类闭集
type FailureKind string

const (
	FailureTimeout        FailureKind = "timeout"
	FailureConnectionLost FailureKind = "connectionLost"
	FailureOffline        FailureKind = "offline"
	FailureHostNotFound   FailureKind = "hostNotFound"
	FailureDNSFailure     FailureKind = "dnsFailure"
	FailureHTTPError      FailureKind = "httpError"
	FailureSSLFailure     FailureKind = "sslFailure"
	FailureCancelled      FailureKind = "cancelled"
	FailureCustom         FailureKind = "custom"
)

// FailureConfig 失败注入配置
type FailureConfig struct {
	Enabled              bool        `json:"enabled"`
	FailureRate          float64     `json:"failureRate"`
	Kind                 FailureKind `json:"kind"`
	HTTPStatusCode       *int        `json:"httpStatusCode,omitempty"`
	CustomDomain         string      `json:"customDomain,omitempty"`
	CustomCode           int         `json:"customCode,omitempty"`
	CustomMessage        string      `json:"customMessage,omitempty"`
	URLPatterns          []string    `json:"urlPatterns,omitempty"`
	HTTPMethods          []string    `json:"httpMethods,omitempty"`
	CandidateStatusCodes []int       `json:"candidateStatusCodes,omitempty"`
}

// NewFailureConfig 创建失败配置，失败率在构造期即被约束到 [0,1]
func NewFailureConfig(kind FailureKind, rate float64) FailureConfig {
	return FailureConfig{
		Kind:                 kind,
		FailureRate:          ClampRate(rate),
		CandidateStatusCodes: DefaultCandidateStatusCodes(),
	}
}

// Normalized 返回约束失败率并补全默认候选状态码后的副本
func (c FailureConfig) Normalized() FailureConfig {
	c.FailureRate = ClampRate(c.FailureRate)
	if len(c.CandidateStatusCodes) == 0 {
		c.CandidateStatusCodes = DefaultCandidateStatusCodes()
	}
	return c
}

// AppliesTo 判断请求是否落入 URL 与方法过滤范围，空列表表示不限制
func (c FailureConfig) AppliesTo(url, method string) bool {
	return matchesFilters(url, method, c.URLPatterns, c.HTTPMethods)
}

// ClampRate 将失败率约束到 [0,1]
func ClampRate(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// DefaultCandidateStatusCodes 返回默认的候选错误状态码集合
func DefaultCandidateStatusCodes() []int {
	return []int{400, 401, 403, 404, 500, 502, 503}
}

// BodyPatch 响应体 JSON 修补操作
type BodyPatch struct {
	Op    string `json:"op"` // set 或 delete
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// BodyPatch 操作种类
const (
	PatchOpSet    = "set"
	PatchOpDelete = "delete"
)

// RewriteRule 响应重写规则，相等性按结构比较
type RewriteRule struct {
	URLPattern         string      `json:"urlPattern"`
	ResponseBody       string      `json:"responseBody"`
	ResponseStatusCode *int        `json:"responseStatusCode,omitempty"`
	BodyPatches        []BodyPatch `json:"bodyPatches,omitempty"`
}

// Equal 结构相等比较
func (r RewriteRule) Equal(o RewriteRule) bool {
	if r.URLPattern != o.URLPattern || r.ResponseBody != o.ResponseBody {
		return false
	}
	if (r.ResponseStatusCode == nil) != (o.ResponseStatusCode == nil) {
		return false
	}
	if r.ResponseStatusCode != nil && *r.ResponseStatusCode != *o.ResponseStatusCode {
		return false
	}
	if len(r.BodyPatches) != len(o.BodyPatches) {
		return false
	}
	for i := range r.BodyPatches {
		a, b := r.BodyPatches[i], o.BodyPatches[i]
		if a.Op != b.Op || a.Path != b.Path || !reflect.DeepEqual(a.Value, b.Value) {
			return false
		}
	}
	return true
}

// RewriteConfig 响应重写配置，规则顺序有语义：首条命中生效
type RewriteConfig struct {
	Enabled bool          `json:"enabled"`
	Rules   []RewriteRule `json:"rules,omitempty"`
}

// EqualRules 判断两个规则序列结构相等
func EqualRules(a, b []RewriteRule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// matchesFilters URL 走查询感知的子串匹配，方法忽略大小写比较
func matchesFilters(url, method string, patterns, methods []string) bool {
	if len(patterns) > 0 {
		hit := false
		for _, raw := range patterns {
			if urlmatch.Parse(raw).MatchURL(url, wildcard.StrategyContains, urlmatch.QuerySubset) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(methods) > 0 {
		hit := false
		for _, m := range methods {
			if strings.EqualFold(m, method) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
