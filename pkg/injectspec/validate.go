package injectspec

import (
	"strings"

	"github.com/ajinumoto/DebugSwift/pkg/errx"
)

// RuleSubmission 规则编辑界面提交的原始表单
type RuleSubmission struct {
	URLPattern         string `json:"urlPattern"`
	ResponseBody       string `json:"responseBody"`
	ResponseStatusCode *int   `json:"responseStatusCode,omitempty"`
}

// Validate 校验提交并返回规范化后的规则。
// 校验失败以可恢复错误返回给提交方，不会成为内部故障。
func (s RuleSubmission) Validate() (RewriteRule, error) {
	pattern := strings.TrimSpace(s.URLPattern)
	if pattern == "" {
		return RewriteRule{}, errx.New(errx.CodeInvalidPattern, "URL 模式不能为空")
	}
	if s.ResponseStatusCode != nil {
		if code := *s.ResponseStatusCode; code < 100 || code > 599 {
			return RewriteRule{}, errx.New(errx.CodeInvalidStatusCode, "状态码必须在 100 到 599 之间")
		}
	}
	return RewriteRule{
		URLPattern:         pattern,
		ResponseBody:       s.ResponseBody,
		ResponseStatusCode: s.ResponseStatusCode,
	}, nil
}
