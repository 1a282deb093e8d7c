package wildcard

import (
	"regexp"
	"strings"
	"sync"
)

// Strategy 基础匹配策略
type Strategy string

const (
	// StrategyContains 模式可命中值中任意子串
	StrategyContains Strategy = "contains"
	// StrategyFull 模式必须命中完整值
	StrategyFull Strategy = "full"
)

// Pattern 编译后的通配符模式：* 匹配任意字符序列，? 匹配单个字符，
// 其余字符均为字面量。编译永远不会失败，畸形输入只会匹配不到任何值。
type Pattern struct {
	raw  string
	expr string
}

// Compile 将通配符字面量编译为模式
func Compile(raw string) Pattern {
	expr := regexp.QuoteMeta(raw)
	expr = strings.ReplaceAll(expr, `\*`, `.*`)
	expr = strings.ReplaceAll(expr, `\?`, `.`)
	return Pattern{raw: raw, expr: expr}
}

// String 返回原始模式文本
func (p Pattern) String() string { return p.raw }

// Match 按策略匹配值。大小写不敏感是匹配选项，不改变已编译的模式本身。
func (p Pattern) Match(value string, strategy Strategy, caseInsensitive bool) bool {
	expr := p.expr
	if strategy == StrategyFull {
		expr = "^(?:" + expr + ")$"
	}
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	expr = "(?s)" + expr
	re, err := cache.get(expr)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

// MatchAny 任一模式命中即返回 true
func MatchAny(value string, patterns []string, strategy Strategy, caseInsensitive bool) bool {
	for _, raw := range patterns {
		if Compile(raw).Match(value, strategy, caseInsensitive) {
			return true
		}
	}
	return false
}

type rc struct {
	mu sync.Mutex
	m  map[string]*regexp.Regexp
}

var cache = &rc{m: make(map[string]*regexp.Regexp)}

// get 返回缓存中的正则或编译后加入缓存
func (r *rc) get(expr string) (*regexp.Regexp, error) {
	r.mu.Lock()
	re, ok := r.m[expr]
	r.mu.Unlock()
	if ok {
		return re, nil
	}
	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.m[expr] = compiled
	r.mu.Unlock()
	return compiled, nil
}
