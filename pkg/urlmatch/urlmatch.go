// Package urlmatch 提供感知查询串的 URL 模式匹配：
// 模式被拆分为基础路径模式与有序查询项模式，基础部分走通配符匹配，
// 查询部分走回溯式一对一指派匹配。
package urlmatch

import (
	"net/url"
	"strings"

	"github.com/ajinumoto/DebugSwift/pkg/wildcard"
)

// QueryStrategy 查询串匹配策略
type QueryStrategy string

const (
	// QueryIgnore 完全不考虑查询串
	QueryIgnore QueryStrategy = "ignore"
	// QuerySubset 模式中每个查询项都须被某个 URL 查询项满足，允许 URL 有多余项
	QuerySubset QueryStrategy = "subset"
	// QueryExact 模式与 URL 查询项必须一一对应，不允许剩余
	QueryExact QueryStrategy = "exact"
)

// QueryItem 单个查询项。HasValue 为 false 表示“键存在即可，值任意”。
type QueryItem struct {
	Name     string
	Value    string
	HasValue bool
}

// Pattern 解析后的 URL 模式
type Pattern struct {
	Base     string
	Items    []QueryItem
	HasQuery bool
}

// Parse 将原始模式串解析为基础模式与查询项模式。
// 先剥离片段，再从左到右定位真正的查询分隔符：紧随其后的段要么含 = 或 &，
// 要么非空且不含 /，否则该 ? 被视为路径中的单字符通配符。
func Parse(raw string) Pattern {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	idx := queryDelimiter(raw)
	if idx < 0 {
		base := raw
		if base == "" {
			base = "*"
		}
		return Pattern{Base: base}
	}
	base := raw[:idx]
	if base == "" {
		base = "*"
	}
	return Pattern{Base: base, Items: parseItems(raw[idx+1:]), HasQuery: true}
}

// queryDelimiter 定位查询分隔符的位置，找不到时返回 -1
func queryDelimiter(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '?' {
			continue
		}
		seg := s[i+1:]
		if j := strings.IndexByte(seg, '?'); j >= 0 {
			seg = seg[:j]
		}
		if strings.ContainsAny(seg, "=&") {
			return i
		}
		if seg != "" && !strings.Contains(seg, "/") {
			return i
		}
	}
	return -1
}

// parseItems 按 & 切分查询串并解码每个键值对
func parseItems(rawQuery string) []QueryItem {
	var items []QueryItem
	for _, tok := range strings.Split(rawQuery, "&") {
		if tok == "" {
			continue
		}
		name, value, found := strings.Cut(tok, "=")
		item := QueryItem{Name: decode(name), HasValue: found}
		if found {
			item.Value = decode(value)
		}
		items = append(items, item)
	}
	return items
}

func decode(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

// MatchURL 按基础策略与查询策略匹配 URL。
// 模式无查询或策略为 ignore 时，基础匹配前会剥掉 URL 的查询与片段；
// 否则以去掉片段的完整 URL 参与基础匹配。基础匹配失败则快速失败。
func (p Pattern) MatchURL(rawURL string, base wildcard.Strategy, qs QueryStrategy) bool {
	target := rawURL
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	urlItems := URLQueryItems(target)
	if !p.HasQuery || qs == QueryIgnore {
		if i := strings.IndexByte(target, '?'); i >= 0 {
			target = target[:i]
		}
	}
	if !wildcard.Compile(p.Base).Match(target, base, true) {
		return false
	}
	if !p.HasQuery || qs == QueryIgnore || len(p.Items) == 0 {
		return true
	}
	return MatchQueryItems(p.Items, urlItems, qs)
}

// URLQueryItems 提取 URL 自身的查询项（重复键各自成项）
func URLQueryItems(rawURL string) []QueryItem {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	i := strings.IndexByte(rawURL, '?')
	if i < 0 {
		return nil
	}
	return parseItems(rawURL[i+1:])
}

// MatchQueryItems 回溯式二部图一对一指派匹配。
// 按模式顺序为每个模式项寻找尚未占用且名称（及显式值）全匹配的 URL 查询项，
// 指派失败时回溯，找到首个完整指派即成功。重复键按多重集处理。
// 最坏情况复杂度随查询项数量指数增长，真实 URL 的查询项数量很小，可以接受。
func MatchQueryItems(patternItems, urlItems []QueryItem, qs QueryStrategy) bool {
	if qs == QueryExact && len(patternItems) != len(urlItems) {
		return false
	}
	used := make([]bool, len(urlItems))
	return assign(patternItems, urlItems, used, 0)
}

func assign(ps, us []QueryItem, used []bool, i int) bool {
	if i == len(ps) {
		return true
	}
	p := ps[i]
	name := wildcard.Compile(p.Name)
	var value wildcard.Pattern
	if p.HasValue {
		value = wildcard.Compile(p.Value)
	}
	for j := range us {
		if used[j] {
			continue
		}
		if !name.Match(us[j].Name, wildcard.StrategyFull, true) {
			continue
		}
		if p.HasValue && !value.Match(us[j].Value, wildcard.StrategyFull, true) {
			continue
		}
		used[j] = true
		if assign(ps, us, used, i+1) {
			return true
		}
		used[j] = false
	}
	return false
}
