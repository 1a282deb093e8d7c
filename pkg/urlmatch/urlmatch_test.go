package urlmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajinumoto/DebugSwift/pkg/wildcard"
)

func TestParse(t *testing.T) {
	t.Run("no query", func(t *testing.T) {
		p := Parse("https://api.example.com/v1/users")
		assert.Equal(t, "https://api.example.com/v1/users", p.Base)
		assert.False(t, p.HasQuery)
		assert.Empty(t, p.Items)
	})

	t.Run("empty pattern defaults to star", func(t *testing.T) {
		p := Parse("")
		assert.Equal(t, "*", p.Base)
	})

	t.Run("fragment is stripped", func(t *testing.T) {
		p := Parse("https://x.com/path#section")
		assert.Equal(t, "https://x.com/path", p.Base)
	})

	t.Run("genuine query delimiter", func(t *testing.T) {
		p := Parse("https://x.com/search?q=go&page=2")
		require.True(t, p.HasQuery)
		assert.Equal(t, "https://x.com/search", p.Base)
		require.Len(t, p.Items, 2)
		assert.Equal(t, QueryItem{Name: "q", Value: "go", HasValue: true}, p.Items[0])
		assert.Equal(t, QueryItem{Name: "page", Value: "2", HasValue: true}, p.Items[1])
	})

	t.Run("single-char wildcard in path is not a delimiter", func(t *testing.T) {
		p := Parse("https://x.com/v?/users")
		assert.False(t, p.HasQuery)
		assert.Equal(t, "https://x.com/v?/users", p.Base)
	})

	t.Run("wildcard question then real query", func(t *testing.T) {
		p := Parse("https://x.com/v?/users?id=1")
		require.True(t, p.HasQuery)
		assert.Equal(t, "https://x.com/v?/users", p.Base)
		require.Len(t, p.Items, 1)
		assert.Equal(t, "id", p.Items[0].Name)
	})

	t.Run("key-only token has no explicit value", func(t *testing.T) {
		p := Parse("*?debug")
		require.True(t, p.HasQuery)
		assert.Equal(t, "*", p.Base)
		require.Len(t, p.Items, 1)
		assert.False(t, p.Items[0].HasValue)
	})

	t.Run("percent decoding", func(t *testing.T) {
		p := Parse("*?name=hello%20world")
		require.Len(t, p.Items, 1)
		assert.Equal(t, "hello world", p.Items[0].Value)
	})

	t.Run("trailing lone question stays in base", func(t *testing.T) {
		p := Parse("https://x.com/a?")
		assert.False(t, p.HasQuery)
		assert.Equal(t, "https://x.com/a?", p.Base)
	})
}

func TestMatchURL(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		base    wildcard.Strategy
		qs      QueryStrategy
		want    bool
	}{
		{"ignore strategy strips url query", "https://x.com/a", "https://x.com/a?id=1", wildcard.StrategyFull, QueryIgnore, true},
		{"no pattern query strips url query", "https://x.com/a", "https://x.com/a?id=1#f", wildcard.StrategyFull, QueryIgnore, true},
		{"base mismatch fails fast", "https://y.com/*", "https://x.com/a?id=1", wildcard.StrategyFull, QuerySubset, false},
		{"subset with extra url items", "*?id=1", "https://x.com/a?id=1&extra=2", wildcard.StrategyFull, QuerySubset, true},
		{"subset missing item", "*?id=1&lang=en", "https://x.com/a?id=1", wildcard.StrategyFull, QuerySubset, false},
		{"exact same items reordered", "*?tag=swift&tag=ios", "https://x.com/a?tag=ios&tag=swift", wildcard.StrategyFull, QueryExact, true},
		{"exact rejects extra repeated item", "*?tag=swift&tag=ios", "https://x.com/a?tag=swift&tag=ios&tag=network", wildcard.StrategyFull, QueryExact, false},
		{"key-only subset token", "*?debug", "https://x.com/a?debug=true&v=1", wildcard.StrategyFull, QuerySubset, true},
		{"key-only token requires key", "*?debug", "https://x.com/a?verbose=1", wildcard.StrategyFull, QuerySubset, false},
		{"wildcard in item value", "*?env=prod*", "https://x.com/a?env=production", wildcard.StrategyFull, QuerySubset, true},
		{"contains base strategy", "example.com", "https://api.example.com/a", wildcard.StrategyContains, QueryIgnore, true},
		{"case insensitive query names", "*?ID=1", "https://x.com/a?id=1", wildcard.StrategyFull, QuerySubset, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.pattern).MatchURL(tt.url, tt.base, tt.qs)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 回溯指派：同名模式项需要占用不同的 URL 查询项
func TestMatchQueryItemsBacktracking(t *testing.T) {
	pattern := []QueryItem{
		{Name: "tag", Value: "*", HasValue: true},
		{Name: "tag", Value: "ios", HasValue: true},
	}
	urlItems := []QueryItem{
		{Name: "tag", Value: "ios", HasValue: true},
		{Name: "tag", Value: "swift", HasValue: true},
	}
	// 通配项先占用 ios 时必须回溯，把 ios 让给第二个模式项
	assert.True(t, MatchQueryItems(pattern, urlItems, QueryExact))

	// exact 数量不一致直接失败
	assert.False(t, MatchQueryItems(pattern, urlItems[:1], QueryExact))
	// subset 允许 URL 剩余项
	assert.True(t, MatchQueryItems(pattern[:1], urlItems, QuerySubset))
}
