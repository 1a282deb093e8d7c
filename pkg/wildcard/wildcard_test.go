package wildcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		value    string
		strategy Strategy
		ci       bool
		want     bool
	}{
		{"star matches any sequence", "https://api.example.com/*", "https://api.example.com/v1/users", StrategyFull, true, true},
		{"star matches empty sequence", "https://api.example.com/*", "https://api.example.com/", StrategyFull, true, true},
		{"question matches single char", "v?", "v1", StrategyFull, true, true},
		{"question rejects two chars", "v?", "v12", StrategyFull, true, false},
		{"question rejects empty", "v?", "v", StrategyFull, true, false},
		{"literal full match", "users", "users", StrategyFull, true, true},
		{"literal full mismatch", "users", "users/1", StrategyFull, true, false},
		{"contains matches substring", "example", "https://api.example.com", StrategyContains, true, true},
		{"contains mismatch", "nothing", "https://api.example.com", StrategyContains, true, false},
		{"regex metacharacters are literal", "a.b", "a.b", StrategyFull, true, true},
		{"dot does not act as wildcard", "a.b", "axb", StrategyFull, true, false},
		{"bracket is literal", "[id]", "[id]", StrategyFull, true, true},
		{"case insensitive by default option", "API", "api", StrategyFull, true, true},
		{"case sensitive when requested", "API", "api", StrategyFull, false, false},
		{"mixed wildcards", "*/users/?", "https://x.com/users/7", StrategyFull, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.pattern).Match(tt.value, tt.strategy, tt.ci)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 全匹配严格强于子串匹配
func TestFullImpliesContains(t *testing.T) {
	patterns := []string{"*", "a*b", "??", "literal", "http*://*.example.com/*"}
	values := []string{"", "ab", "aXb", "literal", "https://api.example.com/v1"}
	for _, p := range patterns {
		for _, v := range values {
			if Compile(p).Match(v, StrategyFull, true) {
				assert.True(t, Compile(p).Match(v, StrategyContains, true),
					"pattern %q value %q", p, v)
			}
		}
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"*.example.com*", "*internal*"}
	assert.True(t, MatchAny("https://api.example.com/v1", patterns, StrategyContains, true))
	assert.True(t, MatchAny("https://INTERNAL.host/x", patterns, StrategyContains, true))
	assert.False(t, MatchAny("https://other.org/", patterns, StrategyContains, true))
	assert.False(t, MatchAny("anything", nil, StrategyContains, true))
}
