package injector

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// fakeDatasource 记录持久化调用的内存数据源
type fakeDatasource struct {
	mu     sync.Mutex
	rules  []injectspec.RewriteRule
	saves  int
	failed bool
}

func (f *fakeDatasource) Load() []injectspec.RewriteRule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rules
}

func (f *fakeDatasource) Save(rules []injectspec.RewriteRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("storage unavailable")
	}
	f.rules = rules
	f.saves++
	return nil
}

func TestNewStoreLoadsRulesDisabled(t *testing.T) {
	ds := &fakeDatasource{rules: []injectspec.RewriteRule{{URLPattern: "p", ResponseBody: "b"}}}
	store := NewStore(ds, nil)

	cfg := store.RewriteConfig()
	// 持久化的规则加载后始终停用，须显式重新启用
	assert.False(t, cfg.Enabled)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "p", cfg.Rules[0].URLPattern)
}

func TestSetRewriteConfigPersistsOnChange(t *testing.T) {
	ds := &fakeDatasource{}
	store := NewStore(ds, nil)

	rules := []injectspec.RewriteRule{{URLPattern: "p", ResponseBody: "b"}}
	store.SetRewriteConfig(injectspec.RewriteConfig{Enabled: true, Rules: rules})
	assert.Equal(t, 1, ds.saves)

	// 规则未变只翻转开关，不重复持久化
	store.SetRewriteConfig(injectspec.RewriteConfig{Enabled: false, Rules: rules})
	assert.Equal(t, 1, ds.saves)

	store.SetRewriteConfig(injectspec.RewriteConfig{Enabled: true, Rules: nil})
	assert.Equal(t, 2, ds.saves)
	assert.Empty(t, ds.rules)
}

func TestSetRewriteConfigSurvivesPersistFailure(t *testing.T) {
	ds := &fakeDatasource{failed: true}
	store := NewStore(ds, nil)

	rules := []injectspec.RewriteRule{{URLPattern: "p", ResponseBody: "b"}}
	store.SetRewriteConfig(injectspec.RewriteConfig{Enabled: true, Rules: rules})

	// 持久化失败被吞掉，内存中的配置仍然生效
	assert.True(t, store.RewriteConfig().Enabled)
	assert.Len(t, store.RewriteConfig().Rules, 1)
}

func TestSettersAreIndependent(t *testing.T) {
	store := NewStore(nil, nil)

	store.SetDelayConfig(injectspec.DelayConfig{Enabled: true})
	store.SetFailureConfig(injectspec.FailureConfig{Enabled: true, FailureRate: 2})

	assert.True(t, store.DelayConfig().Enabled)
	failure := store.FailureConfig()
	assert.True(t, failure.Enabled)
	assert.Equal(t, 1.0, failure.FailureRate)
	assert.NotEmpty(t, failure.CandidateStatusCodes)
	assert.False(t, store.RewriteConfig().Enabled)
}

func TestAppendRuleConcurrentKeepsAll(t *testing.T) {
	ds := &fakeDatasource{}
	store := NewStore(ds, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AppendRule(injectspec.RewriteRule{URLPattern: "p", ResponseBody: "b"})
		}()
	}
	wg.Wait()

	// 并发追加不丢失任何一条规则
	assert.Len(t, store.RewriteConfig().Rules, n)
}

func TestAppendRulePersists(t *testing.T) {
	ds := &fakeDatasource{}
	store := NewStore(ds, nil)

	assert.Equal(t, 1, store.AppendRule(injectspec.RewriteRule{URLPattern: "a"}))
	assert.Equal(t, 2, store.AppendRule(injectspec.RewriteRule{URLPattern: "b"}))
	assert.Equal(t, 2, ds.saves)
	require.Len(t, ds.rules, 2)
	assert.Equal(t, "a", ds.rules[0].URLPattern)
}

func TestRewriteConfigReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil)
	store.SetRewriteConfig(injectspec.RewriteConfig{
		Rules: []injectspec.RewriteRule{{URLPattern: "p"}},
	})

	cfg := store.RewriteConfig()
	cfg.Rules[0].URLPattern = "mutated"
	cfg.Rules = append(cfg.Rules, injectspec.RewriteRule{URLPattern: "extra"})

	// 调用方改写返回值不影响存取器内部状态
	got := store.RewriteConfig()
	require.Len(t, got.Rules, 1)
	assert.Equal(t, "p", got.Rules[0].URLPattern)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(&fakeDatasource{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.SetDelayConfig(injectspec.DelayConfig{Enabled: j%2 == 0})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.DelayConfig()
				_ = store.FailureConfig()
				_ = store.RewriteConfig()
			}
		}()
	}
	wg.Wait()
}
