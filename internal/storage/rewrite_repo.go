package storage

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/ajinumoto/DebugSwift/internal/logger"
	"github.com/ajinumoto/DebugSwift/pkg/injectspec"
)

// RewriteRuleRepo 重写规则持久化仓库。
// 整个规则列表序列化为 JSON 数组存储在单个设置键下，键缺失等价于空列表。
type RewriteRuleRepo struct {
	settings *SettingsRepo
	log      logger.Logger
}

// NewRewriteRuleRepo 创建重写规则仓库
func NewRewriteRuleRepo(settings *SettingsRepo, log logger.Logger) *RewriteRuleRepo {
	if log == nil {
		log = logger.NewNop()
	}
	return &RewriteRuleRepo{settings: settings, log: log}
}

// Load 加载持久化的规则列表。
// 数据损坏时回退为空列表，绝不向宿主应用抛出故障。
func (r *RewriteRuleRepo) Load() []injectspec.RewriteRule {
	raw := r.settings.GetWithDefault(SettingKeyRewriteRules, "")
	if raw == "" {
		return nil
	}
	parsed := gjson.Parse(raw)
	if !gjson.Valid(raw) || !parsed.IsArray() {
		r.log.Warn("重写规则持久化数据损坏，回退为空列表", "key", SettingKeyRewriteRules)
		return nil
	}

	var rules []injectspec.RewriteRule
	for _, item := range parsed.Array() {
		rule := injectspec.RewriteRule{
			URLPattern:   item.Get("urlPattern").String(),
			ResponseBody: item.Get("responseBody").String(),
		}
		if sc := item.Get("responseStatusCode"); sc.Exists() && sc.Type != gjson.Null {
			code := int(sc.Int())
			rule.ResponseStatusCode = &code
		}
		for _, p := range item.Get("bodyPatches").Array() {
			rule.BodyPatches = append(rule.BodyPatches, injectspec.BodyPatch{
				Op:    p.Get("op").String(),
				Path:  p.Get("path").String(),
				Value: p.Get("value").Value(),
			})
		}
		if rule.URLPattern == "" {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Save 持久化规则列表，空列表时删除持久化键而非存储空数组
func (r *RewriteRuleRepo) Save(rules []injectspec.RewriteRule) error {
	if len(rules) == 0 {
		return r.settings.Delete(SettingKeyRewriteRules)
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return r.settings.Set(SettingKeyRewriteRules, string(data))
}
