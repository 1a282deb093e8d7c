package storage

import (
	"time"
)

// SettingsRepo 设置仓库，提供简单的键值持久化能力
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo 创建设置仓库实例
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get 获取设置值
func (r *SettingsRepo) Get(key string) (string, error) {
	var setting Setting
	result := r.db.GormDB().Where("key = ?", key).First(&setting)
	if result.Error != nil {
		return "", result.Error
	}
	return setting.Value, nil
}

// GetWithDefault 获取设置值，不存在时返回默认值
func (r *SettingsRepo) GetWithDefault(key, defaultValue string) string {
	val, err := r.Get(key)
	if err != nil {
		return defaultValue
	}
	return val
}

// Set 设置值（存在则更新，不存在则创建）
func (r *SettingsRepo) Set(key, value string) error {
	setting := Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.GormDB().Save(&setting).Error
}

// Delete 删除设置
func (r *SettingsRepo) Delete(key string) error {
	return r.db.GormDB().Delete(&Setting{}, "key = ?", key).Error
}
