package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ajinumoto/DebugSwift/internal/logger"
)

// DB 数据库连接管理器
type DB struct {
	gormDB *gorm.DB
}

// NewDB 打开数据库连接并执行迁移，DSN 为空时使用跨平台默认路径
func NewDB(dsn string, log logger.Logger) (*DB, error) {
	if dsn == "" {
		path, err := defaultDBPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = path
	}

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	db := &DB{gormDB: gormDB}
	if err := db.autoMigrate(); err != nil {
		return nil, err
	}
	return db, nil
}

// GormDB 获取 gorm.DB 实例
func (d *DB) GormDB() *gorm.DB {
	return d.gormDB
}

// Close 关闭数据库连接
func (d *DB) Close() error {
	if d.gormDB == nil {
		return nil
	}
	sqlDB, err := d.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// defaultDBPath 获取跨平台的数据库文件路径
func defaultDBPath() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// %APPDATA%/DebugSwift/data.db
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		// ~/Library/Application Support/DebugSwift/data.db
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	default:
		// Linux: ~/.local/share/DebugSwift/data.db
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(baseDir, "DebugSwift", "data.db"), nil
}

// autoMigrate 自动迁移所有模型
func (d *DB) autoMigrate() error {
	return d.gormDB.AutoMigrate(
		&Setting{},
	)
}
