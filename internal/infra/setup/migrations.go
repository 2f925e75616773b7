package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// MigrateDB 迁移全部数据库模式。
// 模型的字符串列都使用 varchar(191) 规避 MySQL utf8mb4 索引长度限制，
// 因此这里可以直接使用 AutoMigrate。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Message{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
