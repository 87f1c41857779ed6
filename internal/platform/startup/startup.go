package startup

import (
	"fmt"

	"github.com/fluttertask/butterfly-todo-backend/internal/butterfly"
	"github.com/fluttertask/butterfly-todo-backend/internal/reminder"
	"github.com/fluttertask/butterfly-todo-backend/internal/shop"
	"github.com/fluttertask/butterfly-todo-backend/internal/task"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口：
// 迁移各模块的表结构，并预热排行榜缓存。
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := user.PrimeCachedDB(); err != nil {
		return err
	}
	if err := task.MigrateDB(); err != nil {
		return err
	}
	if err := butterfly.MigrateDB(); err != nil {
		return err
	}
	if err := shop.MigrateDB(); err != nil {
		return err
	}
	if err := reminder.MigrateDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建Redis缓存。
// SQL是唯一权威数据源，重建只是从SQL全量刷新派生数据。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")
	if err := user.WarmupCache(); err != nil {
		return err
	}
	fmt.Println("缓存热重建完成。")
	return nil
}
