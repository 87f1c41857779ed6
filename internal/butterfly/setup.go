package butterfly

import (
	"fmt"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
)

// MigrateDB 负责自动迁移数据库表结构
func MigrateDB() error {
	if err := database.DB.AutoMigrate(&Butterfly{}); err != nil {
		return fmt.Errorf("无法迁移butterfly表: %w", err)
	}
	fmt.Println("Butterfly数据库表迁移成功。")
	return nil
}
