package user

import (
	"gorm.io/gorm"
)

// User 定义了用户在数据库中的持久化模型。
// 身份认证在系统外部完成，这里只存储画像和积分余额。
type User struct {
	gorm.Model

	// UserID 是用户的业务主键（UUID），由外部身份解析层提供。
	UserID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// FirstName / LastName 是用户的画像字段，由用户自行编辑。
	FirstName string
	LastName  string

	// Email 来自外部身份系统，首次激活时可能为空。
	Email string `gorm:"index"`

	// Points 是用户的积分余额。
	// 不变量：任何操作序列之后都不允许为负，由账本在事务内强制保证。
	Points int `gorm:"not null;default:0"`
}
