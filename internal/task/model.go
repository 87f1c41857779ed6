package task

import (
	"time"

	"gorm.io/gorm"
)

// Task 定义了待办任务在数据库中的持久化模型。
type Task struct {
	gorm.Model

	// TaskID 是任务的业务主键（UUID）。
	TaskID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// UserID 是任务归属用户的业务主键。所有读写都以它为范围，
	// 归属他人的任务与不存在的任务对调用方不可区分。
	UserID string `gorm:"index;type:varchar(36);not null"`

	// Title 是任务标题，创建时必填。
	Title string `gorm:"not null"`

	// Description 和 DueDate 是可空字段，补丁中的显式null会清空它们。
	Description *string
	DueDate     *time.Time

	// CompletedAt 为nil表示任务处于开放状态。
	// 首次从nil变为非nil即"完成"，触发积分入账和蝴蝶捕获；
	// 显式置回null是"撤销完成"，只清空本字段，不回收奖励。
	CompletedAt *time.Time

	// Size 和 Priority 是创建时的原始输入，奖励在创建时一次性
	// 算出并固化在蝴蝶上，这两个字段之后仅作展示。
	Size     string
	Priority string
}
