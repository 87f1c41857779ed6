package butterfly

import (
	"time"

	"gorm.io/gorm"
)

// Butterfly 定义了蝴蝶在数据库中的持久化模型。
// 每只蝴蝶与一个任务严格1:1，在创建任务的同一个事务中生成。
type Butterfly struct {
	gorm.Model

	// ButterflyID 是蝴蝶的业务主键（UUID）。
	ButterflyID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// TaskID 指向所属任务的业务主键。唯一索引保证1:1不变量。
	TaskID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// Origin 是蝴蝶的图案来源，创建时从用户已购图案中抽取。
	Origin string

	// Size 是蝴蝶的连续尺寸值，纯展示用途。
	Size float64

	// PointsAwarded 是任务完成时入账的积分，创建时固化，之后不再重算。
	PointsAwarded int

	// IsCaught 在任务首次完成、积分入账的同一个事务中翻转为true，
	// 且只翻转一次。不变量：IsCaught == true ⇔ CaughtAt != nil ⇔ 积分已入账。
	IsCaught bool `gorm:"not null;default:false"`
	CaughtAt *time.Time
}
