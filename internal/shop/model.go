package shop

import (
	"gorm.io/gorm"
)

// ItemTypePattern 是蝴蝶图案类商品的类型标识。
// 用户已购的图案会成为奖励生成器的抽取池。
const ItemTypePattern = "pattern"

// ShopItem 定义了商店商品在数据库中的持久化模型。
// 商品目录按用户隔离：用户只能看到并购买自己目录下的商品
// （这是对原始设计的保留，见DESIGN.md）。
type ShopItem struct {
	gorm.Model

	// ItemID 是商品的业务主键（UUID）。
	ItemID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// UserID 是商品归属用户的业务主键。
	UserID string `gorm:"index;type:varchar(36);not null"`

	ItemName  string `gorm:"not null"`
	ItemType  string `gorm:"not null"`
	ItemColor string `gorm:"not null"`

	// ItemCost 是购买所需积分，必须为正。
	ItemCost int `gorm:"not null"`

	ItemDescription *string

	// IsOwned 初始为false，在扣减积分的同一个事务中翻转为true，
	// 且只翻转一次。
	IsOwned bool `gorm:"not null;default:false"`
}
