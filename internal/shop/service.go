package shop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateInput 是创建商品的入参。
type CreateInput struct {
	ItemName        string
	ItemType        string
	ItemColor       string
	ItemCost        int
	ItemDescription *string
}

// Create 创建一个新商品。IsOwned固定从false开始，不碰账本。
func Create(userID string, input CreateInput) (*ShopItem, error) {
	if strings.TrimSpace(input.ItemName) == "" {
		return nil, &apperr.ValidationError{Field: "itemName", Reason: "不能为空"}
	}
	if strings.TrimSpace(input.ItemType) == "" {
		return nil, &apperr.ValidationError{Field: "itemType", Reason: "不能为空"}
	}
	if strings.TrimSpace(input.ItemColor) == "" {
		return nil, &apperr.ValidationError{Field: "itemColor", Reason: "不能为空"}
	}
	if input.ItemCost <= 0 {
		return nil, &apperr.ValidationError{Field: "itemCost", Reason: "必须为正整数"}
	}

	itemID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("无法生成商品ID: %w", err)
	}

	item := ShopItem{
		ItemID:          itemID.String(),
		UserID:          userID,
		ItemName:        input.ItemName,
		ItemType:        input.ItemType,
		ItemColor:       input.ItemColor,
		ItemCost:        input.ItemCost,
		ItemDescription: input.ItemDescription,
		IsOwned:         false,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("无法创建商品: %w", err)
	}
	return &item, nil
}

// List 返回一个用户目录下的全部商品。
func List(userID string) ([]ShopItem, error) {
	var items []ShopItem
	if err := database.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 的商品: %w", userID, err)
	}
	return items, nil
}

// Get 返回单个商品，归属校验同Purchase。
func Get(userID, itemID string) (*ShopItem, error) {
	var item ShopItem
	err := database.DB.Where("item_id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "商品", ID: itemID}
		}
		return nil, err
	}
	return &item, nil
}

// Purchase 执行一次购买：扣减积分和翻转拥有标记在同一个事务中提交，
// 要么同时生效要么都不生效。拥有标记的检查发生在行锁之下，
// 两个并发的购买请求只会有一个成功，另一个拿到AlreadyOwnedError。
func Purchase(userID, itemID string) (*ShopItem, error) {
	var item ShopItem
	var newBalance int

	err := database.RunInTransaction(func(tx *gorm.DB) error {
		// 锁定商品行后重新检查拥有状态，防止双花
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_id = ? AND user_id = ?", itemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "商品", ID: itemID}
			}
			return err
		}

		if item.IsOwned {
			return &apperr.AlreadyOwnedError{ItemID: itemID}
		}

		// 余额检查与扣减在账本的行锁下完成，不足时整个事务回滚
		newBalance, err = user.DebitTx(tx, userID, item.ItemCost)
		if err != nil {
			return err
		}

		item.IsOwned = true
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}

	user.SyncPointsToCache(userID, newBalance)
	return &item, nil
}

// Delete 删除一个商品，归属他人的商品视同不存在。
func Delete(userID, itemID string) error {
	return database.RunInTransaction(func(tx *gorm.DB) error {
		var item ShopItem
		err := tx.Where("item_id = ? AND user_id = ?", itemID, userID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "商品", ID: itemID}
			}
			return err
		}
		return tx.Delete(&item).Error
	})
}

// OwnedPatternNamesTx 在调用方的事务中返回用户已购图案的名称列表。
// 任务创建时用它作为奖励生成器的抽取池。
func OwnedPatternNamesTx(tx *gorm.DB, userID string) ([]string, error) {
	var names []string
	err := tx.Model(&ShopItem{}).
		Where("user_id = ? AND item_type = ? AND is_owned = ?", userID, ItemTypePattern, true).
		Order("created_at ASC").
		Pluck("item_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 的已购图案: %w", userID, err)
	}
	return names, nil
}
