package user

import (
	"errors"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 积分账本。所有余额变动都必须经过这里的两个事务内原语，
// 检查和扣减在同一把行锁下完成，余额永远不会变成负数。

// lockUser 在事务内锁定并读取用户行。
func lockUser(tx *gorm.DB, userID string) (*User, error) {
	var u User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "用户", ID: userID}
		}
		return nil, err
	}
	return &u, nil
}

// CreditTx 在调用方的事务中为用户入账amount积分，返回新的余额。
// amount必须>=0；入账本身总是成功（只要用户存在）。
func CreditTx(tx *gorm.DB, userID string, amount int) (int, error) {
	if amount < 0 {
		return 0, &apperr.ValidationError{Field: "amount", Reason: "入账金额不能为负"}
	}

	u, err := lockUser(tx, userID)
	if err != nil {
		return 0, err
	}

	u.Points += amount
	if err := tx.Save(u).Error; err != nil {
		return 0, err
	}
	return u.Points, nil
}

// DebitTx 在调用方的事务中扣减amount积分，返回新的余额。
// 余额不足时返回InsufficientFundsError且不修改任何状态。
// 余额检查发生在行锁之下，与调用方事务中的其他写操作一起提交或回滚。
func DebitTx(tx *gorm.DB, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, &apperr.ValidationError{Field: "amount", Reason: "扣减金额必须为正"}
	}

	u, err := lockUser(tx, userID)
	if err != nil {
		return 0, err
	}

	if u.Points < amount {
		return 0, &apperr.InsufficientFundsError{Balance: u.Points, Required: amount}
	}

	u.Points -= amount
	if err := tx.Save(u).Error; err != nil {
		return 0, err
	}
	return u.Points, nil
}

// Credit 是CreditTx的独立事务版本，提交后同步排行榜缓存。
func Credit(userID string, amount int) (int, error) {
	var balance int
	err := database.RunInTransaction(func(tx *gorm.DB) error {
		var err error
		balance, err = CreditTx(tx, userID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	SyncPointsToCache(userID, balance)
	return balance, nil
}

// Debit 是DebitTx的独立事务版本，提交后同步排行榜缓存。
func Debit(userID string, amount int) (int, error) {
	var balance int
	err := database.RunInTransaction(func(tx *gorm.DB) error {
		var err error
		balance, err = DebitTx(tx, userID, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	SyncPointsToCache(userID, balance)
	return balance, nil
}
