package user

import (
	"fmt"
	"testing"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLedgerDB 为每个测试建立一个独立的内存数据库。
func setupLedgerDB(t *testing.T) {
	t.Helper()
	database.MarkRedisDisabled()

	dsn := fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	database.DB = db
}

func mustCreateUser(t *testing.T, points int) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, database.DB.Create(&User{UserID: id, Points: points}).Error)
	return id
}

func balanceOf(t *testing.T, userID string) int {
	t.Helper()
	var u User
	require.NoError(t, database.DB.Where("user_id = ?", userID).First(&u).Error)
	return u.Points
}

func TestCreditIncreasesBalance(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 3)

	balance, err := Credit(id, 5)
	require.NoError(t, err)
	require.Equal(t, 8, balance)
	require.Equal(t, 8, balanceOf(t, id))
}

func TestCreditZeroIsNoop(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 3)

	balance, err := Credit(id, 0)
	require.NoError(t, err)
	require.Equal(t, 3, balance)
}

func TestCreditRejectsNegativeAmount(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 3)

	_, err := Credit(id, -1)
	require.True(t, apperr.IsValidation(err))
	require.Equal(t, 3, balanceOf(t, id))
}

func TestCreditUnknownUser(t *testing.T) {
	setupLedgerDB(t)

	_, err := Credit(uuid.NewString(), 5)
	require.True(t, apperr.IsNotFound(err))
}

func TestDebitDecreasesBalance(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 10)

	balance, err := Debit(id, 4)
	require.NoError(t, err)
	require.Equal(t, 6, balance)
	require.Equal(t, 6, balanceOf(t, id))
}

func TestDebitExactBalance(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 7)

	balance, err := Debit(id, 7)
	require.NoError(t, err)
	require.Equal(t, 0, balance)
}

func TestDebitInsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 3)

	_, err := Debit(id, 4)
	require.True(t, apperr.IsInsufficientFunds(err))
	require.Equal(t, 3, balanceOf(t, id))
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 3)

	_, err := Debit(id, 0)
	require.True(t, apperr.IsValidation(err))
	_, err = Debit(id, -2)
	require.True(t, apperr.IsValidation(err))
	require.Equal(t, 3, balanceOf(t, id))
}

// 余额不会变成负数：连续扣减直到拒绝，拒绝之后余额保持不变。
func TestBalanceNeverGoesNegative(t *testing.T) {
	setupLedgerDB(t)
	id := mustCreateUser(t, 5)

	_, err := Debit(id, 3)
	require.NoError(t, err)
	_, err = Debit(id, 3)
	require.True(t, apperr.IsInsufficientFunds(err))
	require.Equal(t, 2, balanceOf(t, id))
}
