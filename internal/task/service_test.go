package task

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/butterfly"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/internal/reminder"
	"github.com/fluttertask/butterfly-todo-backend/internal/reward"
	"github.com/fluttertask/butterfly-todo-backend/internal/shop"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTaskDB(t *testing.T) {
	t.Helper()
	database.MarkRedisDisabled()
	SetRandSource(rand.New(rand.NewSource(42)))

	dsn := fmt.Sprintf("file:task_%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&shop.ShopItem{},
		&Task{},
		&butterfly.Butterfly{},
		&reminder.Reminder{},
	))
	database.DB = db
}

func mustCreateTaskUser(t *testing.T, points int) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, database.DB.Create(&user.User{UserID: id, Points: points}).Error)
	return id
}

func taskBalanceOf(t *testing.T, userID string) int {
	t.Helper()
	var u user.User
	require.NoError(t, database.DB.Where("user_id = ?", userID).First(&u).Error)
	return u.Points
}

func ptrTime(v time.Time) *time.Time { return &v }

func TestCreateTaskSpawnsButterfly(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)

	tk, bf, err := Create(userID, CreateInput{Title: "写周报"})
	require.NoError(t, err)
	require.NotEmpty(t, tk.TaskID)
	require.Equal(t, tk.TaskID, bf.TaskID)
	require.False(t, bf.IsCaught)
	require.Nil(t, bf.CaughtAt)

	// 缺省尺寸和优先级：2.0 × 2 = 4分，来源为默认蝴蝶
	require.Equal(t, reward.DefaultOrigin, bf.Origin)
	require.Equal(t, 2.0, bf.Size)
	require.Equal(t, 4, bf.PointsAwarded)

	// 创建任务不入账
	require.Equal(t, 0, taskBalanceOf(t, userID))
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)

	_, _, err := Create(userID, CreateInput{Title: "   "})
	require.True(t, apperr.IsValidation(err))

	var count int64
	require.NoError(t, database.DB.Model(&Task{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateTaskDrawsOriginFromOwnedPatterns(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 100)

	item, err := shop.Create(userID, shop.CreateInput{ItemName: "条纹", ItemType: shop.ItemTypePattern, ItemColor: "blue", ItemCost: 3})
	require.NoError(t, err)
	_, err = shop.Purchase(userID, item.ItemID)
	require.NoError(t, err)

	// 抽取池里只有一个图案，来源必然是它
	_, bf, err := Create(userID, CreateInput{Title: "浇花"})
	require.NoError(t, err)
	require.Equal(t, "条纹", bf.Origin)
}

func TestCompleteTaskCreditsFrozenPointsOnce(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	tk, bf, err := Create(userID, CreateInput{Title: "写周报", Size: "large", Priority: "high"})
	require.NoError(t, err)
	require.Positive(t, bf.PointsAwarded)

	done := ptrTime(time.Now())
	_, bfAfter, err := Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: done})
	require.NoError(t, err)
	require.True(t, bfAfter.IsCaught)
	require.NotNil(t, bfAfter.CaughtAt)
	require.Equal(t, bf.PointsAwarded, taskBalanceOf(t, userID))

	// 重复提交完成补丁不会再次入账
	_, _, err = Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: done})
	require.NoError(t, err)
	require.Equal(t, bf.PointsAwarded, taskBalanceOf(t, userID))
}

func TestUndoCompletionKeepsPointsAndCatch(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	tk, bf, err := Create(userID, CreateInput{Title: "写周报"})
	require.NoError(t, err)

	_, _, err = Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: ptrTime(time.Now())})
	require.NoError(t, err)

	// 撤销完成只清空任务字段，积分和捕获标记保持不变
	tkAfter, bfAfter, err := Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: nil})
	require.NoError(t, err)
	require.Nil(t, tkAfter.CompletedAt)
	require.True(t, bfAfter.IsCaught)
	require.Equal(t, bf.PointsAwarded, taskBalanceOf(t, userID))

	// 再次完成也不会重复入账：这只蝴蝶已经被捕获过了
	_, _, err = Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: ptrTime(time.Now())})
	require.NoError(t, err)
	require.Equal(t, bf.PointsAwarded, taskBalanceOf(t, userID))
}

// 并发提交同一个完成补丁时，固化的积分只入账一次。
func TestConcurrentCompletionsCreditOnce(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	tk, bf, err := Create(userID, CreateInput{Title: "写周报", Size: "large", Priority: "high"})
	require.NoError(t, err)

	const workers = 8
	done := ptrTime(time.Now())
	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = Update(tk.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: done})
		}(i)
	}
	wg.Wait()

	// 争用重试耗尽的请求可以整体重试，除此之外不允许失败
	for _, err := range errs {
		if err != nil && !apperr.IsConflict(err) {
			t.Fatalf("意外的更新错误: %v", err)
		}
	}

	require.Equal(t, bf.PointsAwarded, taskBalanceOf(t, userID))
	var stored butterfly.Butterfly
	require.NoError(t, database.DB.Where("task_id = ?", tk.TaskID).First(&stored).Error)
	require.True(t, stored.IsCaught)
	require.NotNil(t, stored.CaughtAt)
}

func TestPatchRejectsNullOrBlankTitle(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	tk, _, err := Create(userID, CreateInput{Title: "写周报"})
	require.NoError(t, err)

	// 解析阶段就拒绝把必填的标题清空
	for _, body := range []string{`{"title":null}`, `{"title":""}`, `{"title":"  "}`} {
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(body), &raw))
		_, err := parsePatch(raw)
		require.True(t, apperr.IsValidation(err), "补丁 %s 应当被拒绝", body)
	}

	// 服务层执行同一条规则
	blank := "   "
	_, _, err = Update(tk.TaskID, userID, UpdateInput{Title: &blank})
	require.True(t, apperr.IsValidation(err))

	got, _, err := Get(tk.TaskID, userID)
	require.NoError(t, err)
	require.Equal(t, "写周报", got.Title)
}

func TestUpdateAppliesPartialPatch(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	desc := "带截图"
	due := ptrTime(time.Now().Add(24 * time.Hour))
	tk, _, err := Create(userID, CreateInput{Title: "写周报", Description: &desc, DueDate: due})
	require.NoError(t, err)

	newTitle := "写月报"
	tkAfter, _, err := Update(tk.TaskID, userID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "写月报", tkAfter.Title)
	// 补丁中未出现的字段保持原值
	require.NotNil(t, tkAfter.Description)
	require.NotNil(t, tkAfter.DueDate)

	// 显式置null清空可空字段
	tkAfter, _, err = Update(tk.TaskID, userID, UpdateInput{HasDescription: true, Description: nil})
	require.NoError(t, err)
	require.Nil(t, tkAfter.Description)
}

func TestUpdateForeignTaskLooksAbsent(t *testing.T) {
	setupTaskDB(t)
	owner := mustCreateTaskUser(t, 0)
	stranger := mustCreateTaskUser(t, 0)
	tk, _, err := Create(owner, CreateInput{Title: "写周报"})
	require.NoError(t, err)

	newTitle := "偷改"
	_, _, err = Update(tk.TaskID, stranger, UpdateInput{Title: &newTitle})
	require.True(t, apperr.IsNotFound(err))
}

func TestDeleteRemovesButterflyAndReminders(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)
	tk, _, err := Create(userID, CreateInput{Title: "写周报"})
	require.NoError(t, err)

	rm, err := reminder.Create(userID, reminder.CreateInput{
		TaskID:   tk.TaskID,
		RemindAt: time.Now().Add(time.Hour),
		Message:  "别忘了",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rm.ReminderID)

	require.NoError(t, Delete(tk.TaskID, userID))

	_, _, err = Get(tk.TaskID, userID)
	require.True(t, apperr.IsNotFound(err))
	var bfCount, rmCount int64
	require.NoError(t, database.DB.Model(&butterfly.Butterfly{}).Where("task_id = ?", tk.TaskID).Count(&bfCount).Error)
	require.NoError(t, database.DB.Model(&reminder.Reminder{}).Where("task_id = ?", tk.TaskID).Count(&rmCount).Error)
	require.Zero(t, bfCount)
	require.Zero(t, rmCount)
}

func TestListOrdersOpenBeforeCompleted(t *testing.T) {
	setupTaskDB(t)
	userID := mustCreateTaskUser(t, 0)

	first, _, err := Create(userID, CreateInput{Title: "第一个"})
	require.NoError(t, err)
	second, _, err := Create(userID, CreateInput{Title: "第二个"})
	require.NoError(t, err)

	_, _, err = Update(second.TaskID, userID, UpdateInput{HasCompletedAt: true, CompletedAt: ptrTime(time.Now())})
	require.NoError(t, err)

	list, err := List(userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 开放的在前，完成的在后，附带各自的蝴蝶
	require.Equal(t, first.TaskID, list[0].Task.TaskID)
	require.Equal(t, second.TaskID, list[1].Task.TaskID)
	require.NotNil(t, list[0].Butterfly)
	require.True(t, list[1].Butterfly.IsCaught)
}
