package task

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/butterfly"
	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/internal/reminder"
	"github.com/fluttertask/butterfly-todo-backend/internal/reward"
	"github.com/fluttertask/butterfly-todo-backend/internal/shop"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 奖励生成器的随机源。rand.Rand不是并发安全的，所有抽取都在
// rngMu下进行；测试通过SetRandSource注入确定性的序列。
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SetRandSource 替换奖励生成器使用的随机源。
func SetRandSource(r *rand.Rand) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = r
}

func generateReward(patterns []string, size reward.Size, priority reward.Priority) reward.Reward {
	rngMu.Lock()
	defer rngMu.Unlock()
	return reward.Generate(rng, patterns, size, priority)
}

// CreateInput 是创建任务的入参。
type CreateInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Size        string
	Priority    string
}

// Create 创建一个开放状态的新任务，并在同一个事务中为它生成蝴蝶。
// 任务和蝴蝶要么一起落库要么都不落库，不存在没有蝴蝶的任务。
// 这里不碰账本：积分只在完成时入账。
func Create(userID string, input CreateInput) (*Task, *butterfly.Butterfly, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, nil, &apperr.ValidationError{Field: "title", Reason: "不能为空"}
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("无法生成任务ID: %w", err)
	}
	butterflyID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("无法生成蝴蝶ID: %w", err)
	}

	newTask := Task{
		TaskID:      taskID.String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Size:        input.Size,
		Priority:    input.Priority,
	}
	var newButterfly butterfly.Butterfly

	err = database.RunInTransaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newTask).Error; err != nil {
			return fmt.Errorf("无法创建任务: %w", err)
		}

		// 已购图案构成蝴蝶来源的抽取池
		patterns, err := shop.OwnedPatternNamesTx(tx, userID)
		if err != nil {
			return err
		}

		// 奖励在创建时一次性算出并固化，之后不再重算
		r := generateReward(patterns, reward.Size(input.Size), reward.Priority(input.Priority))
		newButterfly = butterfly.Butterfly{
			ButterflyID:   butterflyID.String(),
			TaskID:        newTask.TaskID,
			Origin:        r.Origin,
			Size:          r.Size,
			PointsAwarded: r.Points,
			IsCaught:      false,
		}
		if err := tx.Create(&newButterfly).Error; err != nil {
			return fmt.Errorf("无法创建蝴蝶: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &newTask, &newButterfly, nil
}

// UpdateInput 是任务补丁的入参。Has*标记字段是否出现在补丁中：
// 未出现的字段保持原值，出现且为nil的可空字段被清空。
type UpdateInput struct {
	Title *string

	HasDescription bool
	Description    *string

	HasDueDate bool
	DueDate    *time.Time

	HasCompletedAt bool
	CompletedAt    *time.Time
}

// Update 对任务应用补丁。
//
// 补丁首次把CompletedAt从nil改为非nil时是"完成"转换：在同一个
// 事务中锁定蝴蝶行、重新检查IsCaught，未捕获时入账固化的
// PointsAwarded并翻转捕获标记。重复的完成请求（重试、并发）
// 会在锁下看到IsCaught=true，对账本是无操作。
// 显式把CompletedAt置回null只清空任务字段，不回收积分和捕获标记。
func Update(taskID, userID string, input UpdateInput) (*Task, *butterfly.Butterfly, error) {
	// 与Create保持同一条规则：任务标题不允许为空
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, nil, &apperr.ValidationError{Field: "title", Reason: "不能为空"}
	}

	var t Task
	var bf butterfly.Butterfly
	credited := false
	var newBalance int

	err := database.RunInTransaction(func(tx *gorm.DB) error {
		credited = false

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("task_id = ? AND user_id = ?", taskID, userID).
			First(&t).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "任务", ID: taskID}
			}
			return err
		}

		// 只有从开放到完成的首次转换才触发奖励
		completing := input.HasCompletedAt && input.CompletedAt != nil && t.CompletedAt == nil

		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.HasDescription {
			t.Description = input.Description
		}
		if input.HasDueDate {
			t.DueDate = input.DueDate
		}
		if input.HasCompletedAt {
			t.CompletedAt = input.CompletedAt
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("task_id = ?", t.TaskID).
			First(&bf).Error; err != nil {
			return fmt.Errorf("任务 %s 缺失蝴蝶记录: %w", t.TaskID, err)
		}

		if completing && !bf.IsCaught {
			// 入账和捕获标记在同一个事务中提交，锁下的IsCaught
			// 检查保证同一只蝴蝶最多入账一次
			newBalance, err = user.CreditTx(tx, userID, bf.PointsAwarded)
			if err != nil {
				return err
			}
			now := time.Now()
			bf.IsCaught = true
			bf.CaughtAt = &now
			if err := tx.Save(&bf).Error; err != nil {
				return err
			}
			credited = true
		}

		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if credited {
		user.SyncPointsToCache(userID, newBalance)
	}
	return &t, &bf, nil
}

// Delete 删除任务及其蝴蝶和提醒，三者在同一个事务中移除，
// 不会留下孤儿蝴蝶行。
func Delete(taskID, userID string) error {
	return database.RunInTransaction(func(tx *gorm.DB) error {
		var t Task
		err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).First(&t).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "任务", ID: taskID}
			}
			return err
		}

		if err := tx.Where("task_id = ?", t.TaskID).Delete(&butterfly.Butterfly{}).Error; err != nil {
			return fmt.Errorf("无法删除任务 %s 的蝴蝶: %w", t.TaskID, err)
		}
		if err := tx.Where("task_id = ?", t.TaskID).Delete(&reminder.Reminder{}).Error; err != nil {
			return fmt.Errorf("无法删除任务 %s 的提醒: %w", t.TaskID, err)
		}
		return tx.Delete(&t).Error
	})
}

// TaskWithButterfly 把任务和它的蝴蝶捆绑返回。
type TaskWithButterfly struct {
	Task      Task
	Butterfly *butterfly.Butterfly
}

// List 返回一个用户的全部任务：开放的在前，各组内新的在前。
func List(userID string) ([]TaskWithButterfly, error) {
	var tasks []Task
	err := database.DB.Where("user_id = ?", userID).
		Order("(completed_at IS NULL) DESC").
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 的任务: %w", userID, err)
	}
	if len(tasks) == 0 {
		return []TaskWithButterfly{}, nil
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.TaskID
	}
	var butterflies []butterfly.Butterfly
	if err := database.DB.Where("task_id IN ?", ids).Find(&butterflies).Error; err != nil {
		return nil, fmt.Errorf("无法查询任务的蝴蝶: %w", err)
	}
	byTask := make(map[string]*butterfly.Butterfly, len(butterflies))
	for i := range butterflies {
		byTask[butterflies[i].TaskID] = &butterflies[i]
	}

	result := make([]TaskWithButterfly, len(tasks))
	for i, t := range tasks {
		result[i] = TaskWithButterfly{Task: t, Butterfly: byTask[t.TaskID]}
	}
	return result, nil
}

// Get 返回单个任务及其蝴蝶。
func Get(taskID, userID string) (*Task, *butterfly.Butterfly, error) {
	var t Task
	err := database.DB.Where("task_id = ? AND user_id = ?", taskID, userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &apperr.NotFoundError{Resource: "任务", ID: taskID}
		}
		return nil, nil, err
	}

	var bf butterfly.Butterfly
	if err := database.DB.Where("task_id = ?", t.TaskID).First(&bf).Error; err != nil {
		return nil, nil, fmt.Errorf("任务 %s 缺失蝴蝶记录: %w", t.TaskID, err)
	}
	return &t, &bf, nil
}
