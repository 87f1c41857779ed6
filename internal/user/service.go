package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// IsValidUUID 检查一个字符串是否是合法的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ActivateUser 确保一个外部提供的UserID在本系统中存在对应的用户行。
// 首次见到的UserID会以零积分落库。操作是幂等的，重复激活无副作用。
func ActivateUser(userID string) error {
	// 先查缓存，命中则跳过SQL
	if known, cacheOK := isKnownInCache(userID); cacheOK && known {
		return nil
	}

	var existing User
	err := database.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		markKnownInCache(userID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询用户 %s 失败: %w", userID, err)
	}

	newUser := User{UserID: userID}
	if err := database.DB.Create(&newUser).Error; err != nil {
		// 并发激活同一个用户时，落后的一方会撞到唯一索引，不是真正的错误
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			markKnownInCache(userID)
			return nil
		}
		return fmt.Errorf("无法创建新用户 %s: %w", userID, err)
	}

	markKnownInCache(userID)
	SyncPointsToCache(userID, 0)
	return nil
}

// GetProfile 返回用户的完整画像（含积分余额）。
func GetProfile(userID string) (*User, error) {
	var u User
	err := database.DB.Where("user_id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "用户", ID: userID}
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfileInput 是画像更新的入参，nil字段保持原值。
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// UpdateProfile 更新用户的姓名字段。积分不经过这里，只能走账本。
func UpdateProfile(userID string, input UpdateProfileInput) (*User, error) {
	var u User
	err := database.RunInTransaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "用户", ID: userID}
			}
			return err
		}
		if input.FirstName != nil {
			u.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			u.LastName = *input.LastName
		}
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// LeaderboardEntry 是积分排行榜中的一行。
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Leaderboard 返回积分最高的前limit名用户。
// 优先从Redis的Sorted Set读取排名，再用SQL补全姓名；
// 缓存不可用时直接降级为SQL排序查询。
func Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if database.IsRedisHealthy() {
		zs, err := database.RDB.ZRevRangeWithScores(database.Ctx, PointsRankingKey, 0, int64(limit-1)).Result()
		if err == nil {
			return hydrateLeaderboard(zs)
		}
		fmt.Printf("警告: 读取排行榜缓存失败，降级为SQL查询: %v\n", err)
	}

	var users []User
	if err := database.DB.Order("points desc").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法从SQL查询排行榜: %w", err)
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.UserID,
			Name:   displayName(u),
			Points: u.Points,
		}
	}
	return entries, nil
}

func hydrateLeaderboard(zs []redis.Z) ([]LeaderboardEntry, error) {
	if len(zs) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.Member.(string)
	}

	var users []User
	if err := database.DB.Where("user_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法补全排行榜用户信息: %w", err)
	}
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		id := z.Member.(string)
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: id,
			Name:   displayName(byID[id]),
			Points: int(z.Score),
		})
	}
	return entries, nil
}

func displayName(u User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "匿名用户"
	}
	return name
}
