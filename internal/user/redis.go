package user

import (
	"fmt"
	"sync"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// PointsRankingKey 是一个 Redis Sorted Set 的键，用于存储用户的积分排名。
	// Score: 用户当前的积分余额
	// Member: 用户的UserID
	PointsRankingKey = "user:points:ranking"

	// KnownUsersKey 是一个 Redis Set 的键，用于快速判断一个UserID
	// 是否已经被激活过，避免每个请求都查询SQL。
	KnownUsersKey = "user:known"
)

// repoMutex 保护本模块管理的Redis键：常规的单用户同步持读锁，
// 全量重建（WarmupCache）持写锁，避免重建期间被旧值覆盖。
var repoMutex sync.RWMutex

// SyncPointsToCache 在积分余额变动提交后，尽力将新余额推送到排行榜缓存。
// 缓存不可用时静默跳过；SQL是唯一权威数据源，缓存随时可以重建。
func SyncPointsToCache(userID string, balance int) {
	if !database.IsRedisHealthy() {
		return
	}

	repoMutex.RLock()
	defer repoMutex.RUnlock()

	err := database.RDB.ZAdd(database.Ctx, PointsRankingKey, redis.Z{
		Score:  float64(balance),
		Member: userID,
	}).Err()
	if err != nil {
		fmt.Printf("警告: 同步用户 %s 的积分到排行榜缓存失败: %v\n", userID, err)
	}
}

// markKnownInCache 将一个已激活的UserID加入已知用户集合。
func markKnownInCache(userID string) {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.SAdd(database.Ctx, KnownUsersKey, userID).Err(); err != nil {
		fmt.Printf("警告: 无法将用户 %s 加入已知用户缓存: %v\n", userID, err)
	}
}

// isKnownInCache 查询已知用户集合。第二个返回值表示缓存是否可用。
func isKnownInCache(userID string) (bool, bool) {
	if !database.IsRedisHealthy() {
		return false, false
	}
	exists, err := database.RDB.SIsMember(database.Ctx, KnownUsersKey, userID).Result()
	if err != nil {
		return false, false
	}
	return exists, true
}

// WarmupCache 从SQL全量重建已知用户集合和积分排行榜。
// 在启动和Redis恢复后由startup.RebuildCache调用。
func WarmupCache() error {
	if database.RDB == nil {
		return nil
	}

	var users []User
	if err := database.DB.Select("user_id", "points").Find(&users).Error; err != nil {
		return fmt.Errorf("无法从SQL读取用户数据: %w", err)
	}

	repoMutex.Lock()
	defer repoMutex.Unlock()

	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, KnownUsersKey, PointsRankingKey)

	if len(users) > 0 {
		members := make([]interface{}, len(users))
		ranking := make([]redis.Z, len(users))
		for i, u := range users {
			members[i] = u.UserID
			ranking[i] = redis.Z{Score: float64(u.Points), Member: u.UserID}
		}
		pipe.SAdd(database.Ctx, KnownUsersKey, members...)
		pipe.ZAdd(database.Ctx, PointsRankingKey, ranking...)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热用户缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个用户的积分排行榜缓存。\n", len(users))
	return nil
}
