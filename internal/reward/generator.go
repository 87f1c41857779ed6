package reward

import (
	"math"
	"math/rand"
)

// Size 定义了任务规模的枚举类型
type Size string

const (
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Priority 定义了任务优先级的枚举类型
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultOrigin 是用户没有任何已购图案时使用的蝴蝶来源
const DefaultOrigin = "Default Butterfly"

// defaultSizeValue 是未指定/未知任务规模时的固定蝴蝶尺寸
const defaultSizeValue = 2.0

// Reward 是生成器的输出：蝴蝶的来源、尺寸和积分值。
// 三个字段在任务创建时被一次性算出并固化在蝴蝶上，之后不再重算。
type Reward struct {
	Origin string
	// Size 是蝴蝶的连续尺寸值，纯展示用途，不参与积分计算
	Size float64
	// Points 是任务完成时将入账的积分
	Points int
}

// sizeIntervalFor 返回任务规模对应的蝴蝶尺寸取值区间 [lo, hi)。
// 未知规模返回 ok=false，调用方使用固定的默认尺寸。
func sizeIntervalFor(size Size) (lo, hi float64, ok bool) {
	switch size {
	case SizeSmall:
		return 1, 2, true
	case SizeMedium:
		return 2, 4, true
	case SizeLarge:
		return 4, 6, true
	case SizeExtraLarge:
		return 6, 10, true
	default:
		return 0, 0, false
	}
}

// multiplierFor 返回优先级对应的积分倍率。未指定/未知优先级按medium处理。
func multiplierFor(priority Priority) float64 {
	switch priority {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 2
	}
}

// Generate 根据任务的规模和优先级生成一只蝴蝶的奖励属性。
// 随机性完全来自注入的rng，便于测试时提供确定性的序列：
//   - Origin 从ownedPatterns中均匀抽取一个；列表为空时使用DefaultOrigin。
//   - Size 在规模对应的区间内均匀抽取；未指定规模时固定为2，不消耗随机数。
//   - Points = round(Size × 倍率)，四舍五入采用远离零方向
//     （math.Round，即2.5→3）。
//
// 每次任务创建只调用一次，结果持久化后不再重算。
func Generate(rng *rand.Rand, ownedPatterns []string, size Size, priority Priority) Reward {
	origin := DefaultOrigin
	if len(ownedPatterns) > 0 {
		origin = ownedPatterns[rng.Intn(len(ownedPatterns))]
	}

	sizeValue := defaultSizeValue
	if lo, hi, ok := sizeIntervalFor(size); ok {
		sizeValue = lo + rng.Float64()*(hi-lo)
	}

	points := int(math.Round(sizeValue * multiplierFor(priority)))

	return Reward{
		Origin: origin,
		Size:   sizeValue,
		Points: points,
	}
}
