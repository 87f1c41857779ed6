package reward

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestGenerateSizeRanges(t *testing.T) {
	cases := []struct {
		size Size
		lo   float64
		hi   float64
	}{
		{SizeSmall, 1, 2},
		{SizeMedium, 2, 4},
		{SizeLarge, 4, 6},
		{SizeExtraLarge, 6, 10},
	}

	for _, tc := range cases {
		t.Run(string(tc.size), func(t *testing.T) {
			rng := newRng(42)
			for i := 0; i < 200; i++ {
				r := Generate(rng, nil, tc.size, PriorityMedium)
				require.GreaterOrEqual(t, r.Size, tc.lo)
				require.Less(t, r.Size, tc.hi)
			}
		})
	}
}

func TestGenerateDefaultSizeIsExactlyTwo(t *testing.T) {
	rng := newRng(1)
	for i := 0; i < 50; i++ {
		r := Generate(rng, nil, "", "")
		assert.Equal(t, 2.0, r.Size)
	}

	// 未知的规模同样走默认值
	r := Generate(newRng(1), nil, Size("gigantic"), PriorityLow)
	assert.Equal(t, 2.0, r.Size)
}

func TestGenerateDefaultPoints(t *testing.T) {
	// 默认尺寸2 × 默认倍率2 = 4，完全确定
	r := Generate(newRng(7), nil, "", "")
	assert.Equal(t, 4, r.Points)
}

func TestGeneratePriorityMultipliers(t *testing.T) {
	cases := []struct {
		priority Priority
		want     int
	}{
		{PriorityLow, 2},
		{PriorityMedium, 4},
		{PriorityHigh, 6},
		{Priority("unknown"), 4},
		{Priority(""), 4},
	}

	for _, tc := range cases {
		r := Generate(newRng(3), nil, "", tc.priority)
		assert.Equal(t, tc.want, r.Points, "priority %q", tc.priority)
	}
}

func TestGeneratePointsDerivedFromSizeValue(t *testing.T) {
	rng := newRng(99)
	for i := 0; i < 100; i++ {
		r := Generate(rng, nil, SizeExtraLarge, PriorityHigh)
		require.Equal(t, int(math.Round(r.Size*3)), r.Points)
		// extra-large × high 至少 round(6*3)=18
		require.GreaterOrEqual(t, r.Points, 18)
	}
}

func TestGenerateOriginSelection(t *testing.T) {
	// 没有图案时使用默认来源
	r := Generate(newRng(5), nil, "", "")
	assert.Equal(t, DefaultOrigin, r.Origin)

	// 有图案时必须从列表中选取
	patterns := []string{"Monarch", "Swallowtail", "Blue Morpho"}
	seen := map[string]bool{}
	rng := newRng(5)
	for i := 0; i < 100; i++ {
		r := Generate(rng, patterns, "", "")
		assert.Contains(t, patterns, r.Origin)
		seen[r.Origin] = true
	}
	// 100次抽取后三种图案都应出现过
	assert.Len(t, seen, len(patterns))
}

func TestGenerateDeterministicWithSameSeed(t *testing.T) {
	a := Generate(newRng(123), []string{"Monarch", "Swallowtail"}, SizeLarge, PriorityHigh)
	b := Generate(newRng(123), []string{"Monarch", "Swallowtail"}, SizeLarge, PriorityHigh)
	assert.Equal(t, a, b)
}
