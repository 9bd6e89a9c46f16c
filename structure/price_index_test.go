package structure

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceLevelTree_InsertDeleteBasic(t *testing.T) {
	tree := NewPriceLevelTree(100)

	assert.Empty(t, tree.InOrderSlice())

	assert.True(t, tree.Insert(100))
	assert.True(t, tree.Insert(50))
	assert.True(t, tree.Insert(150))
	assert.Equal(t, []int64{50, 100, 150}, tree.InOrderSlice())

	// Duplicate insert is a no-op.
	assert.False(t, tree.Insert(100))
	assert.Equal(t, []int64{50, 100, 150}, tree.InOrderSlice())

	assert.True(t, tree.Delete(100))
	assert.Equal(t, []int64{50, 150}, tree.InOrderSlice())

	// Deleting an absent price is a no-op.
	assert.False(t, tree.Delete(999))
	assert.Equal(t, []int64{50, 150}, tree.InOrderSlice())
}

func TestPriceLevelTree_InOrderSliceAlwaysSorted(t *testing.T) {
	tree := NewPriceLevelTree(1000)
	for _, v := range []int64{50, 25, 75, 10, 30, 60, 80, 5, 15, 27, 35} {
		tree.Insert(v)
	}

	result := tree.InOrderSlice()
	for i := 1; i < len(result); i++ {
		assert.Less(t, result[i-1], result[i])
	}
}

func TestPriceLevelTree_OracleRandomOps(t *testing.T) {
	tree := NewPriceLevelTree(10000)
	oracle := make(map[int64]bool)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		price := rng.Int63n(1000)
		if rng.Intn(2) == 0 {
			tree.Insert(price)
			oracle[price] = true
		} else {
			tree.Delete(price)
			delete(oracle, price)
		}
	}

	want := make([]int64, 0, len(oracle))
	for k := range oracle {
		want = append(want, k)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	assert.Equal(t, want, tree.InOrderSlice())
}
