package utils

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				kMin, kMax := pm.GetBucketRange(np)
				histo[kMax-kMin]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets are contiguous and cover the range in order
		pm := NewPartitionMap(7, 100)
		var next int
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			assert.Equal(t, next, kMin)
			next = kMax
		}
		assert.Equal(t, 100, next)
	}
	{ // Run visits every index exactly once, serial or parallel
		for _, np := range []int{1, 3, 8, 40} {
			var (
				pm     = NewPartitionMap(np, 37)
				visits = make([]int32, 37)
			)
			pm.Run(func(_, kMin, kMax int) {
				for k := kMin; k < kMax; k++ {
					atomic.AddInt32(&visits[k], 1)
				}
			})
			for k := range visits {
				assert.Equal(t, int32(1), visits[k])
			}
		}
	}
	{ // Worker count is capped by the outer dimension
		assert.Equal(t, 4, ParallelDegreeFor(4, 100))
		assert.Equal(t, 10, ParallelDegreeFor(16, 10))
		assert.Equal(t, 1, ParallelDegreeFor(4, 0))
		assert.True(t, ParallelDegreeFor(0, 1000) >= 1)
	}
}

func TestWrapPhase(t *testing.T) {
	assert.Equal(t, math.Pi, WrapPhase(math.Pi))
	assert.Equal(t, math.Pi, WrapPhase(-math.Pi))
	assert.InDelta(t, 0.5, WrapPhase(0.5+4*math.Pi), 1.e-12)
	assert.InDelta(t, -0.5, WrapPhase(-0.5-6*math.Pi), 1.e-12)
	assert.InDelta(t, 1, WrapPhase(1+200*math.Pi), 1.e-9)
	assert.True(t, math.IsNaN(WrapPhase(math.NaN())))
	assert.False(t, IsFinite([]float64{0, math.Inf(1)}))
	assert.False(t, IsFinite([]float64{math.NaN()}))
	assert.True(t, IsFinite([]float64{-1, 0, 1}))
	orders := ObservedOrders([]float64{0.4, 0.2, 0.1}, []float64{1.6, 0.4, 0.1})
	assert.InDeltaSlice(t, []float64{2, 2}, orders, 1.e-12)
}
