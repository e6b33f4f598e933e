package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTotal_Even(t *testing.T) {
	shares := SplitTotal(3000, 3)

	assert.Len(t, shares, 3)
	assert.Equal(t, []float64{1000, 1000, 1000}, shares)
}

func TestSplitTotal_RemainderGoesToFirstRoom(t *testing.T) {
	shares := SplitTotal(100, 3)

	assert.Len(t, shares, 3)
	assert.Equal(t, 33.34, shares[0])
	assert.Equal(t, 33.33, shares[1])
	assert.Equal(t, 33.33, shares[2])
}

func TestSplitTotal_SumEqualsTotal(t *testing.T) {
	totals := []float64{100, 99.99, 2600.50, 0.01, 12345.67}
	for _, total := range totals {
		for n := 1; n <= 7; n++ {
			shares := SplitTotal(total, n)

			var sum int64
			for _, s := range shares {
				sum += int64(s*100 + 0.5)
			}
			assert.Equal(t, int64(total*100+0.5), sum, "total=%v n=%d", total, n)
		}
	}
}

func TestSplitTotal_SingleRoom(t *testing.T) {
	assert.Equal(t, []float64{2600.5}, SplitTotal(2600.50, 1))
}

func TestSplitTotal_InvalidCount(t *testing.T) {
	assert.Nil(t, SplitTotal(100, 0))
	assert.Nil(t, SplitTotal(100, -2))
}
