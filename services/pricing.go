package services

import "math"

// SplitTotal divides a booking total evenly across n rooms.
//
// The split is computed in integer cents to avoid float drift; when the
// division is inexact the remainder cents go to the first room, so the shares
// always sum back to the original total.
func SplitTotal(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	cents := int64(math.Round(total * 100))
	base := cents / int64(n)
	remainder := cents - base*int64(n)

	shares := make([]float64, n)
	for i := range shares {
		share := base
		if i == 0 {
			share += remainder
		}
		shares[i] = float64(share) / 100
	}
	return shares
}
