package dataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Column names of SyntheticLidar.
const (
	LidarRange    = "range"
	LidarLogratio = "logratio"
)

// SyntheticLidar generates a dataset shaped like the classic LIDAR
// measurements: 221 records with range evenly spaced on [390, 720] and a
// logratio that stays flat near zero before falling sigmoidally to about
// -0.8, with noise whose spread grows with range.
//
// All randomness comes from rng, so equal seeds give equal datasets.
func SyntheticLidar(rng *rand.Rand) *Dataset {
	const (
		n     = 221
		start = 390.0
		end   = 720.0
	)
	step := (end - start) / (n - 1)

	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = start + float64(i)*step
		y[i] = LidarMean(x[i]) + lidarSigma(x[i])*noise.Rand()
	}

	ds, err := New([]string{LidarRange, LidarLogratio}, [][]float64{x, y})
	if err != nil {
		// unreachable: names and lengths are fixed above
		panic(err)
	}
	return ds
}

// LidarMean is the noiseless logratio curve SyntheticLidar samples around.
func LidarMean(r float64) float64 {
	return -0.05 - 0.75/(1+math.Exp(-(r-600)/25))
}

func lidarSigma(r float64) float64 {
	return 0.02 + 0.13*(r-390)/330
}
