package crossval

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

// Split is one train/test partition of a dataset, as positions into it.
// Both slices are ascending, disjoint, and together cover every position.
type Split struct {
	Train []int
	Test  []int
}

// Splitter draws the splits for a whole run. Splits are drawn up front and in
// repetition order, so a run's partitions depend only on the random source.
type Splitter interface {
	// Name identifies the scheme in logs and reports.
	Name() string
	// Validate reports a malformed configuration as an InvalidArgument error.
	Validate() error
	// Splits returns one split per repetition for a dataset of n records.
	Splits(rng *rand.Rand, n, repetitions int) []Split
}

// MonteCarlo is repeated random holdout: every repetition independently
// draws round(TrainFraction·n) records uniformly without replacement for
// training and holds out the rest. A record may be trained on in one
// repetition and tested on in another.
type MonteCarlo struct {
	TrainFraction float64
}

func (m MonteCarlo) Name() string { return "holdout" }

func (m MonteCarlo) Validate() error {
	f := m.TrainFraction
	if math.IsNaN(f) || f <= 0 || f >= 1 {
		return errors.NewInvalidArgumentError("crossval.MonteCarlo", "TrainFraction", "must be in (0, 1)", f)
	}
	return nil
}

// TrainSize is the number of training records drawn from n.
func (m MonteCarlo) TrainSize(n int) int {
	return int(math.Round(m.TrainFraction * float64(n)))
}

func (m MonteCarlo) Splits(rng *rand.Rand, n, repetitions int) []Split {
	k := m.TrainSize(n)
	splits := make([]Split, repetitions)
	for r := range splits {
		perm := rng.Perm(n)
		splits[r] = newSplit(perm[:k], perm[k:])
	}
	return splits
}

// KFold is repeated k-fold partitioning: repetitions are grouped in blocks of
// K, each block shuffles the records once and repetition r holds out fold
// r mod K of that shuffle. Within a block every record is tested exactly once.
type KFold struct {
	K int
}

func (k KFold) Name() string { return fmt.Sprintf("kfold(%d)", k.K) }

func (k KFold) Validate() error {
	if k.K < 2 {
		return errors.NewInvalidArgumentError("crossval.KFold", "K", "must be at least 2", k.K)
	}
	return nil
}

func (k KFold) Splits(rng *rand.Rand, n, repetitions int) []Split {
	splits := make([]Split, repetitions)
	var perm []int
	for r := range splits {
		fold := r % k.K
		if fold == 0 {
			perm = rng.Perm(n)
		}
		lo, hi := fold*n/k.K, (fold+1)*n/k.K
		train := append(append([]int(nil), perm[:lo]...), perm[hi:]...)
		splits[r] = newSplit(train, perm[lo:hi])
	}
	return splits
}

func newSplit(train, test []int) Split {
	s := Split{
		Train: slices.Clone(train),
		Test:  slices.Clone(test),
	}
	slices.Sort(s.Train)
	slices.Sort(s.Test)
	return s
}
