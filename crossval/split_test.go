package crossval

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flexcv/pkg/errors"
)

func assertPartition(t *testing.T, s Split, n int) {
	t.Helper()
	require.Equal(t, n, len(s.Train)+len(s.Test))
	seen := make(map[int]bool, n)
	for _, i := range append(append([]int(nil), s.Train...), s.Test...) {
		require.False(t, seen[i], "index %d appears twice", i)
		require.True(t, i >= 0 && i < n)
		seen[i] = true
	}
	assert.IsIncreasing(t, s.Train)
	assert.IsIncreasing(t, s.Test)
}

func TestMonteCarlo_Splits(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	mc := MonteCarlo{TrainFraction: 0.8}
	require.NoError(t, mc.Validate())

	splits := mc.Splits(rng, 221, 50)
	require.Len(t, splits, 50)
	for _, s := range splits {
		assertPartition(t, s, 221)
		assert.Len(t, s.Train, 177)
		assert.Len(t, s.Test, 44)
	}
	// independent resampling: consecutive test sets differ
	assert.NotEqual(t, splits[0].Test, splits[1].Test)
}

func TestMonteCarlo_TrainSizeRounds(t *testing.T) {
	mc := MonteCarlo{TrainFraction: 0.8}
	assert.Equal(t, 2, mc.TrainSize(2)) // 1.6 rounds up, leaving no test record
	assert.Equal(t, 4, mc.TrainSize(5))
	assert.Equal(t, 8, mc.TrainSize(10))
	assert.Equal(t, 1, MonteCarlo{TrainFraction: 0.5}.TrainSize(1))
}

func TestMonteCarlo_Validate(t *testing.T) {
	for _, f := range []float64{0, 1, -0.2, 1.5} {
		err := MonteCarlo{TrainFraction: f}.Validate()
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "fraction %g", f)
	}
}

func TestKFold_BlocksCoverEveryRecordOnce(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	kf := KFold{K: 5}
	require.NoError(t, kf.Validate())
	assert.Equal(t, "kfold(5)", kf.Name())

	const n = 23
	splits := kf.Splits(rng, n, 12)
	require.Len(t, splits, 12)

	for block := 0; block < 2; block++ {
		tested := make(map[int]int)
		for f := 0; f < 5; f++ {
			s := splits[block*5+f]
			assertPartition(t, s, n)
			for _, i := range s.Test {
				tested[i]++
			}
		}
		assert.Len(t, tested, n)
		for i, c := range tested {
			assert.Equal(t, 1, c, "record %d", i)
		}
	}
	// the third block starts a new shuffle
	assertPartition(t, splits[10], n)
	assertPartition(t, splits[11], n)

	assert.True(t, errors.Is(KFold{K: 1}.Validate(), errors.ErrInvalidArgument))
}

func TestKFold_MoreFoldsThanRecordsGivesEmptyTests(t *testing.T) {
	splits := KFold{K: 4}.Splits(rand.New(rand.NewPCG(1, 2)), 2, 4)
	empty := 0
	for _, s := range splits {
		assertPartition(t, s, 2)
		if len(s.Test) == 0 {
			empty++
		}
	}
	assert.Equal(t, 2, empty)
}
