package training

import (
	"math"
	"math/rand/v2"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// Splits holds the three partitions of a dataset.
type Splits struct {
	Train []types.TrainingExample
	Dev   []types.TrainingExample
	Test  []types.TrainingExample
}

// Split partitions examples per label: ceil(train*n) go to train,
// ceil(dev*n) of the rest to dev, the remainder to test. Input order is kept
// within a label; each partition is then shuffled with rng. Examples with no
// entities are dropped.
func Split(examples []types.TrainingExample, train, dev float64, rng *rand.Rand) Splits {
	var labels []string
	byLabel := make(map[string][]types.TrainingExample)
	for _, ex := range examples {
		label := ex.Label()
		if label == "" {
			continue
		}
		if _, ok := byLabel[label]; !ok {
			labels = append(labels, label)
		}
		byLabel[label] = append(byLabel[label], ex)
	}

	var s Splits
	for _, label := range labels {
		items := byLabel[label]
		n := len(items)
		nTrain := min(int(math.Ceil(train*float64(n))), n)
		nDev := min(int(math.Ceil(dev*float64(n))), n-nTrain)

		s.Train = append(s.Train, items[:nTrain]...)
		s.Dev = append(s.Dev, items[nTrain:nTrain+nDev]...)
		s.Test = append(s.Test, items[nTrain+nDev:]...)
	}

	for _, part := range [][]types.TrainingExample{s.Train, s.Dev, s.Test} {
		rng.Shuffle(len(part), func(i, j int) { part[i], part[j] = part[j], part[i] })
	}
	return s
}

// NewRand returns a generator seeded with seed, or a randomly seeded one
// when seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}
