package ann

import "math"

// Network dimensions. Unlike the teacher's fixed HalfKP input width,
// the input layer's size depends on the board's N and is set per
// Network at construction time (FeatureCount(n)).
const (
	L1Size     = 32
	L2Size     = 16
	OutputSize = 1
)

// Network holds the weights of a small feed-forward evaluator: an
// input layer sized to the position's feature vector, two tanh hidden
// layers, and a single tanh output scaled into Evaluation's range.
type Network struct {
	FeatureCount int

	L1Weights [][L1Size]float32 // [feature][hidden]
	L1Bias    [L1Size]float32

	L2Weights [L1Size][L2Size]float32
	L2Bias    [L2Size]float32

	OutputWeights [L2Size]float32
	OutputBias    float32
}

// NewNetwork returns a zero-weighted network sized for boards with the
// given feature count. Weights must be set with InitRandom or loaded
// before the network produces a meaningful evaluation.
func NewNetwork(featureCount int) *Network {
	return &Network{
		FeatureCount: featureCount,
		L1Weights:    make([][L1Size]float32, featureCount),
	}
}

// Forward runs features through the network and returns a score
// scaled to Evaluation's range.
func (n *Network) Forward(features []float32) Evaluation {
	var l1 [L1Size]float32
	copy(l1[:], n.L1Bias[:])
	for i, v := range features {
		if v == 0 {
			continue
		}
		row := n.L1Weights[i]
		for j := 0; j < L1Size; j++ {
			l1[j] += v * row[j]
		}
	}
	for j := range l1 {
		l1[j] = float32(math.Tanh(float64(l1[j])))
	}

	var l2 [L2Size]float32
	copy(l2[:], n.L2Bias[:])
	for i := 0; i < L1Size; i++ {
		for j := 0; j < L2Size; j++ {
			l2[j] += l1[i] * n.L2Weights[i][j]
		}
	}
	for j := range l2 {
		l2[j] = float32(math.Tanh(float64(l2[j])))
	}

	output := n.OutputBias
	for i := 0; i < L2Size; i++ {
		output += l2[i] * n.OutputWeights[i]
	}

	return Evaluation(float32(math.Tanh(float64(output))) * float32(winThreshold))
}

// InitRandom initializes weights with small values from a seeded LCG,
// for use before weights have been trained and saved. Mirrors the
// teacher's InitRandom-for-testing-only helper, substituting small
// floats for its quantized int16 range.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() float32 {
		state = state*6364136223846793005 + 1442695040888963407
		return (float32(state>>40&0xFFFF)/0xFFFF - 0.5) * 0.2
	}

	for i := range n.L1Weights {
		for j := 0; j < L1Size; j++ {
			n.L1Weights[i][j] = next()
		}
	}
	for i := range n.L1Bias {
		n.L1Bias[i] = next()
	}
	for i := 0; i < L1Size; i++ {
		for j := 0; j < L2Size; j++ {
			n.L2Weights[i][j] = next()
		}
	}
	for i := range n.L2Bias {
		n.L2Bias[i] = next()
	}
	for i := range n.OutputWeights {
		n.OutputWeights[i] = next()
	}
	n.OutputBias = next()
}
