// Package nn implements the small feed-forward regression network backing the
// prediction models. Hidden layers use ReLU, the output layer uses a sigmoid
// so every output lands in [0,1]. Training runs mini-batch Adam over an MSE
// loss. Forward is read-only; callers that train concurrently must hold their
// own write lock.
package nn

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Adam hyper-parameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// ErrNotCompiled is returned when a zero-value network is used before New or
// UnmarshalJSON populated its layers.
var ErrNotCompiled = errors.New("nn: network not compiled")

// Network is a dense feed-forward regressor.
type Network struct {
	sizes   []int
	weights []*mat.Dense    // weights[l] maps layer l to l+1, shape sizes[l+1] x sizes[l]
	biases  []*mat.VecDense // biases[l] has length sizes[l+1]

	// Adam state, rebuilt on load.
	mW, vW []*mat.Dense
	mB, vB []*mat.VecDense
	step   int

	rng *rand.Rand
}

// TrainOptions controls a single fitting run.
type TrainOptions struct {
	LearningRate    float64
	Epochs          int
	BatchSize       int
	ValidationSplit float64
}

// TrainResult reports the outcome of a fitting run. When no samples were held
// out for validation, ValidationLoss mirrors Loss.
type TrainResult struct {
	Epochs         int
	Loss           float64
	ValidationLoss float64
	LossHistory    []float64
}

// New builds a network with the given layer sizes (input first, output last)
// and Xavier-style uniform initial weights drawn from a generator seeded with
// seed. Identical sizes and seed produce identical networks.
func New(sizes []int, seed int64) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("nn: need at least input and output layers, got %d", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("nn: layer %d has non-positive size %d", i, s)
		}
	}

	n := &Network{
		sizes: append([]int(nil), sizes...),
		rng:   rand.New(rand.NewSource(seed)),
	}
	n.allocate()
	for l := 0; l < len(n.weights); l++ {
		limit := math.Sqrt(6.0 / float64(sizes[l]+sizes[l+1]))
		data := n.weights[l].RawMatrix().Data
		for i := range data {
			data[i] = (n.rng.Float64()*2 - 1) * limit
		}
	}
	return n, nil
}

// allocate builds weight, bias and optimizer buffers for n.sizes.
func (n *Network) allocate() {
	layers := len(n.sizes) - 1
	n.weights = make([]*mat.Dense, layers)
	n.biases = make([]*mat.VecDense, layers)
	n.mW = make([]*mat.Dense, layers)
	n.vW = make([]*mat.Dense, layers)
	n.mB = make([]*mat.VecDense, layers)
	n.vB = make([]*mat.VecDense, layers)
	for l := 0; l < layers; l++ {
		rows, cols := n.sizes[l+1], n.sizes[l]
		n.weights[l] = mat.NewDense(rows, cols, nil)
		n.biases[l] = mat.NewVecDense(rows, nil)
		n.mW[l] = mat.NewDense(rows, cols, nil)
		n.vW[l] = mat.NewDense(rows, cols, nil)
		n.mB[l] = mat.NewVecDense(rows, nil)
		n.vB[l] = mat.NewVecDense(rows, nil)
	}
	n.step = 0
}

// InputSize returns the width of the input layer.
func (n *Network) InputSize() int {
	if len(n.sizes) == 0 {
		return 0
	}
	return n.sizes[0]
}

// OutputSize returns the width of the output layer.
func (n *Network) OutputSize() int {
	if len(n.sizes) == 0 {
		return 0
	}
	return n.sizes[len(n.sizes)-1]
}

// Sizes returns a copy of the layer sizes.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Forward runs inference on a single input vector. It does not mutate the
// network, so concurrent calls are safe as long as no Train runs alongside.
func (n *Network) Forward(in []float64) ([]float64, error) {
	if len(n.weights) == 0 {
		return nil, ErrNotCompiled
	}
	if len(in) != n.sizes[0] {
		return nil, fmt.Errorf("nn: input has %d features, network expects %d", len(in), n.sizes[0])
	}

	act := mat.NewVecDense(len(in), append([]float64(nil), in...))
	for l := 0; l < len(n.weights); l++ {
		z := mat.NewVecDense(n.sizes[l+1], nil)
		z.MulVec(n.weights[l], act)
		z.AddVec(z, n.biases[l])
		applyActivation(z, l == len(n.weights)-1)
		act = z
	}

	out := make([]float64, act.Len())
	copy(out, act.RawVector().Data)
	return out, nil
}

// Loss returns the mean squared error of the network over the given set.
func (n *Network) Loss(inputs, targets [][]float64) (float64, error) {
	if len(inputs) == 0 || len(inputs) != len(targets) {
		return 0, fmt.Errorf("nn: loss needs matching non-empty sets, got %d inputs and %d targets", len(inputs), len(targets))
	}
	var sum float64
	for i := range inputs {
		out, err := n.Forward(inputs[i])
		if err != nil {
			return 0, err
		}
		if len(targets[i]) != len(out) {
			return 0, fmt.Errorf("nn: target %d has %d values, network outputs %d", i, len(targets[i]), len(out))
		}
		for j := range out {
			d := out[j] - targets[i][j]
			sum += d * d
		}
	}
	return sum / float64(len(inputs)*n.OutputSize()), nil
}

// Train fits the network on the given samples. Batches are reshuffled every
// epoch from the network's seeded generator, so runs are reproducible. A
// positive ValidationSplit holds out the tail of the (pre-shuffled) set and
// tracks its MSE per epoch.
func (n *Network) Train(inputs, targets [][]float64, opts TrainOptions) (*TrainResult, error) {
	if len(n.weights) == 0 {
		return nil, ErrNotCompiled
	}
	if err := n.checkSet(inputs, targets); err != nil {
		return nil, err
	}
	if opts.LearningRate <= 0 {
		return nil, fmt.Errorf("nn: learning rate must be positive, got %v", opts.LearningRate)
	}
	if opts.Epochs <= 0 {
		return nil, fmt.Errorf("nn: epochs must be positive, got %d", opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("nn: batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.ValidationSplit < 0 || opts.ValidationSplit >= 1 {
		return nil, fmt.Errorf("nn: validation split must be in [0,1), got %v", opts.ValidationSplit)
	}

	// One up-front shuffle so the validation tail is not biased by input order.
	shuffled := n.rng.Perm(len(inputs))

	valCount := int(float64(len(inputs)) * opts.ValidationSplit)
	trainIdx := shuffled[:len(shuffled)-valCount]
	valIdx := shuffled[len(shuffled)-valCount:]
	if len(trainIdx) == 0 {
		return nil, fmt.Errorf("nn: validation split %v leaves no training samples", opts.ValidationSplit)
	}

	batch := opts.BatchSize
	if batch > len(trainIdx) {
		batch = len(trainIdx)
	}

	gradW, gradB := n.newGradients()
	res := &TrainResult{Epochs: opts.Epochs, LossHistory: make([]float64, 0, opts.Epochs)}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		n.rng.Shuffle(len(trainIdx), func(i, j int) {
			trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
		})

		var epochLoss float64
		var seen int
		for start := 0; start < len(trainIdx); start += batch {
			end := start + batch
			if end > len(trainIdx) {
				end = len(trainIdx)
			}
			loss := n.fitBatch(inputs, targets, trainIdx[start:end], gradW, gradB, opts.LearningRate)
			epochLoss += loss * float64(end-start)
			seen += end - start
		}
		res.Loss = epochLoss / float64(seen)
		res.LossHistory = append(res.LossHistory, res.Loss)
	}

	res.ValidationLoss = res.Loss
	if len(valIdx) > 0 {
		valIn := make([][]float64, len(valIdx))
		valOut := make([][]float64, len(valIdx))
		for i, idx := range valIdx {
			valIn[i] = inputs[idx]
			valOut[i] = targets[idx]
		}
		vl, err := n.Loss(valIn, valOut)
		if err != nil {
			return nil, err
		}
		res.ValidationLoss = vl
	}
	return res, nil
}

func (n *Network) checkSet(inputs, targets [][]float64) error {
	if len(inputs) == 0 {
		return errors.New("nn: training set is empty")
	}
	if len(inputs) != len(targets) {
		return fmt.Errorf("nn: %d inputs but %d targets", len(inputs), len(targets))
	}
	for i := range inputs {
		if len(inputs[i]) != n.InputSize() {
			return fmt.Errorf("nn: sample %d has %d features, network expects %d", i, len(inputs[i]), n.InputSize())
		}
		if len(targets[i]) != n.OutputSize() {
			return fmt.Errorf("nn: target %d has %d values, network outputs %d", i, len(targets[i]), n.OutputSize())
		}
	}
	return nil
}

func (n *Network) newGradients() ([]*mat.Dense, []*mat.VecDense) {
	gradW := make([]*mat.Dense, len(n.weights))
	gradB := make([]*mat.VecDense, len(n.biases))
	for l := range n.weights {
		r, c := n.weights[l].Dims()
		gradW[l] = mat.NewDense(r, c, nil)
		gradB[l] = mat.NewVecDense(r, nil)
	}
	return gradW, gradB
}

// fitBatch accumulates backprop gradients over one mini-batch and applies a
// single Adam step. It returns the mean squared error of the batch.
func (n *Network) fitBatch(inputs, targets [][]float64, idx []int, gradW []*mat.Dense, gradB []*mat.VecDense, lr float64) float64 {
	for l := range gradW {
		zero(gradW[l].RawMatrix().Data)
		zero(gradB[l].RawVector().Data)
	}

	var loss float64
	for _, s := range idx {
		acts, zs := n.forwardPass(inputs[s])
		out := acts[len(acts)-1]

		// Output delta for MSE through the sigmoid.
		delta := mat.NewVecDense(out.Len(), nil)
		for j := 0; j < out.Len(); j++ {
			a := out.AtVec(j)
			d := a - targets[s][j]
			loss += d * d
			delta.SetVec(j, d*a*(1-a))
		}

		for l := len(n.weights) - 1; l >= 0; l-- {
			gradW[l].RankOne(gradW[l], 1, delta, acts[l])
			gradB[l].AddVec(gradB[l], delta)
			if l == 0 {
				break
			}
			next := mat.NewVecDense(n.sizes[l], nil)
			next.MulVec(n.weights[l].T(), delta)
			for j := 0; j < next.Len(); j++ {
				if zs[l-1].AtVec(j) <= 0 {
					next.SetVec(j, 0)
				}
			}
			delta = next
		}
	}

	n.step++
	scale := 1 / float64(len(idx))
	for l := range n.weights {
		adamUpdate(n.weights[l].RawMatrix().Data, gradW[l].RawMatrix().Data, n.mW[l].RawMatrix().Data, n.vW[l].RawMatrix().Data, scale, lr, n.step)
		adamUpdate(n.biases[l].RawVector().Data, gradB[l].RawVector().Data, n.mB[l].RawVector().Data, n.vB[l].RawVector().Data, scale, lr, n.step)
	}
	return loss / float64(len(idx)*n.OutputSize())
}

// forwardPass returns activations per layer (input included) and the
// pre-activation values of every non-input layer.
func (n *Network) forwardPass(in []float64) ([]*mat.VecDense, []*mat.VecDense) {
	acts := make([]*mat.VecDense, 0, len(n.sizes))
	zs := make([]*mat.VecDense, 0, len(n.weights))

	act := mat.NewVecDense(len(in), append([]float64(nil), in...))
	acts = append(acts, act)
	for l := 0; l < len(n.weights); l++ {
		z := mat.NewVecDense(n.sizes[l+1], nil)
		z.MulVec(n.weights[l], act)
		z.AddVec(z, n.biases[l])
		zs = append(zs, mat.VecDenseCopyOf(z))
		applyActivation(z, l == len(n.weights)-1)
		acts = append(acts, z)
		act = z
	}
	return acts, zs
}

func applyActivation(z *mat.VecDense, output bool) {
	data := z.RawVector().Data
	for i, v := range data {
		if output {
			data[i] = 1 / (1 + math.Exp(-v))
		} else if v < 0 {
			data[i] = 0
		}
	}
}

// adamUpdate applies one bias-corrected Adam step. grad holds the summed
// batch gradient and is scaled by scale before use.
func adamUpdate(param, grad, m, v []float64, scale, lr float64, step int) {
	c1 := 1 - math.Pow(adamBeta1, float64(step))
	c2 := 1 - math.Pow(adamBeta2, float64(step))
	for i := range param {
		g := grad[i] * scale
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*g
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*g*g
		mHat := m[i] / c1
		vHat := v[i] / c2
		param[i] -= lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

type snapshot struct {
	Sizes   []int       `json:"sizes"`
	Weights [][]float64 `json:"weights"`
	Biases  [][]float64 `json:"biases"`
}

// MarshalJSON serializes topology and parameters. Optimizer state is not
// persisted.
func (n *Network) MarshalJSON() ([]byte, error) {
	if len(n.weights) == 0 {
		return nil, ErrNotCompiled
	}
	s := snapshot{
		Sizes:   n.sizes,
		Weights: make([][]float64, len(n.weights)),
		Biases:  make([][]float64, len(n.biases)),
	}
	for l := range n.weights {
		s.Weights[l] = append([]float64(nil), n.weights[l].RawMatrix().Data...)
		s.Biases[l] = append([]float64(nil), n.biases[l].RawVector().Data...)
	}
	return json.Marshal(s)
}

// UnmarshalJSON restores topology and parameters, resetting optimizer state.
// The random generator of the receiver is kept when present.
func (n *Network) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("nn: decode snapshot: %w", err)
	}
	if len(s.Sizes) < 2 {
		return fmt.Errorf("nn: snapshot has %d layers, need at least 2", len(s.Sizes))
	}
	layers := len(s.Sizes) - 1
	if len(s.Weights) != layers || len(s.Biases) != layers {
		return fmt.Errorf("nn: snapshot has %d weight and %d bias blocks for %d layers", len(s.Weights), len(s.Biases), layers)
	}
	for l := 0; l < layers; l++ {
		if s.Sizes[l] <= 0 || s.Sizes[l+1] <= 0 {
			return fmt.Errorf("nn: snapshot layer %d has non-positive size", l)
		}
		if want := s.Sizes[l] * s.Sizes[l+1]; len(s.Weights[l]) != want {
			return fmt.Errorf("nn: snapshot weight block %d has %d values, want %d", l, len(s.Weights[l]), want)
		}
		if len(s.Biases[l]) != s.Sizes[l+1] {
			return fmt.Errorf("nn: snapshot bias block %d has %d values, want %d", l, len(s.Biases[l]), s.Sizes[l+1])
		}
	}

	n.sizes = append([]int(nil), s.Sizes...)
	n.allocate()
	for l := 0; l < layers; l++ {
		copy(n.weights[l].RawMatrix().Data, s.Weights[l])
		copy(n.biases[l].RawVector().Data, s.Biases[l])
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(1))
	}
	return nil
}
