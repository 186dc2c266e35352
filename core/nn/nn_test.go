package nn

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
)

func TestNewRejectsBadTopology(t *testing.T) {
	if _, err := New([]int{4}, 1); err == nil {
		t.Fatal("expected error for single-layer topology")
	}
	if _, err := New([]int{4, 0, 2}, 1); err == nil {
		t.Fatal("expected error for zero-width layer")
	}
	if _, err := New(nil, 1); err == nil {
		t.Fatal("expected error for empty topology")
	}
}

func TestForwardShapeAndRange(t *testing.T) {
	net, err := New([]int{3, 8, 2}, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := net.Forward([]float64{0.1, 0.5, 0.9})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(out))
	}
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Fatalf("output %d = %v outside sigmoid range", i, v)
		}
	}
}

func TestForwardRejectsWrongWidth(t *testing.T) {
	net, err := New([]int{3, 4, 1}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := net.Forward([]float64{1, 2}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestZeroValueNetworkNotCompiled(t *testing.T) {
	var net Network
	if _, err := net.Forward([]float64{1}); err != ErrNotCompiled {
		t.Fatalf("expected ErrNotCompiled, got %v", err)
	}
	if _, err := net.Train([][]float64{{1}}, [][]float64{{1}}, TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1}); err != ErrNotCompiled {
		t.Fatalf("expected ErrNotCompiled, got %v", err)
	}
}

func TestDeterministicInit(t *testing.T) {
	a, err := New([]int{4, 6, 2}, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New([]int{4, 6, 2}, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := []float64{0.2, 0.4, 0.6, 0.8}
	outA, _ := a.Forward(in)
	outB, _ := b.Forward(in)
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("same seed produced different outputs: %v vs %v", outA, outB)
		}
	}
}

// smoothTask builds a simple regression dataset whose targets stay well inside
// the sigmoid range.
func smoothTask(n int, seed int64) ([][]float64, [][]float64) {
	rng := rand.New(rand.NewSource(seed))
	inputs := make([][]float64, n)
	targets := make([][]float64, n)
	for i := 0; i < n; i++ {
		x1, x2 := rng.Float64(), rng.Float64()
		inputs[i] = []float64{x1, x2}
		targets[i] = []float64{0.25 + 0.25*(x1+x2)}
	}
	return inputs, targets
}

func TestTrainReducesLoss(t *testing.T) {
	inputs, targets := smoothTask(400, 3)
	net, err := New([]int{2, 8, 1}, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before, err := net.Loss(inputs, targets)
	if err != nil {
		t.Fatalf("Loss: %v", err)
	}

	res, err := net.Train(inputs, targets, TrainOptions{
		LearningRate:    0.01,
		Epochs:          150,
		BatchSize:       32,
		ValidationSplit: 0.2,
	})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if res.Loss >= before {
		t.Fatalf("training did not reduce loss: before %v after %v", before, res.Loss)
	}
	if res.Loss > 0.05 {
		t.Fatalf("final loss too high: %v", res.Loss)
	}
	if res.ValidationLoss > 0.1 {
		t.Fatalf("validation loss too high: %v", res.ValidationLoss)
	}
	if len(res.LossHistory) != 150 {
		t.Fatalf("expected 150 history entries, got %d", len(res.LossHistory))
	}
}

func TestTrainIsReproducible(t *testing.T) {
	inputs, targets := smoothTask(120, 11)
	opts := TrainOptions{LearningRate: 0.01, Epochs: 20, BatchSize: 16}

	a, _ := New([]int{2, 6, 1}, 99)
	b, _ := New([]int{2, 6, 1}, 99)
	resA, err := a.Train(inputs, targets, opts)
	if err != nil {
		t.Fatalf("Train a: %v", err)
	}
	resB, err := b.Train(inputs, targets, opts)
	if err != nil {
		t.Fatalf("Train b: %v", err)
	}

	if math.Abs(resA.Loss-resB.Loss) > 1e-12 {
		t.Fatalf("same seed diverged: %v vs %v", resA.Loss, resB.Loss)
	}
	outA, _ := a.Forward([]float64{0.3, 0.7})
	outB, _ := b.Forward([]float64{0.3, 0.7})
	if math.Abs(outA[0]-outB[0]) > 1e-12 {
		t.Fatalf("same seed produced different parameters: %v vs %v", outA[0], outB[0])
	}
}

func TestTrainValidatesArguments(t *testing.T) {
	net, err := New([]int{2, 4, 1}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	inputs, targets := smoothTask(10, 1)

	cases := []struct {
		name    string
		inputs  [][]float64
		targets [][]float64
		opts    TrainOptions
	}{
		{"empty set", nil, nil, TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1}},
		{"length mismatch", inputs, targets[:5], TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1}},
		{"bad feature width", [][]float64{{1}}, [][]float64{{1}}, TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1}},
		{"bad target width", [][]float64{{1, 2}}, [][]float64{{1, 2}}, TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1}},
		{"zero learning rate", inputs, targets, TrainOptions{Epochs: 1, BatchSize: 1}},
		{"zero epochs", inputs, targets, TrainOptions{LearningRate: 0.01, BatchSize: 1}},
		{"zero batch", inputs, targets, TrainOptions{LearningRate: 0.01, Epochs: 1}},
		{"split too large", inputs, targets, TrainOptions{LearningRate: 0.01, Epochs: 1, BatchSize: 1, ValidationSplit: 1}},
	}
	for _, c := range cases {
		if _, err := net.Train(c.inputs, c.targets, c.opts); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	inputs, targets := smoothTask(100, 21)
	net, err := New([]int{2, 6, 1}, 13)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := net.Train(inputs, targets, TrainOptions{LearningRate: 0.01, Epochs: 10, BatchSize: 16}); err != nil {
		t.Fatalf("Train: %v", err)
	}

	data, err := json.Marshal(net)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var restored Network
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got, want := restored.InputSize(), 2; got != want {
		t.Fatalf("restored input size %d, want %d", got, want)
	}
	if got, want := restored.OutputSize(), 1; got != want {
		t.Fatalf("restored output size %d, want %d", got, want)
	}

	probes := [][]float64{{0.1, 0.9}, {0.5, 0.5}, {0.8, 0.2}}
	for _, p := range probes {
		a, _ := net.Forward(p)
		b, err := restored.Forward(p)
		if err != nil {
			t.Fatalf("restored Forward: %v", err)
		}
		if math.Abs(a[0]-b[0]) > 1e-12 {
			t.Fatalf("restored network diverges at %v: %v vs %v", p, a[0], b[0])
		}
	}
}

func TestUnmarshalRejectsCorruptSnapshots(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"single layer", `{"sizes":[3],"weights":[],"biases":[]}`},
		{"missing weights", `{"sizes":[2,1],"weights":[],"biases":[[0]]}`},
		{"short weight block", `{"sizes":[2,1],"weights":[[0.5]],"biases":[[0]]}`},
		{"short bias block", `{"sizes":[2,2],"weights":[[1,2,3,4]],"biases":[[0]]}`},
		{"zero width layer", `{"sizes":[2,0],"weights":[[]],"biases":[[]]}`},
	}
	for _, c := range cases {
		var net Network
		if err := json.Unmarshal([]byte(c.data), &net); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestLossMatchesForward(t *testing.T) {
	net, err := New([]int{1, 3, 1}, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := []float64{0.4}
	out, err := net.Forward(in)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	target := out[0] + 0.1

	loss, err := net.Loss([][]float64{in}, [][]float64{{target}})
	if err != nil {
		t.Fatalf("Loss: %v", err)
	}
	if math.Abs(loss-0.01) > 1e-9 {
		t.Fatalf("expected loss 0.01, got %v", loss)
	}
}
