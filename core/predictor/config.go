package predictor

// Canonical model names. They key the artifact directories, the performance
// store and every metrics label.
const (
	ModelRoute       = "route_optimizer"
	ModelFuel        = "fuel_predictor"
	ModelMaintenance = "maintenance_forecaster"
)

// ModelConfig fixes a model's topology and training settings. It is persisted
// next to the weights so a loaded artifact can be checked against the code
// loading it.
type ModelConfig struct {
	Name            string  `json:"name"`
	Version         string  `json:"version"`
	InputSize       int     `json:"input_size"`
	OutputSize      int     `json:"output_size"`
	HiddenLayers    []int   `json:"hidden_layers"`
	LearningRate    float64 `json:"learning_rate"`
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batch_size"`
	ValidationSplit float64 `json:"validation_split"`
	TrainingSamples int     `json:"training_samples"`
}

// Layers returns the full layer size list, input first and output last.
func (c ModelConfig) Layers() []int {
	sizes := make([]int, 0, len(c.HiddenLayers)+2)
	sizes = append(sizes, c.InputSize)
	sizes = append(sizes, c.HiddenLayers...)
	return append(sizes, c.OutputSize)
}

// RouteConfig returns the production settings of the route optimizer.
func RouteConfig() ModelConfig {
	return ModelConfig{
		Name:            ModelRoute,
		Version:         "1.0.0",
		InputSize:       10,
		OutputSize:      3,
		HiddenLayers:    []int{32, 16},
		LearningRate:    0.001,
		Epochs:          100,
		BatchSize:       32,
		ValidationSplit: 0.2,
		TrainingSamples: 2000,
	}
}

// FuelConfig returns the production settings of the fuel predictor.
func FuelConfig() ModelConfig {
	return ModelConfig{
		Name:            ModelFuel,
		Version:         "1.0.0",
		InputSize:       10,
		OutputSize:      3,
		HiddenLayers:    []int{32, 16},
		LearningRate:    0.001,
		Epochs:          150,
		BatchSize:       32,
		ValidationSplit: 0.2,
		TrainingSamples: 2500,
	}
}

// MaintenanceConfig returns the production settings of the maintenance
// forecaster.
func MaintenanceConfig() ModelConfig {
	return ModelConfig{
		Name:            ModelMaintenance,
		Version:         "1.0.0",
		InputSize:       12,
		OutputSize:      4,
		HiddenLayers:    []int{48, 24},
		LearningRate:    0.001,
		Epochs:          120,
		BatchSize:       16,
		ValidationSplit: 0.2,
		TrainingSamples: 1500,
	}
}

// DefaultConfigs lists the three production models in training order.
func DefaultConfigs() []ModelConfig {
	return []ModelConfig{RouteConfig(), FuelConfig(), MaintenanceConfig()}
}
