// Package predictor hosts the vessel prediction service. Three regression
// models cover voyage planning concerns: route optimization, fuel consumption
// and maintenance forecasting. Each model owns a feature codec, a physics
// baseline and a bounded post-processing step, so raw network output is only
// ever a correction around a defensible estimate.
//
// The Service orchestrates the models: it initializes them concurrently,
// serves predictions, tracks a rolling outcome history, evaluates model
// quality from that history and retrains on synthetic data when quality
// drops below the configured threshold. All observability is pushed through
// injected sinks and stores; the package itself performs no network I/O.
package predictor
