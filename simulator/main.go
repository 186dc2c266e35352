package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/infra/metrics"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}
	if cfg.Seed != 0 {
		fleetRng = rand.New(rand.NewSource(cfg.Seed))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.InfluxURL != "" {
		sink = metrics.NewInfluxSinkWithFallback(metrics.InfluxConfig{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		})
	}

	var tmpl map[string]VesselTemplate
	if cfg.TemplateFile != "" {
		data, err := os.ReadFile(cfg.TemplateFile)
		if err != nil {
			log.Fatalf("template file: %v", err)
		}
		tmpl, err = LoadVesselTemplates(data)
		if err != nil {
			log.Fatalf("template file: %v", err)
		}
	}

	vessels := GenerateFleet(FleetConfig{Size: cfg.Vessels, MeanAge: cfg.MeanAge}, tmpl)

	if cfg.HealthEvery > 0 {
		watcher := &HealthWatcher{
			Broker:       cfg.Broker,
			RequestTopic: "fleet/health/request",
			ReportTopic:  "fleet/health/report",
			Every:        cfg.HealthEvery,
			Sink:         sink,
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Printf("health watcher: %v", err)
			}
		}()
	}

	runVessels(ctx, vessels, cfg)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Vessels, "vessels", 1, "number of simulated vessels")
	flag.DurationVar(&cfg.Interval, "interval", 30*time.Second, "telemetry publish interval")
	flag.Float64Var(&cfg.TickHours, "tick-hours", 6, "operating hours simulated per interval")
	flag.StringVar(&cfg.TopicPrefix, "topic-prefix", "fleet", "MQTT topic prefix")
	flag.Float64Var(&cfg.MeanAge, "mean-age", 12, "mean vessel age in years")
	flag.StringVar(&cfg.TemplateFile, "template-file", "", "vessel template overrides")
	flag.DurationVar(&cfg.HealthEvery, "health-every", 0, "fleet health request interval (0 disables)")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 uses the clock)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.StringVar(&cfg.InfluxURL, "influx-url", "", "InfluxDB URL")
	flag.StringVar(&cfg.InfluxToken, "influx-token", "", "InfluxDB token")
	flag.StringVar(&cfg.InfluxOrg, "influx-org", "", "InfluxDB organization")
	flag.StringVar(&cfg.InfluxBucket, "influx-bucket", "", "InfluxDB bucket")
	flag.Parse()
	return cfg
}

func runVessels(ctx context.Context, vessels []SimulatedVessel, cfg Config) {
	var wg sync.WaitGroup
	for i := range vessels {
		v := &vessels[i]
		v.Broker = cfg.Broker
		v.TopicPrefix = cfg.TopicPrefix
		v.Interval = cfg.Interval
		v.TickHours = cfg.TickHours
		wg.Add(1)
		go func(v *SimulatedVessel) {
			defer wg.Done()
			if err := v.Run(ctx); err != nil {
				log.Printf("%s: %v", v.ID, err)
			}
		}(v)
	}
	wg.Wait()
}
