package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cepro/solarfocus/config"
	"github.com/cepro/solarfocus/controller"
	dataplatform "github.com/cepro/solarfocus/data_platform"
	"github.com/cepro/solarfocus/factory"
	"github.com/cepro/solarfocus/modbus"
	"github.com/cepro/solarfocus/simulator"
	"github.com/cepro/solarfocus/solarfocus"
	"github.com/cepro/solarfocus/telemetry"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"
)

func main() {
	configPath := flag.String("config", "solarfocus.yaml", "Path to the YAML config file")
	envPath := flag.String("env", ".env", "Path to an optional .env file holding secrets")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	slog.Info("Starting solarfocus...")

	err := godotenv.Load(*envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load env file", "path", *envPath, "error", err)
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		slog.Error("Failed to read config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport, err := newTransport(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create modbus transport", "error", err)
		os.Exit(1)
	}

	api, err := solarfocus.New(transport, solarfocus.Config{
		System:      cfg.Device.System,
		Version:     cfg.Device.APIVersion,
		Counts:      cfg.Device.Counts,
		Parallelism: cfg.Device.Parallelism,
	})
	if err != nil {
		slog.Error("Failed to create heating controller API", "error", err)
		os.Exit(1)
	}
	defer api.Close()

	collector, err := telemetry.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		slog.Error("Failed to create metrics collector", "error", err)
		os.Exit(1)
	}
	if cfg.Metrics.Address != "" {
		go serveMetrics(cfg.Metrics.Address)
	}

	var dataPlatform *dataplatform.DataPlatform
	if cfg.MQTT.Enabled() {
		dataPlatform, err = dataplatform.New(dataplatform.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			slog.Error("Failed to create data platform", "error", err)
			os.Exit(1)
		}
		go dataPlatform.Run(ctx)
	}

	readings := make(chan telemetry.Reading, 5)
	ctrl := controller.New(api, controller.Config{
		DeviceID:      cfg.Device.ID,
		PollInterval:  cfg.Device.PollInterval(),
		UpdateTimeout: cfg.Device.UpdateTimeout(),
		Readings:      readings,
	})
	go ctrl.Run(ctx)

	// readings go to both the metrics and the data platform, commands from the data platform go to the controller
	go func() {
		var commands <-chan telemetry.Command
		if dataPlatform != nil {
			commands = dataPlatform.Commands
		}
		for {
			select {
			case <-ctx.Done():
				return
			case reading := <-readings:
				collector.Observe(reading)
				if dataPlatform != nil {
					select {
					case dataPlatform.Readings <- reading:
					default:
						slog.Warn("Dropping reading, data platform is behind")
					}
				}
			case cmd := <-commands:
				select {
				case ctrl.Commands <- cmd:
				default:
					slog.Warn("Dropping command, controller is busy", "component", cmd.Component, "register", cmd.Register)
				}
			}
		}
	}()

	// wait for an interrupt before exiting
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	<-signalChan

	// cancel any open go-routines and give them up to 100ms to gracefully shutdown
	cancel()
	time.Sleep(time.Millisecond * 100)

	slog.Info("Exiting")
}

// newTransport creates the modbus client for the configured driver. The simulator driver starts an emulated
// heating controller and connects to it.
func newTransport(ctx context.Context, cfg config.Config) (solarfocus.Transport, error) {
	switch cfg.Modbus.Driver {
	case config.DriverGridX:
		return modbus.NewGridXClient(cfg.Modbus.Client())
	case config.DriverSimulator:
		return startSimulator(ctx, cfg)
	default:
		return modbus.NewClient(cfg.Modbus.Client())
	}
}

func startSimulator(ctx context.Context, cfg config.Config) (solarfocus.Transport, error) {
	f, err := factory.New(cfg.Device.System, cfg.Device.APIVersion)
	if err != nil {
		return nil, err
	}
	set, err := f.Build(cfg.Device.Counts)
	if err != nil {
		return nil, err
	}

	sim := simulator.New(set.All())
	err = sim.Listen(cfg.Simulator.Address)
	if err != nil {
		return nil, err
	}
	go func() {
		sim.Run(ctx, time.Duration(cfg.Simulator.StepPeriodSecs)*time.Second)
		sim.Close()
	}()

	host, portText, err := net.SplitHostPort(cfg.Simulator.Address)
	if err != nil {
		return nil, fmt.Errorf("simulator address: %w", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return nil, fmt.Errorf("simulator port: %w", err)
	}

	clientConfig := cfg.Modbus.Client()
	clientConfig.Host = host
	clientConfig.Port = port
	return modbus.NewClient(clientConfig)
}

func serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("Serving metrics", "address", address)
	err := http.ListenAndServe(address, mux)
	if err != nil {
		slog.Error("Metrics server stopped", "error", err)
	}
}
