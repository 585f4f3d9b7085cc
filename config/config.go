package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cepro/solarfocus/device"
	"github.com/cepro/solarfocus/factory"
	"github.com/cepro/solarfocus/modbus"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Modbus drivers
const (
	DriverSimonVetter = "simonvetter"
	DriverGridX       = "gridx"
	DriverSimulator   = "simulator"
)

// MQTTPasswordEnv is the environment variable holding the MQTT password.
const MQTTPasswordEnv = "MQTT_PASSWORD"

type ModbusConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	UnitID      uint8  `yaml:"unitId"`
	TimeoutSecs int    `yaml:"timeoutSecs"`
	Driver      string `yaml:"driver"`
}

// Client returns the transport client settings.
func (m ModbusConfig) Client() modbus.ClientConfig {
	return modbus.ClientConfig{
		Host:    m.Host,
		Port:    m.Port,
		UnitID:  m.UnitID,
		Timeout: time.Duration(m.TimeoutSecs) * time.Second,
	}
}

type DeviceConfig struct {
	ID                uuid.UUID      `yaml:"id"`
	System            device.System  `yaml:"system"`
	APIVersion        device.Version `yaml:"apiVersion"`
	Counts            factory.Counts `yaml:"counts"`
	PollIntervalSecs  int            `yaml:"pollIntervalSecs"`
	UpdateTimeoutSecs int            `yaml:"updateTimeoutSecs"`
	Parallelism       int            `yaml:"parallelism"`
}

func (d DeviceConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalSecs) * time.Second
}

func (d DeviceConfig) UpdateTimeout() time.Duration {
	return time.Duration(d.UpdateTimeoutSecs) * time.Second
}

type SimulatorConfig struct {
	// Address the emulated controller listens on when the simulator driver is selected.
	Address        string `yaml:"address"`
	StepPeriodSecs int    `yaml:"stepPeriodSecs"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"clientId"`
	Username    string `yaml:"username"`
	TopicPrefix string `yaml:"topicPrefix"`
	// password is specified via env var
	Password string `yaml:"-"`
}

// Enabled reports whether an MQTT broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

type MetricsConfig struct {
	// Address serves Prometheus metrics, e.g. ":9100". Empty disables the endpoint.
	Address string `yaml:"address"`
}

type Config struct {
	Modbus    ModbusConfig    `yaml:"modbus"`
	Device    DeviceConfig    `yaml:"device"`
	Simulator SimulatorConfig `yaml:"simulator"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Default returns the configuration used for every setting the config file leaves out.
func Default() Config {
	return Config{
		Modbus: ModbusConfig{
			Port:        modbus.DefaultPort,
			UnitID:      modbus.DefaultUnitID,
			TimeoutSecs: int(modbus.DefaultTimeout / time.Second),
			Driver:      DriverSimonVetter,
		},
		Device: DeviceConfig{
			System:            device.Vampair,
			APIVersion:        device.V21_140,
			Counts:            factory.DefaultCounts(),
			PollIntervalSecs:  30,
			UpdateTimeoutSecs: 10,
		},
		Simulator: SimulatorConfig{
			Address:        "127.0.0.1:1502",
			StepPeriodSecs: 5,
		},
		MQTT: MQTTConfig{
			ClientID:    "solarfocus",
			TopicPrefix: "solarfocus",
		},
	}
}

// Read loads the YAML config file at path on top of the defaults and takes secrets from the environment.
func Read(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	config, err := Parse(content)
	if err != nil {
		return Config{}, err
	}
	config.MQTT.Password = os.Getenv(MQTTPasswordEnv)

	return config, nil
}

// Parse decodes YAML config on top of the defaults and validates the result.
func Parse(content []byte) (Config, error) {
	config := Default()
	err := yaml.Unmarshal(content, &config)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Modbus.Driver {
	case DriverSimonVetter, DriverGridX:
		if c.Modbus.Host == "" {
			return fmt.Errorf("modbus host is required for driver '%s'", c.Modbus.Driver)
		}
	case DriverSimulator:
		if c.Simulator.Address == "" {
			return fmt.Errorf("simulator address is required for driver '%s'", DriverSimulator)
		}
	default:
		return fmt.Errorf("unknown modbus driver '%s'", c.Modbus.Driver)
	}
	if c.Modbus.Port <= 0 || c.Modbus.Port > 65535 {
		return fmt.Errorf("invalid modbus port %d", c.Modbus.Port)
	}
	if c.Device.PollIntervalSecs <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Device.UpdateTimeoutSecs <= 0 {
		return fmt.Errorf("update timeout must be positive")
	}

	f, err := factory.New(c.Device.System, c.Device.APIVersion)
	if err != nil {
		return err
	}
	return f.ValidateCounts(c.Device.Counts)
}
