package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides (GONEO_SERIAL_PORT etc).
const EnvPrefix = "GONEO"

// BaudRates lists the baud rates the trainer firmware supports.
var BaudRates = []int{9600, 14400, 19200, 38400, 57600, 115200}

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Display     DisplayConfig     `yaml:"display"`
	Log         LogConfig         `yaml:"log"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// AcquisitionConfig controls how the serial connection is polled and how
// samples are converted.
type AcquisitionConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	LinesPerTick  int           `yaml:"lines_per_tick"` // Max lines ingested per poll tick
	PressureScale float64       `yaml:"pressure_scale"` // Raw pressure units to displayed units
}

// DisplayConfig contains chart display parameters.
type DisplayConfig struct {
	MaxPoints int `yaml:"max_points"` // Points drawn per chart after decimation
}

// LogConfig contains log file parameters.
type LogConfig struct {
	File       string `yaml:"file"` // Empty disables the log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MockConfig contains simulated trainer configuration.
type MockConfig struct {
	CompressionRate float64       `yaml:"compression_rate"` // Compressions per minute
	PeakPressure    float64       `yaml:"peak_pressure"`    // Peak raw pressure reading
	HeartRate       float64       `yaml:"heart_rate"`       // Mean beats per minute
	NoiseLevel      float64       `yaml:"noise_level"`      // Raw units
	SampleRate      time.Duration `yaml:"sample_rate"`
	StatusEvery     int           `yaml:"status_every"` // Emit a status line every N samples (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // "/dev/ttyACM0" or "/dev/ttyUSB0" on Linux
			BaudRate: 9600,
		},
		Acquisition: AcquisitionConfig{
			PollInterval:  50 * time.Millisecond,
			LinesPerTick:  1,
			PressureScale: 0.1,
		},
		Display: DisplayConfig{
			MaxPoints: 1000,
		},
		Log: LogConfig{
			File:       "goneo.log",
			MaxSizeMB:  10,
			MaxBackups: 4,
			MaxAgeDays: 180,
		},
		Mock: MockConfig{
			CompressionRate: 90,
			PeakPressure:    400,
			HeartRate:       120,
			NoiseLevel:      5,
			SampleRate:      40 * time.Millisecond,
			StatusEvery:     250,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if !ValidBaudRate(c.Serial.BaudRate) {
		return fmt.Errorf("unsupported baud rate %d (want one of %v)", c.Serial.BaudRate, BaudRates)
	}
	if c.Acquisition.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Acquisition.PollInterval)
	}
	if c.Acquisition.LinesPerTick <= 0 {
		return fmt.Errorf("lines per tick must be positive, got %d", c.Acquisition.LinesPerTick)
	}
	if c.Mock.SampleRate <= 0 {
		return fmt.Errorf("mock sample rate must be positive, got %s", c.Mock.SampleRate)
	}
	return nil
}

// ValidBaudRate reports whether rate is one of BaudRates.
func ValidBaudRate(rate int) bool {
	return slices.Contains(BaudRates, rate)
}

// ApplyEnv overlays GONEO_* environment variables on top of the loaded file.
// Keys mirror the YAML layout, e.g. GONEO_SERIAL_PORT or GONEO_ACQUISITION_POLL_INTERVAL.
func (c *Config) ApplyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.IsSet("serial.port") {
		c.Serial.Port = v.GetString("serial.port")
	}
	if v.IsSet("serial.baud_rate") {
		c.Serial.BaudRate = v.GetInt("serial.baud_rate")
	}
	if v.IsSet("acquisition.poll_interval") {
		c.Acquisition.PollInterval = v.GetDuration("acquisition.poll_interval")
	}
	if v.IsSet("acquisition.lines_per_tick") {
		c.Acquisition.LinesPerTick = v.GetInt("acquisition.lines_per_tick")
	}
	if v.IsSet("acquisition.pressure_scale") {
		c.Acquisition.PressureScale = v.GetFloat64("acquisition.pressure_scale")
	}
	if v.IsSet("log.file") {
		c.Log.File = v.GetString("log.file")
	}

	return c.Validate()
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Acquisition.PollInterval == 0 {
		c.Acquisition.PollInterval = def.Acquisition.PollInterval
	}
	if c.Acquisition.LinesPerTick == 0 {
		c.Acquisition.LinesPerTick = def.Acquisition.LinesPerTick
	}
	if c.Acquisition.PressureScale == 0 {
		c.Acquisition.PressureScale = def.Acquisition.PressureScale
	}

	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}

	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.CompressionRate == 0 {
		c.Mock.CompressionRate = def.Mock.CompressionRate
	}
	if c.Mock.HeartRate == 0 {
		c.Mock.HeartRate = def.Mock.HeartRate
	}
	if c.Mock.PeakPressure == 0 {
		c.Mock.PeakPressure = def.Mock.PeakPressure
	}
}
