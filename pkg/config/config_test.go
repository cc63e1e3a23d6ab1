package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Acquisition.PollInterval)
	assert.Equal(t, 1, cfg.Acquisition.LinesPerTick)
	assert.Equal(t, 0.1, cfg.Acquisition.PressureScale)
	assert.Equal(t, 1000, cfg.Display.MaxPoints)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
  baud_rate: 115200

acquisition:
  poll_interval: 80ms
  lines_per_tick: 4
  pressure_scale: 0.05

display:
  max_points: 500

mock:
  heart_rate: 60
  sample_rate: 10ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 80*time.Millisecond, cfg.Acquisition.PollInterval)
	assert.Equal(t, 4, cfg.Acquisition.LinesPerTick)
	assert.Equal(t, 0.05, cfg.Acquisition.PressureScale)
	assert.Equal(t, 500, cfg.Display.MaxPoints)
	assert.Equal(t, float64(60), cfg.Mock.HeartRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnsupportedBaudRate(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  baud_rate: 12345\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported baud rate")
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  port: \"/dev/ttyACM0\"\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 0.1, cfg.Acquisition.PressureScale)
	assert.Equal(t, 50*time.Millisecond, cfg.Acquisition.PollInterval)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Serial.BaudRate = 57600

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 57600, loaded.Serial.BaudRate)
}

func TestValidBaudRate(t *testing.T) {
	for _, rate := range []int{9600, 14400, 19200, 38400, 57600, 115200} {
		assert.True(t, ValidBaudRate(rate), "rate %d", rate)
	}
	for _, rate := range []int{0, 300, 4800, 230400} {
		assert.False(t, ValidBaudRate(rate), "rate %d", rate)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad baud", func(c *Config) { c.Serial.BaudRate = 1200 }},
		{"zero poll interval", func(c *Config) { c.Acquisition.PollInterval = 0 }},
		{"negative lines per tick", func(c *Config) { c.Acquisition.LinesPerTick = -1 }},
		{"negative mock sample rate", func(c *Config) { c.Mock.SampleRate = -time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GONEO_SERIAL_PORT", "/dev/ttyS9")
	t.Setenv("GONEO_SERIAL_BAUD_RATE", "38400")
	t.Setenv("GONEO_ACQUISITION_POLL_INTERVAL", "25ms")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/dev/ttyS9", cfg.Serial.Port)
	assert.Equal(t, 38400, cfg.Serial.BaudRate)
	assert.Equal(t, 25*time.Millisecond, cfg.Acquisition.PollInterval)
	// Untouched keys keep their values
	assert.Equal(t, 0.1, cfg.Acquisition.PressureScale)
}

func TestApplyEnv_InvalidBaud(t *testing.T) {
	t.Setenv("GONEO_SERIAL_BAUD_RATE", "1234")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnv())
}
