package trainer

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/itohio/goneo/pkg/config"
)

// frequencyEvery is how many pressure samples pass between frequency samples.
const frequencyEvery = 10

// Mock simulates a resuscitation trainer for testing and development.
// It emits the same line protocol as the device: "P<float>" and "B<float>".
type Mock struct {
	cfg *config.MockConfig

	lines     chan []byte
	stop      chan struct{}
	done      chan struct{}
	mu        sync.RWMutex
	connected bool

	// Simulation state
	startTime time.Time
	count     int
}

// NewMock creates a new mocked trainer instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	return &Mock{
		cfg: cfg,
	}
}

// Connect starts generating lines.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.lines = make(chan []byte, DefaultBufferSize)
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.connected = true
	m.startTime = time.Now()
	m.count = 0

	go m.generateLines(m.lines, m.stop, m.done)

	return nil
}

// Close stops the generator and waits for it to exit.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}

	close(m.stop)
	m.connected = false
	done := m.done
	m.mu.Unlock()

	<-done
	return nil
}

// IsConnected returns whether the mock is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Available reports whether a generated line is queued.
func (m *Mock) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected && len(m.lines) > 0
}

// ReadLine returns the next generated line or ErrNoData.
func (m *Mock) ReadLine() ([]byte, error) {
	m.mu.RLock()
	lines, connected := m.lines, m.connected
	m.mu.RUnlock()

	if !connected {
		return nil, ErrNotConnected
	}

	select {
	case line := <-lines:
		return line, nil
	default:
		return nil, ErrNoData
	}
}

// generateLines emits simulated lines at the configured sample rate.
func (m *Mock) generateLines(lines chan<- []byte, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			for _, line := range m.nextLines(now) {
				select {
				case lines <- line:
				case <-stop:
					return
				default:
					// Queue full, the poller is behind
				}
			}
		}
	}
}

// nextLines produces the lines for one simulation step at time now.
func (m *Mock) nextLines(now time.Time) [][]byte {
	m.mu.Lock()
	elapsed := now.Sub(m.startTime).Seconds()
	m.count++
	count := m.count
	m.mu.Unlock()

	out := make([][]byte, 0, 3)
	out = append(out, formatLine('P', simulatePressure(m.cfg, elapsed)))

	if count%frequencyEvery == 0 {
		out = append(out, formatLine('B', simulateHeartRate(m.cfg, elapsed)))
	}

	if m.cfg.StatusEvery > 0 && count%m.cfg.StatusEvery == 0 {
		out = append(out, []byte("S OK"))
	}

	return out
}

// simulatePressure models chest compressions as a squared half-sine per cycle.
func simulatePressure(cfg *config.MockConfig, t float64) float64 {
	if cfg.CompressionRate <= 0 {
		return 0
	}
	period := 60.0 / cfg.CompressionRate
	phase := math.Sin(2 * math.Pi * t / period)
	p := 0.0
	if phase > 0 {
		p = cfg.PeakPressure * phase * phase
	}
	p += noise(t, cfg.NoiseLevel)
	return math.Max(p, 0)
}

// simulateHeartRate drifts slowly around the configured rate.
func simulateHeartRate(cfg *config.MockConfig, t float64) float64 {
	bpm := cfg.HeartRate + 0.08*cfg.HeartRate*math.Sin(2*math.Pi*t/30.0)
	bpm += noise(t, cfg.NoiseLevel*0.2)
	return math.Max(bpm, 0)
}

func noise(t, level float64) float64 {
	return (math.Sin(t*1000) + math.Cos(t*1300)) * level * 0.5
}

func formatLine(tag byte, v float64) []byte {
	line := []byte{tag}
	return strconv.AppendFloat(line, v, 'f', 1, 64)
}
