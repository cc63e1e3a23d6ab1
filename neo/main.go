package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goneo/pkg/chart"
	"github.com/itohio/goneo/pkg/config"
	"github.com/itohio/goneo/pkg/ingest"
	"github.com/itohio/goneo/pkg/trainer"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		baudFlag   = flag.Int("b", 0, "Baud rate override (9600, 14400, 19200, 38400, 57600, 115200)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated trainer instead of serial port")
		logFlag    = flag.String("log", "", "Log file override (empty keeps config value)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *baudFlag != 0 {
		if !config.ValidBaudRate(*baudFlag) {
			log.Fatalf("Unsupported baud rate %d (want one of %v)", *baudFlag, config.BaudRates)
		}
		cfg.Serial.BaudRate = *baudFlag
	}
	if *logFlag != "" {
		cfg.Log.File = *logFlag
	}

	closeLog := startLogger(cfg.Log)
	defer closeLog()

	application := app.NewWithID("com.itohio.goneo")

	window := application.NewWindow("Neonatal Resuscitation Trainer")
	window.Resize(fyne.NewSize(1280, 720))
	window.CenterOnScreen()

	ingestor := ingest.New(cfg.Acquisition.PressureScale)

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		ingestor:   ingestor,
		window:     window,
		useMock:    *mockFlag,
		charts: map[ingest.Channel]*chart.ChartWidget{
			ingest.Pressure:  chart.New("Pressure", ingest.Pressure.Unit(), chart.PressureColor, cfg.Display.MaxPoints),
			ingest.Frequency: chart.New("Frequency", ingest.Frequency.Unit(), chart.FrequencyColor, cfg.Display.MaxPoints),
		},
	}

	ingestor.Subscribe(func(ev ingest.Event) {
		handleEvent(state, ev)
	})

	toolbar := createToolbar(state)

	charts := container.NewGridWithRows(2,
		state.charts[ingest.Pressure],
		state.charts[ingest.Frequency],
	)

	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, charts))
	window.SetOnClosed(func() {
		closeConnection(state)
	})

	applyMode(state, ingestor.Mode())
	window.ShowAndRun()
}

// startLogger sends the standard logger to stderr and, if configured, to a
// rotating log file. The returned function closes the file.
func startLogger(cfg config.LogConfig) func() {
	if cfg.File == "" {
		return func() {}
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // megabytes after which new file is created
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return func() {
		log.SetOutput(os.Stderr)
		if err := rotating.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
		}
	}
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	ingestor   *ingest.Ingestor
	device     trainer.Device
	poller     *ingest.Poller
	window     fyne.Window
	useMock    bool

	charts     map[ingest.Channel]*chart.ChartWidget
	portSelect *widget.Select
	baudSelect *widget.Select
	portMap    map[string]string // Display name to port name
	connectBtn *widget.Button
	modeBtn    *widget.Button

	throttle updateThrottle
}

// createToolbar creates the connection and mode groups and the settings button.
func createToolbar(state *appState) fyne.CanvasObject {
	state.portSelect = widget.NewSelect(nil, func(selected string) {
		if name := state.portMap[selected]; name != "" {
			state.cfg.Serial.Port = name
		}
	})
	refreshPorts(state)

	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		refreshPorts(state)
	})

	baudOptions := make([]string, 0, len(config.BaudRates))
	for _, rate := range config.BaudRates {
		baudOptions = append(baudOptions, strconv.Itoa(rate))
	}
	state.baudSelect = widget.NewSelect(baudOptions, func(selected string) {
		if rate, err := strconv.Atoi(selected); err == nil {
			state.cfg.Serial.BaudRate = rate
		}
	})
	state.baudSelect.SetSelected(strconv.Itoa(state.cfg.Serial.BaudRate))

	state.connectBtn = widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	connection := widget.NewCard("Connection", "", container.NewHBox(
		container.NewBorder(nil, nil, nil, refreshBtn, state.portSelect),
		state.baudSelect,
		state.connectBtn,
	))

	state.modeBtn = widget.NewButton(ingest.Training.String(), func() {
		handleModeToggle(state)
	})
	mode := widget.NewCard("Mode", "", state.modeBtn)

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connection, mode),
		container.NewVBox(settingsBtn),
	)
}

// refreshPorts re-enumerates serial ports into the port selector, keeping
// the configured port selectable even if it is not present.
func refreshPorts(state *appState) {
	ports, err := trainer.Ports()
	if err != nil {
		log.Printf("Failed to enumerate serial ports: %v", err)
	}

	options := make([]string, 0, len(ports)+1)
	state.portMap = make(map[string]string, len(ports)+1)
	current := ""
	for _, p := range ports {
		name := p.DisplayName()
		options = append(options, name)
		state.portMap[name] = p.Name
		if p.Name == state.cfg.Serial.Port {
			current = name
		}
	}
	if current == "" && state.cfg.Serial.Port != "" {
		current = state.cfg.Serial.Port
		options = append(options, current)
		state.portMap[current] = current
	}

	state.portSelect.SetOptions(options)
	if current != "" {
		state.portSelect.SetSelected(current)
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeConnection(state)
		dialog.ShowInformation("Connection status", "Disconnected", state.window)
		return
	}

	port := state.cfg.Serial.Port
	baud := state.cfg.Serial.BaudRate

	var device trainer.Device
	if state.useMock {
		mockCfg := state.cfg.Mock
		device = trainer.NewMock(&mockCfg)
		port = "mock"
	} else {
		device = trainer.New(port, baud, trainer.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		log.Printf("Connection failed: %v", err)
		dialog.ShowError(err, state.window)
		return
	}

	state.device = device
	state.ingestor.SetPressureScale(state.cfg.Acquisition.PressureScale)
	state.ingestor.Begin(port, baud)

	state.poller = ingest.NewPoller(device, state.ingestor,
		state.cfg.Acquisition.PollInterval, state.cfg.Acquisition.LinesPerTick)
	state.poller.Start(context.Background())

	state.connectBtn.SetText("Disconnect")
	state.connectBtn.SetIcon(theme.LogoutIcon())
	state.portSelect.Disable()
	state.baudSelect.Disable()

	if !state.useMock {
		if err := state.cfg.Save(state.configPath); err != nil {
			log.Printf("Failed to save config: %v", err)
		}
	}

	dialog.ShowInformation("Connection status",
		fmt.Sprintf("Connected to %s at %d baud", port, baud), state.window)
}

// closeConnection stops polling and releases the device. Safe to call when
// not connected.
func closeConnection(state *appState) {
	if state.poller != nil {
		state.poller.Stop()
		state.poller = nil
	}
	if state.device == nil {
		return
	}

	if err := state.device.Close(); err != nil {
		log.Printf("Error closing device: %v", err)
	}
	state.device = nil
	state.ingestor.End()

	if state.connectBtn != nil {
		state.connectBtn.SetText("Connect")
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.portSelect.Enable()
		state.baudSelect.Enable()
	}
}
