package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goneo/pkg/config"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createAcquisitionTab(state),
		createDisplayTab(state),
		createMockTab(state),
	)

	d := dialog.NewCustom("Settings", "Close", tabs, state.window)
	d.Resize(fyne.NewSize(560, 420))
	d.Show()
}

// saveConfig validates and persists the configuration. On a validation
// error the previous configuration is restored.
func saveConfig(state *appState, previous config.Config) bool {
	if err := state.cfg.Validate(); err != nil {
		*state.cfg = previous
		dialog.ShowError(err, state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	log.Printf("Configuration saved to %s", state.configPath)
	return true
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	portEntry := widget.NewEntry()
	portEntry.SetText(state.cfg.Serial.Port)

	baudOptions := make([]string, 0, len(config.BaudRates))
	for _, rate := range config.BaudRates {
		baudOptions = append(baudOptions, strconv.Itoa(rate))
	}
	baudSelect := widget.NewSelect(baudOptions, nil)
	baudSelect.SetSelected(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portEntry},
			{Text: "Baud Rate", Widget: baudSelect},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if portEntry.Text != "" {
				state.cfg.Serial.Port = portEntry.Text
			}
			if rate, err := strconv.Atoi(baudSelect.Selected); err == nil {
				state.cfg.Serial.BaudRate = rate
			}
			if !saveConfig(state, previous) {
				return
			}

			// Keep the toolbar in sync with the new values
			refreshPorts(state)
			state.baudSelect.SetSelected(strconv.Itoa(state.cfg.Serial.BaudRate))

			changed := previous.Serial != state.cfg.Serial
			if changed && state.device != nil && state.device.IsConnected() && !state.useMock {
				closeConnection(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createAcquisitionTab creates the Acquisition configuration tab.
func createAcquisitionTab(state *appState) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Acquisition.PollInterval.String())

	linesEntry := widget.NewEntry()
	linesEntry.SetText(strconv.Itoa(state.cfg.Acquisition.LinesPerTick))

	scaleEntry := widget.NewEntry()
	scaleEntry.SetText(strconv.FormatFloat(state.cfg.Acquisition.PressureScale, 'g', -1, 64))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Poll Interval", Widget: intervalEntry},
			{Text: "Lines per Tick", Widget: linesEntry},
			{Text: "Pressure Scale", Widget: scaleEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if d, err := time.ParseDuration(intervalEntry.Text); err == nil {
				state.cfg.Acquisition.PollInterval = d
			}
			if n, err := strconv.Atoi(linesEntry.Text); err == nil {
				state.cfg.Acquisition.LinesPerTick = n
			}
			if s, err := strconv.ParseFloat(scaleEntry.Text, 64); err == nil {
				state.cfg.Acquisition.PressureScale = s
			}
			if !saveConfig(state, previous) {
				return
			}

			state.ingestor.SetPressureScale(state.cfg.Acquisition.PressureScale)
			// Poll settings take effect on the next connection
		},
	}

	return container.NewTabItem("Acquisition", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Max Points per Chart", Widget: maxPointsEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if n, err := strconv.Atoi(maxPointsEntry.Text); err == nil {
				state.cfg.Display.MaxPoints = n
			}
			if !saveConfig(state, previous) {
				return
			}
			for ch, c := range state.charts {
				c.SetMaxPoints(state.cfg.Display.MaxPoints)
				c.UpdateData(state.ingestor.Series(ch).Points())
			}
		},
	}

	return container.NewTabItem("Display", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	rateEntry := widget.NewEntry()
	rateEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.CompressionRate))

	peakEntry := widget.NewEntry()
	peakEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.PeakPressure))

	heartEntry := widget.NewEntry()
	heartEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.HeartRate))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseLevel))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	statusEntry := widget.NewEntry()
	statusEntry.SetText(strconv.Itoa(state.cfg.Mock.StatusEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Compressions (/min)", Widget: rateEntry},
			{Text: "Peak Pressure (raw)", Widget: peakEntry},
			{Text: "Heart Rate (bpm)", Widget: heartEntry},
			{Text: "Noise Level (raw)", Widget: noiseEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
			{Text: "Status Every (lines)", Widget: statusEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if v, err := strconv.ParseFloat(rateEntry.Text, 64); err == nil {
				state.cfg.Mock.CompressionRate = v
			}
			if v, err := strconv.ParseFloat(peakEntry.Text, 64); err == nil {
				state.cfg.Mock.PeakPressure = v
			}
			if v, err := strconv.ParseFloat(heartEntry.Text, 64); err == nil {
				state.cfg.Mock.HeartRate = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = v
			}
			if d, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = d
			}
			if n, err := strconv.Atoi(statusEntry.Text); err == nil {
				state.cfg.Mock.StatusEvery = n
			}
			saveConfig(state, previous)
		},
	}

	return container.NewTabItem("Mock", form)
}
