package main

import (
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goneo/pkg/ingest"
)

// handleModeToggle handles the mode button click. The UI follows through
// the ModeChanged event.
func handleModeToggle(state *appState) {
	state.ingestor.ToggleMode()
}

// applyMode updates the mode button and chart visibility. Must run on the
// Fyne main thread.
func applyMode(state *appState, mode ingest.Mode) {
	updateModeButton(state.modeBtn, mode)

	for _, c := range state.charts {
		c.Clear()
		if mode == ingest.Training {
			c.Show()
		} else {
			c.Hide()
		}
	}
}

// updateModeButton shows Training in green and Evaluation in red.
func updateModeButton(btn *widget.Button, mode ingest.Mode) {
	if btn == nil {
		return
	}
	btn.SetText(mode.String())
	if mode == ingest.Training {
		btn.Importance = widget.SuccessImportance
	} else {
		btn.Importance = widget.DangerImportance
	}
	btn.Refresh()
}
