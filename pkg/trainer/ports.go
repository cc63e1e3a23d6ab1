package trainer

import (
	"fmt"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports. USB adapters carry their
// product name and VID:PID in the description.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil && len(details) > 0 {
		return describePorts(details), nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// describePorts converts enumerator details into Ports sorted by name.
func describePorts(details []*enumerator.PortDetails) []Port {
	result := make([]Port, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		desc := d.Name
		if d.IsUSB {
			product := d.Product
			if product == "" {
				product = "USB"
			}
			desc = fmt.Sprintf("%s [%s:%s]", product, d.VID, d.PID)
		}
		result = append(result, Port{Name: d.Name, Description: desc})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// DisplayName returns the label shown in the port selector.
func (p Port) DisplayName() string {
	if p.Description == "" || p.Description == p.Name {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Description)
}
