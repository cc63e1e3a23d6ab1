package trainer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned by ReadLine when no complete line is queued.
	ErrNoData = errors.New("no data available")
	// ErrNotConnected is returned when reading from a closed device.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect on an open device.
	ErrAlreadyConnected = errors.New("already connected")
)

// ConnectionError reports a failure to open the serial port.
type ConnectionError struct {
	Port     string
	BaudRate int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to open serial port %s at %d baud: %v", e.Port, e.BaudRate, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError reports that the line stream from the device ended.
type ReadError struct {
	Port string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading from %s: %v", e.Port, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
