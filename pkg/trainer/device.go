package trainer

import (
	"bufio"
	"bytes"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate of the trainer firmware out of the box.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default number of lines queued between polls.
	DefaultBufferSize = 100
)

// Serial represents a connection to the trainer over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      io.ReadCloser
	lines     chan []byte
	errs      chan error
	stop      chan struct{}
	done      chan struct{}
	mu        sync.RWMutex
	connected bool
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
	}
}

// Port returns the port name the device was created for.
func (d *Serial) Port() string { return d.port }

// BaudRate returns the configured baud rate.
func (d *Serial) BaudRate() int { return d.baudRate }

// Connect opens the serial port and starts reading lines.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return &ConnectionError{Port: d.port, BaudRate: d.baudRate, Err: err}
	}

	d.attach(port)
	return nil
}

// attach starts the line reader on an already opened stream. Caller holds mu.
func (d *Serial) attach(conn io.ReadCloser) {
	d.conn = conn
	d.lines = make(chan []byte, d.bufSize)
	d.errs = make(chan error, 1)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.connected = true

	go d.readLines(conn, d.lines, d.errs, d.stop, d.done)
}

// Close closes the port and waits for the reader to exit.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	close(d.stop)

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			log.Printf("Error closing serial port %s: %v", d.port, err)
		}
		d.conn = nil
	}

	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done
	return err
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Available reports whether ReadLine has something to return: a queued
// line or the error that ended the stream.
func (d *Serial) Available() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return false
	}
	return len(d.lines) > 0 || len(d.errs) > 0
}

// ReadLine returns the next queued line without its terminator. It returns
// ErrNoData if nothing is queued and a *ReadError once when the stream ends.
func (d *Serial) ReadLine() ([]byte, error) {
	d.mu.RLock()
	lines, errs, connected := d.lines, d.errs, d.connected
	d.mu.RUnlock()

	if !connected {
		return nil, ErrNotConnected
	}

	select {
	case line := <-lines:
		return line, nil
	default:
	}

	select {
	case err := <-errs:
		return nil, &ReadError{Port: d.port, Err: err}
	default:
		return nil, ErrNoData
	}
}

// readLines scans newline-delimited lines from r into lines until the
// stream ends or stop is closed.
func (d *Serial) readLines(r io.Reader, lines chan<- []byte, errs chan<- error, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		// Scanner reuses its buffer
		buf := make([]byte, len(line))
		copy(buf, line)

		select {
		case lines <- buf:
		case <-stop:
			return
		}
	}

	select {
	case <-stop:
		// Closed on purpose, the read error is expected
		return
	default:
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	log.Printf("Serial stream on %s ended: %v", d.port, err)

	select {
	case errs <- err:
	default:
	}
}
