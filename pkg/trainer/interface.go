package trainer

// Device defines the interface for trainer connections (real or mocked).
//
// Available and ReadLine never block: the poll loop checks Available and
// reads at most a bounded number of lines per tick.
type Device interface {
	Connect() error
	Close() error
	Available() bool
	ReadLine() ([]byte, error)
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
