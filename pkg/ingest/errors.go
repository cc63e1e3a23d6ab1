package ingest

import (
	"fmt"
	"strconv"
)

// MalformedSampleError reports a tagged line whose payload is not a number.
type MalformedSampleError struct {
	Channel Channel
	Payload string
	Err     error
}

func (e *MalformedSampleError) Error() string {
	return fmt.Sprintf("malformed %s sample %q: %v", e.Channel, e.Payload, e.Err)
}

func (e *MalformedSampleError) Unwrap() error { return e.Err }

// DecodeError reports a line that is not valid UTF-8.
type DecodeError struct {
	Line []byte
}

func (e *DecodeError) Error() string {
	return "line is not valid UTF-8: " + strconv.Quote(string(e.Line))
}
