package transport

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaud is used when a device transport is given no line speed.
const DefaultBaud = 9600

// openSerial opens a serial port. Tests replace it.
var openSerial = func(path string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	return serial.Open(path, mode)
}

// NewDeviceTransport returns a transport for a serial TNC or pseudo
// terminal at path, opened at baud (8N1). A baud of zero or less selects
// DefaultBaud.
func NewDeviceTransport(path string, baud int) *KISSTransport {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	return &KISSTransport{
		addr: path,
		dial: func(ctx context.Context) (io.ReadWriteCloser, error) {
			return openDevice(ctx, path, mode)
		},
	}
}

// openDevice opens the port, giving up when ctx is done.
func openDevice(ctx context.Context, path string, mode *serial.Mode) (io.ReadWriteCloser, error) {
	type result struct {
		port io.ReadWriteCloser
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		port, err := openSerial(path, mode)
		ch <- result{port, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		logrus.WithFields(logrus.Fields{
			"function": "openDevice",
			"path":     path,
			"baud":     mode.BaudRate,
		}).Debug("Opened serial device")
		return r.port, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.port != nil {
				r.port.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
