//go:build linux

package transport

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	serial "github.com/daedaluz/goserial"
)

// SerialPort is a Transport backed by a real POSIX serial device via
// github.com/daedaluz/goserial, the library the Daedaluz-goserial teacher
// repo exists to provide. 8N1 is the only frame format this module's
// instruments use (spec.md §4.1), so it is fixed rather than configurable.
type SerialPort struct {
	mu          sync.Mutex
	port        *serial.Port
	closed      bool
	readTimeout time.Duration
}

var baudFlags = map[int]serial.CFlag{
	Baud9600:   serial.B9600,
	Baud115200: serial.B115200,
}

// OpenSerialPort opens and configures the named port per cfg (already
// Valid()-ed by the caller).
func OpenSerialPort(cfg Config) (*SerialPort, error) {
	flag, ok := baudFlags[cfg.Baud]
	if !ok {
		return nil, fmt.Errorf("transport: unsupported baud %d", cfg.Baud)
	}

	opts := serial.NewOptions().SetReadTimeout(cfg.ReadTimeout)
	port, err := serial.Open(cfg.Port, opts)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Port, err)
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: get attrs: %w", err)
	}
	attrs.MakeRaw()
	attrs.SetSpeed(flag)
	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: set attrs (8N1 @ %d): %w", cfg.Baud, err)
	}

	return &SerialPort{port: port, readTimeout: cfg.ReadTimeout}, nil
}

// Write sends p in one blocking fd write. It does not bound the write by
// timeout (neither the argument nor cfg.WriteTimeout) and does not watch
// ctx; only Close unblocks a stuck write.
func (s *SerialPort) Write(ctx context.Context, p []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_ = ctx // the underlying fd write is not itself cancellable; Close unblocks it.
	_, err := s.port.Write(p)
	return err
}

func (s *SerialPort) ReadUntil(ctx context.Context, term []byte, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if timeout == 0 {
		timeout = s.readTimeout
	}
	deadline := time.Now().Add(timeout)
	var buf bytes.Buffer
	chunk := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			if buf.Len() == 0 {
				return nil, ErrNoResponse
			}
			return buf.Bytes(), nil
		}
		step := quietInterval
		if term == nil && remaining < step {
			step = remaining
		}

		n, err := s.port.ReadTimeout(chunk, step)
		if n == 0 && err != nil && buf.Len() == 0 {
			continue // timed out this slice, keep polling until deadline
		}
		if n > 0 {
			buf.Write(chunk[:n])
			if term != nil && bytes.HasSuffix(buf.Bytes(), term) {
				return buf.Bytes(), nil
			}
		} else if term == nil && buf.Len() > 0 {
			// no new bytes this slice and we already have data: quiet.
			return buf.Bytes(), nil
		}
	}
}

func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
