// Package file appends operation events to local segment files. The active
// segment is plain text; once it reaches the size limit it is sealed and
// compressed with zstd.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"opevent/pkg/platform/sentinel"
)

const (
	// ActiveName is the file name of the segment being written.
	ActiveName = "events.log"
	// SealedExt is the extension of compressed segments.
	SealedExt = ".log.zst"

	defaultMaxBytes = 64 << 20
)

// Sink writes newline-terminated lines to the active segment.
type Sink struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time

	f       *os.File
	size    int64
	seq     int
	encoder *zstd.Encoder
	closed  bool
}

// Option configures the Sink.
type Option func(*Sink)

// WithMaxBytes sets the size at which the active segment is sealed.
func WithMaxBytes(n int64) Option {
	return func(s *Sink) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets a logger for rotation reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// Open creates dir if needed and opens the active segment for appending.
func Open(dir string, opts ...Option) (*Sink, error) {
	s := &Sink{
		dir:      dir,
		maxBytes: defaultMaxBytes,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create event dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	s.encoder = enc
	if err := s.openActive(); err != nil {
		_ = enc.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) openActive() error {
	f, err := os.OpenFile(filepath.Join(s.dir, ActiveName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open active segment: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat active segment: %w", err)
	}
	s.f = f
	s.size = info.Size()
	return nil
}

// Append implements opevent.Sink.
func (s *Sink) Append(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("append to event file: %w", sentinel.ErrClosed)
	}

	n := int64(len(line) + 1)
	if s.size > 0 && s.size+n > s.maxBytes {
		if err := s.rotate(); err != nil {
			return err
		}
	}

	buf := make([]byte, n)
	copy(buf, line)
	buf[len(line)] = '\n'
	written, err := s.f.Write(buf)
	s.size += int64(written)
	if err != nil {
		return fmt.Errorf("write event file: %w", err)
	}
	return nil
}

// rotate seals the active segment into a compressed file and starts a new one.
// On failure the active segment is reopened so a later append can retry.
// Callers hold s.mu.
func (s *Sink) rotate() (err error) {
	if cerr := s.f.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		err = fmt.Errorf("close active segment: %w", cerr)
	}
	defer func() {
		if err == nil {
			return
		}
		if oerr := s.openActive(); oerr != nil {
			err = errors.Join(err, oerr)
		}
	}()
	if err != nil {
		return err
	}

	active := filepath.Join(s.dir, ActiveName)
	data, err := os.ReadFile(active)
	if err != nil {
		return fmt.Errorf("read active segment: %w", err)
	}

	seq := s.seq + 1
	sealed := filepath.Join(s.dir, fmt.Sprintf("events-%s-%04d%s", s.now().UTC().Format("20060102T150405"), seq, SealedExt))
	if err := os.WriteFile(sealed, s.encoder.EncodeAll(data, nil), 0o644); err != nil {
		return fmt.Errorf("write sealed segment: %w", err)
	}
	if err := os.Remove(active); err != nil {
		// keep the lines in one place only
		_ = os.Remove(sealed)
		return fmt.Errorf("remove active segment: %w", err)
	}
	s.seq = seq

	s.logger.Info("event segment sealed",
		"segment", filepath.Base(sealed),
		"bytes", len(data),
	)
	return s.openActive()
}

// Sealed returns the paths of the compressed segments, oldest first.
func (s *Sink) Sealed() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "events-*"+SealedExt))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Close syncs and closes the active segment. Appends after Close fail.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.encoder.Close()
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("sync active segment: %w", err)
	}
	return s.f.Close()
}

// ReadSealed decompresses a sealed segment.
func ReadSealed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
