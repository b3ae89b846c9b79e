// Package journal keeps an append-only, zstd compressed record of every
// time slice a session applied, so a run can be replayed later.
package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/seurimas/topper-public-sub002/engine"
	"github.com/seurimas/topper-public-sub002/internal/feed"
)

const (
	prefix    = "slices"
	hourStamp = "20060102-15"
)

// Writer appends slices as JSON lines, one file per UTC hour.
type Writer struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewWriter journals into dir, creating it on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Append writes one slice and flushes it through the compressor.
func (w *Writer) Append(s *engine.TimeSlice) error {
	data, err := feed.Encode(s)
	if err != nil {
		return fmt.Errorf("encode slice: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format(hourStamp)
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Close finishes the current file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Path returns the file slices for the given hour go to.
func (w *Writer) Path(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", prefix, t.UTC().Format(hourStamp)))
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", prefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

// Reader replays a journal stream.
type Reader struct {
	dec *zstd.Decoder
	sc  *feed.Scanner
}

// NewReader reads slices from a zstd compressed stream.
func NewReader(r io.Reader) (*Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{dec: dec, sc: feed.NewScanner(dec)}, nil
}

// Next returns the next slice, or io.EOF after the last one.
func (r *Reader) Next() (engine.TimeSlice, error) {
	if r.sc.Scan() {
		return r.sc.Slice(), nil
	}
	if err := r.sc.Err(); err != nil {
		return engine.TimeSlice{}, err
	}
	return engine.TimeSlice{}, io.EOF
}

// Close releases the decoder.
func (r *Reader) Close() { r.dec.Close() }

// ReadAll loads every slice in a journal file. Files not ending in .zst are
// read as plain JSON lines.
func ReadAll(path string) ([]engine.TimeSlice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer dec.Close()
		src = dec
	}

	var out []engine.TimeSlice
	sc := feed.NewScanner(src)
	for sc.Scan() {
		out = append(out, sc.Slice())
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Files lists the journal files in dir, oldest first.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
