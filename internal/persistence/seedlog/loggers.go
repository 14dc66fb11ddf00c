// Package seedlog persists hit and progress records as zstd-compressed
// JSONL, rotated hourly.
package seedlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
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
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// HitEntry is one accepted result seed.
type HitEntry struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
	Time  string `json:"time"`
}

// ProgressEntry is one progress checkpoint.
type ProgressEntry struct {
	RunID  string `json:"run_id"`
	Cursor int64  `json:"cursor"`
	Done   uint64 `json:"done"`
	Total  uint64 `json:"total"`
	Time   string `json:"time"`
}

// HitLogger records every accepted seed (compressed).
type HitLogger struct{ w *JSONLZstdWriter }

func NewHitLogger(dataDir string) *HitLogger {
	return &HitLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "hits"), "hits")}
}

func (l *HitLogger) WriteHit(v HitEntry) error { return l.w.Write(v) }
func (l *HitLogger) Close() error              { return l.w.Close() }

// ProgressLogger records progress checkpoints of long searches.
type ProgressLogger struct{ w *JSONLZstdWriter }

func NewProgressLogger(dataDir string) *ProgressLogger {
	return &ProgressLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "progress"), "progress")}
}

func (l *ProgressLogger) WriteProgress(v ProgressEntry) error { return l.w.Write(v) }
func (l *ProgressLogger) Close() error                        { return l.w.Close() }
