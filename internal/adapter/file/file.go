// Package file implements the flat-file JSON store. Each repository owns one
// UTF-8 pretty-printed JSON array on disk, the same on-disk contract the
// board has always used, so the files stay human-readable and editable.
//
// Every mutation runs as a single load-transform-persist unit while holding
// both an in-process mutex and an OS file lock, which closes the
// read-modify-write race a lock-on-write-only scheme would leave open.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	// lockTimeout bounds how long a caller waits for the file lock before
	// giving up with a retryable error. A request never blocks on a lock
	// indefinitely.
	lockTimeout = 5 * time.Second
	// lockRetry is the poll interval while waiting for the file lock.
	lockRetry = 25 * time.Millisecond
)

// ErrLockTimeout indicates the file lock could not be acquired within the
// bounded wait. The operation did not happen and may be retried.
var ErrLockTimeout = errors.New("file lock timeout")

// jsonFile guards one JSON-array file. The mutex serializes goroutines in
// this process; the flock excludes other processes sharing the data
// directory.
type jsonFile struct {
	mu   sync.Mutex
	fl   *flock.Flock
	path string
}

func newJSONFile(path string) *jsonFile {
	return &jsonFile{
		fl:   flock.New(path + ".lock"),
		path: path,
	}
}

// withLock runs fn while holding both locks. Lock acquisition is bounded by
// lockTimeout.
func (f *jsonFile) withLock(ctx context.Context, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := f.fl.TryLockContext(lockCtx, lockRetry)
	if err != nil || !ok {
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("lock %s: %w", f.path, err)
		}
		return fmt.Errorf("lock %s: %w", f.path, ErrLockTimeout)
	}
	defer func() {
		if err := f.fl.Unlock(); err != nil {
			log.Printf("unlock %s: %v", f.path, err)
		}
	}()

	return fn()
}

// loadArray reads the whole array from f. A missing or empty file yields an
// empty array. Content that does not decode cleanly, including a valid JSON
// array of the wrong element shape, is logged and treated as empty; nothing
// partially decoded ever reaches the caller. The board degrades to empty
// rather than wedging every caller on one corrupt file.
func loadArray[T any](f *jsonFile) ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("%s contains invalid JSON, treating as empty: %v", f.path, err)
		return nil, nil
	}
	return items, nil
}

// persist replaces the whole file with v, pretty-printed and with unicode
// left unescaped. The write goes through a temp file and rename so readers
// never observe a half-written array.
func (f *jsonFile) persist(v any) error {
	buf, err := marshalPretty(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", f.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	// Best-effort flush; full durability is out of contract.
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func marshalPretty(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
