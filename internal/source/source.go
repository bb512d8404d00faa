// Package source implements the two input-source collaborators the
// program needs: a file-tail source that watches a path for appended
// bytes (and detects truncate-to-empty), and a standard-input source
// that reads lines until EOF. Both expose the same small poll/is_live
// contract so internal/tui's event loop can treat them uniformly.
//
// Grounded on wilbur182-forge's internal/adapter/claudecode (the
// scannerBufPool buffer-reuse pattern and the seek-from-offset
// incremental tail read in parseSessionMetadataIncremental) and its
// internal/adapter/codex/watcher.go (fsnotify usage, debounced
// create/write/remove handling). Session metadata caching, multi-source
// adapter abstraction, and tiered polling/watching fallback
// (internal/adapter/tieredwatcher) are teacher concerns this single-file
// viewer doesn't need and are not carried over.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// scannerBufPool recycles buffers for bufio.Scanner, avoiding
// reallocation on every poll of a large log file.
var scannerBufPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 1024*1024)
	},
}

func getScannerBuffer() []byte {
	return scannerBufPool.Get().([]byte)
}

func putScannerBuffer(buf []byte) {
	scannerBufPool.Put(buf) //nolint:staticcheck // buf is reused as-is
}

const maxLineSize = 10 * 1024 * 1024

// InputError reports a poll failure; the source remains live (not
// necessarily fatal) unless explicitly closed.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("source: %s: %v", e.Path, e.Err)
}
func (e *InputError) Unwrap() error { return e.Err }

// Kind discriminates the two detectable input sources.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindNone
)

// DetectInputSource resolves the program's input source: a given
// path always wins; absent a path, a piped standard input is used;
// otherwise there is no input source.
func DetectInputSource(optionalFilePath string, stdin *os.File) (Kind, string, error) {
	if optionalFilePath != "" {
		return KindFile, optionalFilePath, nil
	}
	info, err := stdin.Stat()
	if err != nil {
		return KindNone, "", fmt.Errorf("source: stat stdin: %w", err)
	}
	if (info.Mode() & os.ModeCharDevice) == 0 {
		return KindStdin, "", nil
	}
	return KindNone, "", fmt.Errorf("source: no input source: no path given and stdin is a terminal")
}

// Line is one newline-stripped line pushed by a producer, tagged with
// its 1-based line number within its source.
type Line struct {
	Text       string
	LineNumber int
}

// FileSource tails a path: an fsnotify watcher wakes a background
// goroutine on writes, which reads newly appended bytes from the last
// known offset and pushes newline-stripped lines onto a bounded
// channel. A shrink below the last-seen size is treated as
// truncate-to-empty, the only non-append edit this source handles, and
// resets both the read offset and the line counter.
type FileSource struct {
	path    string
	lines   chan Line
	resets  chan struct{}
	errs    chan error
	live    chan struct{} // closed when the source stops
	cancel  context.CancelFunc
	liveVal atomicBool
}

// NewFileSource opens path and starts tailing it. The initial content
// already on disk is delivered as a backlog before live appends.
func NewFileSource(path string) (*FileSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fs := &FileSource{
		path:   path,
		lines:  make(chan Line, 256),
		resets: make(chan struct{}, 1),
		errs:   make(chan error, 8),
		live:   make(chan struct{}),
		cancel: cancel,
	}
	fs.liveVal.set(true)

	go fs.run(ctx, watcher)
	return fs, nil
}

func (fs *FileSource) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	defer close(fs.live)

	var offset int64
	var lineNumber int

	readNew := func() {
		file, err := os.Open(fs.path)
		if err != nil {
			select {
			case fs.errs <- err:
			default:
			}
			return
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			select {
			case fs.errs <- err:
			default:
			}
			return
		}

		if info.Size() < offset {
			// Truncate-to-empty: restart from the beginning.
			offset = 0
			lineNumber = 0
			select {
			case fs.resets <- struct{}{}:
			default:
			}
		}

		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			select {
			case fs.errs <- err:
			default:
			}
			return
		}

		scanner := bufio.NewScanner(file)
		buf := getScannerBuffer()
		defer putScannerBuffer(buf)
		scanner.Buffer(buf, maxLineSize)

		for scanner.Scan() {
			lineNumber++
			offset += int64(len(scanner.Bytes())) + 1
			line := Line{Text: string(scanner.Bytes()), LineNumber: lineNumber}
			select {
			case fs.lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}

	readNew() // deliver backlog already on disk

	debounce := 50 * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, readNew)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			select {
			case fs.errs <- err:
			default:
			}
		}
	}
}

// Poll returns 0..n newline-stripped lines accumulated since the last
// call. Non-blocking: drains whatever is already buffered.
func (fs *FileSource) Poll() ([]Line, error) {
	var out []Line
	for {
		select {
		case line := <-fs.lines:
			out = append(out, line)
		case err := <-fs.errs:
			return out, &InputError{Path: fs.path, Err: err}
		default:
			return out, nil
		}
	}
}

// WasTruncated reports (and consumes) a pending truncate-to-empty
// notification raised by the tail goroutine.
func (fs *FileSource) WasTruncated() bool {
	select {
	case <-fs.resets:
		return true
	default:
		return false
	}
}

// IsLive reports whether the file source is still watching; a file
// source is always live until explicitly closed.
func (fs *FileSource) IsLive() bool { return fs.liveVal.get() }

// Close stops the tail goroutine and the underlying watcher.
func (fs *FileSource) Close() {
	fs.liveVal.set(false)
	fs.cancel()
	<-fs.live
}

// StdinSource reads standard input to EOF, line by line, on a
// background goroutine, pushing onto a bounded channel the UI thread
// drains non-blockingly.
type StdinSource struct {
	lines chan Line
	errs  chan error
	eof   atomicBool
}

// NewStdinSource starts reading r (typically os.Stdin) in the
// background until EOF.
func NewStdinSource(r io.Reader) *StdinSource {
	ss := &StdinSource{
		lines: make(chan Line, 256),
		errs:  make(chan error, 8),
	}
	go ss.run(r)
	return ss
}

func (ss *StdinSource) run(r io.Reader) {
	defer ss.eof.set(true)

	scanner := bufio.NewScanner(r)
	buf := getScannerBuffer()
	defer putScannerBuffer(buf)
	scanner.Buffer(buf, maxLineSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		ss.lines <- Line{Text: scanner.Text(), LineNumber: lineNumber}
	}
	if err := scanner.Err(); err != nil {
		select {
		case ss.errs <- err:
		default:
		}
	}
}

// Poll returns 0..n lines accumulated since the last call.
func (ss *StdinSource) Poll() ([]Line, error) {
	var out []Line
	for {
		select {
		case line := <-ss.lines:
			out = append(out, line)
		case err := <-ss.errs:
			return out, &InputError{Path: "<stdin>", Err: err}
		default:
			return out, nil
		}
	}
}

// IsLive reports true until EOF has been reached.
func (ss *StdinSource) IsLive() bool { return !ss.eof.get() }

// atomicBool is a tiny lock-based boolean; no concurrent mutation
// happens at a rate that warrants atomic.Bool's extra ceremony here.
type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (b *atomicBool) set(v bool) {
	b.mu.Lock()
	b.v = v
	b.mu.Unlock()
}

func (b *atomicBool) get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}
