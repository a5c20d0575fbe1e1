package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileWriter appends log lines to a file off the caller's goroutine.
// Write never blocks: a full queue drops the line. The buffered writer
// is owned by the run goroutine, so no lock guards it; Close drains
// the queue, flushes and closes the file.
type fileWriter struct {
	out        *bufio.Writer
	file       *os.File
	entries    chan []byte
	done       chan struct{}
	wg         sync.WaitGroup
	flushEvery time.Duration
}

func newFileWriter(path string, bufferSize, queueSize int, flushEvery time.Duration) (*fileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	w := &fileWriter{
		out:        bufio.NewWriterSize(file, bufferSize),
		file:       file,
		entries:    make(chan []byte, queueSize),
		done:       make(chan struct{}),
		flushEvery: flushEvery,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

func (w *fileWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case w.entries <- line:
		return len(p), nil
	default:
		return 0, nil
	}
}

func (w *fileWriter) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case line := <-w.entries:
			_, _ = w.out.Write(line)

		case <-ticker.C:
			_ = w.out.Flush()

		case <-w.done:
			for {
				select {
				case line := <-w.entries:
					_, _ = w.out.Write(line)
				default:
					_ = w.out.Flush()
					_ = w.file.Close()
					return
				}
			}
		}
	}
}

func (w *fileWriter) Close() {
	close(w.done)
	w.wg.Wait()
}
