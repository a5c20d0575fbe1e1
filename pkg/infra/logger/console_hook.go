package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// consoleHook mirrors formatted entries to a secondary writer (stdout
// in production) without blocking the logging call. Full queue means
// the line only reaches the file output.
type consoleHook struct {
	out   io.Writer
	lines chan []byte
	done  chan struct{}
	wg    sync.WaitGroup
}

func newConsoleHook(out io.Writer, queueSize int) *consoleHook {
	h := &consoleHook{
		out:   out,
		lines: make(chan []byte, queueSize),
		done:  make(chan struct{}),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	select {
	case h.lines <- line:
	default:
	}
	return nil
}

func (h *consoleHook) run() {
	defer h.wg.Done()
	for {
		select {
		case line := <-h.lines:
			_, _ = h.out.Write(line)

		case <-h.done:
			for {
				select {
				case line := <-h.lines:
					_, _ = h.out.Write(line)
				default:
					return
				}
			}
		}
	}
}

func (h *consoleHook) Close() {
	close(h.done)
	h.wg.Wait()
}

func (h *consoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
