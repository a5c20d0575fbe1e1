package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_DrainsQueueOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	w, err := newFileWriter(path, 4096, 16, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = w.Write([]byte("first line\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second line\n"))
	require.NoError(t, err)

	w.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first line")
	assert.Contains(t, string(data), "second line")
}

func TestFileWriter_FullQueueDropsWithoutBlocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	w, err := newFileWriter(path, 4096, 1, time.Hour)
	require.NoError(t, err)
	defer w.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_, _ = w.Write([]byte("line\n"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write blocked on a full queue")
	}
}

func TestConsoleHook_MirrorsFormattedEntries(t *testing.T) {
	var buf bytes.Buffer
	hook := newConsoleHook(&buf, 16)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(hook)

	logger.WithField("tld", "tk").Info("risk table refreshed")

	hook.Close()

	assert.Contains(t, buf.String(), "risk table refreshed")
	assert.Contains(t, buf.String(), `"tld":"tk"`)
}
