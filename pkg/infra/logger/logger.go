package logger

import (
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options sizes the asynchronous log pipeline. Zero values take the
// defaults below.
type Options struct {
	Dir        string
	QueueSize  int
	BufferSize int
	FlushEvery time.Duration
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "logs"
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 32 * 1024
	}
	if o.FlushEvery <= 0 {
		o.FlushEvery = 2 * time.Second
	}
	return o
}

func NewLogger(name string) *logrus.Logger {
	return NewLoggerWith(name, Options{})
}

// NewLoggerWith builds a JSON logrus logger that writes to
// <dir>/<name>.log through the async file writer and mirrors entries
// to stdout.
func NewLoggerWith(name string, opts Options) *logrus.Logger {
	opts = opts.withDefaults()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if name == "" {
		name = "mailsentry"
	}
	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	writer, err := newFileWriter(opts.Dir+"/"+name+".log", opts.BufferSize, opts.QueueSize, opts.FlushEvery)
	if err != nil {
		log.Fatalf("Failed to initialize log writer: %v", err)
	}
	logger.SetOutput(writer)

	logger.AddHook(newConsoleHook(os.Stdout, opts.QueueSize))

	return logger
}
