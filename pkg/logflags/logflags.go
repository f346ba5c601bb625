package logflags

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var launcher = false
var pump = false
var config = false

var logOut io.WriteCloser

// Logger represents a generic interface for logging inside of nimp-run.
type Logger interface {
	// WithField returns a new Logger enriched with the given field.
	WithField(key string, value interface{}) Logger
	// WithFields returns a new Logger enriched with the given fields.
	WithFields(fields Fields) Logger
	// WithError returns a new Logger enriched with the given error.
	WithError(err error) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

// Fields type wraps many fields for Logger
type Fields map[string]interface{}

// LoggerFactory is used to create new Logger instances.
// SetLoggerFactory can be used to configure it.
//
// The given parameters fields and out can both be nil.
type LoggerFactory func(level logrus.Level, fields Fields, out io.Writer) Logger

var loggerFactory LoggerFactory

// SetLoggerFactory will ensure that every Logger created by this package
// is created by the given LoggerFactory. The default is a logrus based
// Logger using textFormatterInstance.
func SetLoggerFactory(lf LoggerFactory) {
	loggerFactory = lf
}

type logrusLogger struct {
	*logrus.Entry
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{l.Entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{l.Entry.WithError(err)}
}

var textFormatterInstance = &logrus.TextFormatter{
	FullTimestamp:   true,
	TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	DisableColors:   true,
}

func makeLogger(level logrus.Level, fields Fields) Logger {
	if lf := loggerFactory; lf != nil {
		return lf(level, fields, logOut)
	}
	logger := logrus.New()
	logger.Level = level
	logger.Formatter = textFormatterInstance
	if logOut != nil {
		logger.Out = logOut
	} else {
		logger.Out = os.Stderr
	}
	return &logrusLogger{logger.WithFields(logrus.Fields(fields))}
}

func makeFlaggableLogger(flag bool, fields Fields) Logger {
	if !flag {
		return makeLogger(logrus.ErrorLevel, fields)
	}
	return makeLogger(logrus.DebugLevel, fields)
}

// Launcher returns true if process creation should be logged.
func Launcher() bool {
	return launcher
}

// LauncherLogger returns a logger for process creation and teardown.
func LauncherLogger() Logger {
	return makeFlaggableLogger(launcher, Fields{"layer": "launcher"})
}

// Pump returns true if every debug event should be logged.
func Pump() bool {
	return pump
}

// PumpLogger returns a logger for the debug event pump.
func PumpLogger() Logger {
	return makeFlaggableLogger(pump, Fields{"layer": "pump"})
}

// Config returns true if configuration loading should be logged.
func Config() bool {
	return config
}

// ConfigLogger returns a logger for configuration loading.
func ConfigLogger() Logger {
	return makeFlaggableLogger(config, Fields{"layer": "config"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging flags based on the contents of logstr.
// If logDest is not empty logs will be redirected to the file descriptor or
// file path specified by logDest.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			if n < 0 {
				return fmt.Errorf("invalid log file descriptor %d", n)
			}
			fh := os.NewFile(uintptr(n), "nimp-run-logs")
			if fh == nil {
				return fmt.Errorf("invalid log file descriptor %d", n)
			}
			setLogOut(fh)
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			setLogOut(fh)
		}
	} else {
		setLogOut(os.Stderr)
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(io.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	log.SetOutput(logOut)
	if logstr == "" {
		logstr = "launcher"
	}
	v := strings.Split(logstr, ",")
	for _, logcmd := range v {
		switch strings.TrimSpace(logcmd) {
		case "launcher":
			launcher = true
		case "pump":
			pump = true
		case "config":
			config = true
		default:
			fmt.Fprintf(os.Stderr, "Warning: unknown log output value %q, run 'nimp-run --help' for a list.\n", logcmd)
		}
	}
	return nil
}

// setLogOut installs fh as the log destination. Terminals, including the
// pipes cygwin uses as terminals, get colored output.
func setLogOut(fh *os.File) {
	fd := fh.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		textFormatterInstance.DisableColors = false
		textFormatterInstance.ForceColors = true
		logOut = &colorableFile{Writer: colorable.NewColorable(fh), f: fh}
		return
	}
	textFormatterInstance.DisableColors = true
	textFormatterInstance.ForceColors = false
	logOut = fh
}

type colorableFile struct {
	io.Writer
	f *os.File
}

func (c *colorableFile) Close() error {
	return c.f.Close()
}

// Close closes the logger output, unless it is standard error.
func Close() {
	if logOut == nil {
		return
	}
	if c, ok := logOut.(*colorableFile); ok && c.f == os.Stderr {
		return
	}
	if logOut != io.WriteCloser(os.Stderr) {
		logOut.Close()
	}
}
