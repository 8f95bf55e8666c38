// Package log routes diagnostics to a rotated file so that nothing is printed over the terminal UI.
package log

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/jellytok/jellytok/constant"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// enabled gates every emission; when logging is off all helpers are no-ops.
var enabled bool

var writer io.WriteCloser

// Setup configures logrus from the logs.* keys.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	writer = &lumberjack.Logger{
		Filename:   filepath.Join(dir, constant.App+".log"),
		MaxSize:    viper.GetInt(key.LogsMaxSize),
		MaxBackups: viper.GetInt(key.LogsMaxBackups),
	}
	logrus.SetOutput(writer)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// Close flushes and closes the rotated file, if any.
func Close() error {
	if writer == nil {
		return nil
	}
	return writer.Close()
}

// WithField returns an entry carrying a single structured field. The entry discards output when logging is off.
func WithField(name string, value any) *logrus.Entry {
	if !enabled {
		return discard.WithField(name, value)
	}
	return logrus.WithField(name, value)
}

// WithFields is WithField for several fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	if !enabled {
		return discard.WithFields(fields)
	}
	return logrus.WithFields(fields)
}

var discard = &logrus.Logger{Out: io.Discard, Formatter: new(logrus.TextFormatter), Hooks: make(logrus.LevelHooks), Level: logrus.PanicLevel}

func Error(args ...interface{}) {
	if enabled {
		logrus.Error(args...)
	}
}
func Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}
func Warn(args ...interface{}) {
	if enabled {
		logrus.Warn(args...)
	}
}
func Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}
func Info(args ...interface{}) {
	if enabled {
		logrus.Info(args...)
	}
}
func Infof(format string, args ...interface{}) {
	if enabled {
		logrus.Infof(format, args...)
	}
}
func Debug(args ...interface{}) {
	if enabled {
		logrus.Debug(args...)
	}
}
func Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
