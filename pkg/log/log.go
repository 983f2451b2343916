/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	LogPrefix  = "go-cpap"
	HelpLevels = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

var levelMapping = map[string]LogLevel{
	"error":   ErrorLevel,
	"warning": WarningLevel,
	"info":    InfoLevel,
	"debug":   DebugLevel,
}

var logrusLevels = map[LogLevel]logrus.Level{
	ErrorLevel:   logrus.ErrorLevel,
	WarningLevel: logrus.WarnLevel,
	InfoLevel:    logrus.InfoLevel,
	DebugLevel:   logrus.DebugLevel,
}

type Logger struct {
	level LogLevel
	*logrus.Logger
}

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	return &Logger{
		level:  InfoLevel,
		Logger: l,
	}
}

func ParseLevel(strLevel string) (LogLevel, error) {
	level, ok := levelMapping[strLevel]
	if !ok {
		return InfoLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.level = level
	logger.Logger.SetLevel(logrusLevels[level])
	return nil
}

func Init(out io.Writer, strLevel string) {
	logger.SetOutput(out)
	if err := SetLevel(strLevel); err != nil {
		panic(err)
	}
}

// WithSource returns an entry tagged with the source being processed.
// Concurrent extractions log through their own entries instead of sharing a
// global "current file".
func WithSource(source string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"app": LogPrefix, "source": source})
}

func Error(format string, v ...interface{}) {
	logger.WithField("app", LogPrefix).Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	logger.WithField("app", LogPrefix).Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	logger.WithField("app", LogPrefix).Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	logger.WithField("app", LogPrefix).Debugf(format, v...)
}

// Writer returns a pipe that logs every line written to it at info level.
// Used as the access log sink of the API server.
func Writer() *io.PipeWriter {
	return logger.WithField("app", LogPrefix).WriterLevel(logrus.InfoLevel)
}
