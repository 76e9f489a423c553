package logger

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type LevelLogger struct {
	writer            LogWriter
	prefix            string
	logLevelWaterMark int
}

func CreateLevelLogger(writer LogWriter, prefix string, waterMark int) Logger {
	return &LevelLogger{
		writer:            writer,
		prefix:            prefix,
		logLevelWaterMark: waterMark,
	}
}

func (l *LevelLogger) output(level int, data ...string) {
	if level < l.logLevelWaterMark {
		return
	}
	var message string
	if len(data) == 1 {
		message = data[0]
	} else {
		message = strings.Join(data, "")
	}
	logEntity := newLogEntity(level, l.prefix, time.Now(), message, l.getFileName())
	l.writer.Write(logEntity)
	logEntity.recycle()
}

func (l *LevelLogger) getFileName() string {
	// skip output, the leveled method, and the caller shim
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "???:0"
	}
	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	return short + ":" + strconv.Itoa(line)
}

func (l *LevelLogger) Trace(records ...string) {
	l.output(TRACE, records...)
}

func (l *LevelLogger) Debug(records ...string) {
	l.output(DEBUG, records...)
}

func (l *LevelLogger) Info(records ...string) {
	l.output(INFO, records...)
}

func (l *LevelLogger) Warn(records ...string) {
	l.output(WARN, records...)
}

func (l *LevelLogger) Error(records ...string) {
	l.output(ERROR, records...)
}

func (l *LevelLogger) Fatal(records ...string) {
	l.output(FATAL, records...)
}

func (l *LevelLogger) Tracef(format string, records ...any) {
	l.output(TRACE, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Debugf(format string, records ...any) {
	l.output(DEBUG, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Infof(format string, records ...any) {
	l.output(INFO, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Warnf(format string, records ...any) {
	l.output(WARN, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Errorf(format string, records ...any) {
	l.output(ERROR, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Fatalf(format string, records ...any) {
	l.output(FATAL, fmt.Sprintf(format, records...))
}

func (l *LevelLogger) Writer(writer LogWriter) {
	l.writer = writer
}

func (l *LevelLogger) WithPrefix(prefix string) Logger {
	return CreateLevelLogger(l.writer, prefix, l.logLevelWaterMark)
}

func (l *LevelLogger) WithWriter(writer LogWriter) Logger {
	return CreateLevelLogger(writer, l.prefix, l.logLevelWaterMark)
}

func (l *LevelLogger) WithWaterMark(waterMark int) Logger {
	return CreateLevelLogger(l.writer, l.prefix, waterMark)
}
