package log

import (
	"fmt"
	glog "log"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	fcolor "github.com/fatih/color"
	"github.com/flatdb-project/flatdb/cmd/flatdb/util"
	"github.com/flatdb-project/flatdb/cmd/internal/color"
)

var DisableColor bool

type Log struct {
	log      *glog.Logger
	logDebug bool
	logTrace bool
}

var std *Log
var csv *Log

func Init(out *os.File, csvout *os.File, logDebug bool, logTrace bool) {
	if out != nil {
		std = &Log{
			log:      glog.New(out, "", 0),
			logDebug: logDebug,
			logTrace: logTrace,
		}
	}
	if csvout != nil {
		csv = &Log{
			log:      glog.New(csvout, "", 0),
			logDebug: logDebug,
			logTrace: logTrace,
		}
	}
}

func Fatal(format string, v ...interface{}) {
	if DisableColor {
		printf(nil, "FATAL", format, v...)
	} else {
		printf(color.Fatal, "FATAL", format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if DisableColor {
		printf(nil, "ERROR", format, v...)
	} else {
		printf(color.Error, "ERROR", format, v...)
	}
}

func Warning(format string, v ...interface{}) {
	if DisableColor {
		printf(nil, "WARNING", format, v...)
	} else {
		printf(color.Warning, "WARNING", format, v...)
	}
}

func Info(format string, v ...interface{}) {
	printf(nil, "INFO", format, v...)
}

func Debug(format string, v ...interface{}) {
	if std == nil || (!std.logDebug && !std.logTrace) {
		return
	}
	printf(nil, "DEBUG", format, v...)
}

func Trace(format string, v ...interface{}) {
	if std == nil || !std.logTrace {
		return
	}
	printf(nil, "TRACE", format, v...)
}

// Dump writes a deep dump of a value to the trace log.
func Dump(label string, v interface{}) {
	if std == nil || !std.logTrace {
		return
	}
	printf(nil, "TRACE", "%s = %s", label, spew.Sdump(v))
}

func printf(c *fcolor.Color, level string, format string, v ...interface{}) {
	var msg = fmt.Sprintf(format, v...)
	var n = time.Now().UTC()
	var now = n.Format("2006-01-02 15:04:05 MST")
	var nowRFC = n.Format(time.RFC3339)
	// Main log
	if std != nil {
		if DisableColor || c == nil {
			std.log.Printf("%s  %s  %s", now, level+":", msg)
		} else {
			var cf = c.SprintFunc()
			std.log.Printf("%s  %s  %s", now, cf(level+":"), msg)
		}
	}
	// CSV log
	if csv != nil {
		csv.log.Printf("%q,%q,%q", nowRFC, level, msg)
	}
}

func OpenLogFile(logfile string) (*os.File, error) {
	var f *os.File
	var err error
	if f, err = os.OpenFile(logfile, os.O_RDWR|os.O_CREATE|os.O_APPEND, util.ModePermRW); err != nil {
		return nil, err
	}
	return f, nil
}
