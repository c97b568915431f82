// Package log wraps glog with the call shape used throughout this codebase:
// Debugf/Infof/Warningf/Errorf/Fatalf/Fatal, plus a Setup() that switches
// between stderr and file-backed logging depending on flags.
package log

import (
	"flag"

	"github.com/golang/glog"
)

var logStdout = flag.Bool("log_stdout", false, "print log output to stderr instead of the glog log directory")

// Setup applies the -log_stdout flag. Call after flag.Parse(). When
// log_stdout is false (the default), glog's own -log_dir flag governs where
// output lands.
func Setup() {
	if *logStdout {
		_ = flag.Set("logtostderr", "true")
	}
}

func Debugf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
}

func Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func Info(args ...interface{}) {
	glog.Info(args...)
}

func Warningf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

func Error(args ...interface{}) {
	glog.Error(args...)
}

func Fatalf(format string, args ...interface{}) {
	glog.Fatalf(format, args...)
}

func Fatal(args ...interface{}) {
	glog.Fatal(args...)
}
