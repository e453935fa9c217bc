// Package logging sets up the standard logger and lgr for the bridge server.
package logging

import (
	"io"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
)

// Setup configures lgr and redirects the standard logger through it. With
// dbg set, [DEBUG] lines and callers are shown; otherwise only [INFO] and above.
// Output goes to out, errors also to errOut.
func Setup(dbg bool, out, errOut io.Writer) {
	logOpts := []lgr.Option{lgr.Out(out), lgr.Err(errOut)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
