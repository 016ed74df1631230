package seqtag

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// maxMsgLen bounds the rendered length of a single report. Longer messages
// are truncated before dispatch so a handler always receives a bounded
// string.
const maxMsgLen = 1400

// Sinks maps the four report severities to message handlers. A Model holds
// its own Sinks value (injected with WithSinks), so hosts and tests can
// substitute handlers without touching process-wide state.
//
// The two fatal severities carry the contract that state after the report
// is unreliable; whether and how to terminate is entirely the installed
// handler's decision. The library itself never terminates outside the
// DefaultSinks handlers.
type Sinks struct {
	// Fatal receives reports of unrecoverable conditions.
	Fatal func(msg string)
	// FatalSys receives fatal reports that carry an OS error description,
	// appended to the message in angle brackets.
	FatalSys func(msg string)
	// Warning receives advisory reports that never halt execution.
	Warning func(msg string)
	// Info receives informational reports.
	Info func(msg string)
}

// DefaultSinks returns the default handler set: both fatal severities print
// to stderr and terminate the process, warnings print to stderr, info prints
// to stdout.
func DefaultSinks() *Sinks {
	return &Sinks{
		Fatal: func(msg string) {
			fmt.Fprintln(os.Stderr, "error: "+msg)
			os.Exit(1)
		},
		FatalSys: func(msg string) {
			fmt.Fprintln(os.Stderr, "error: "+msg)
			os.Exit(1)
		},
		Warning: func(msg string) {
			fmt.Fprintln(os.Stderr, "warning: "+msg)
		},
		Info: func(msg string) {
			fmt.Fprintln(os.Stdout, msg)
		},
	}
}

// SlogSinks adapts all four severities onto a slog.Logger. None of the
// returned handlers terminate; fatal reports surface as the error returned
// by the reporting call.
func SlogSinks(logger *slog.Logger) *Sinks {
	return &Sinks{
		Fatal:    func(msg string) { logger.Error(msg) },
		FatalSys: func(msg string) { logger.Error(msg) },
		Warning:  func(msg string) { logger.Warn(msg) },
		Info:     func(msg string) { logger.Info(msg) },
	}
}

// render formats a report and truncates it to maxMsgLen.
func render(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > maxMsgLen {
		msg = msg[:maxMsgLen]
	}
	return msg
}

// fatalf dispatches a fatal report and returns it as an error for handlers
// that do not terminate.
func (s *Sinks) fatalf(format string, args ...any) error {
	msg := render(format, args...)
	s.Fatal(msg)
	return errors.New(msg)
}

// syserrf dispatches a fatal report with the OS error description appended
// in angle brackets.
func (s *Sinks) syserrf(err error, format string, args ...any) error {
	msg := render(format, args...)
	if err == nil {
		s.FatalSys(msg)
		return errors.New(msg)
	}
	s.FatalSys(msg + " <" + err.Error() + ">")
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Sinks) warnf(format string, args ...any) {
	s.Warning(render(format, args...))
}

func (s *Sinks) infof(format string, args ...any) {
	s.Info(render(format, args...))
}
