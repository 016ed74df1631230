package seqtag

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRenderTruncates(t *testing.T) {
	msg := render("%s", strings.Repeat("x", maxMsgLen*2))
	if len(msg) != maxMsgLen {
		t.Errorf("len(msg) = %d, want %d", len(msg), maxMsgLen)
	}
}

func TestFatalfReturnsError(t *testing.T) {
	sinks, log := recordingSinks()
	err := sinks.fatalf("unknown algorithm '%s'", "newton")
	if err == nil {
		t.Fatal("fatalf() returned nil error")
	}
	if len(log.fatal) != 1 || log.fatal[0] != err.Error() {
		t.Errorf("fatal sink got %v, error is %q", log.fatal, err)
	}
}

func TestSyserrfAppendsOSError(t *testing.T) {
	sinks, log := recordingSinks()
	cause := errors.New("no such file or directory")

	err := sinks.syserrf(cause, "cannot open input model file: %s", "model.json")
	if err == nil {
		t.Fatal("syserrf() returned nil error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("returned error does not wrap the cause: %v", err)
	}
	if len(log.fatalSys) != 1 {
		t.Fatalf("fatalSys reports = %v, want exactly one", log.fatalSys)
	}
	if !strings.HasSuffix(log.fatalSys[0], "<no such file or directory>") {
		t.Errorf("message %q does not end with the bracketed OS error", log.fatalSys[0])
	}
}

func TestWarnfNeverHalts(t *testing.T) {
	sinks, log := recordingSinks()
	sinks.warnf("label %q seen only once", "B-ORG")
	sinks.infof("loaded %d sequences", 3)
	if len(log.warning) != 1 || len(log.info) != 1 {
		t.Errorf("warning = %v, info = %v", log.warning, log.info)
	}
	if len(log.fatal)+len(log.fatalSys) != 0 {
		t.Error("advisory severities reached a fatal sink")
	}
}

func TestSlogSinksRouting(t *testing.T) {
	var buf bytes.Buffer
	sinks := SlogSinks(slog.New(slog.NewTextHandler(&buf, nil)))

	sinks.Fatal("boom")
	sinks.Warning("careful")
	sinks.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "boom") {
		t.Errorf("fatal not routed to slog error: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "careful") {
		t.Errorf("warning not routed to slog warn: %q", out)
	}
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "hello") {
		t.Errorf("info not routed to slog info: %q", out)
	}
}
