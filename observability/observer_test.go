package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tailored-agentic-units/courier/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.SlogLevel(); got != tt.want {
				t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_OTelAlignment(t *testing.T) {
	if observability.LevelVerbose != 5 {
		t.Errorf("LevelVerbose = %d, want 5 (OTel DEBUG range)", observability.LevelVerbose)
	}
	if observability.LevelInfo != 9 {
		t.Errorf("LevelInfo = %d, want 9 (OTel INFO range)", observability.LevelInfo)
	}
	if observability.LevelWarning != 13 {
		t.Errorf("LevelWarning = %d, want 13 (OTel WARN range)", observability.LevelWarning)
	}
	if observability.LevelError != 17 {
		t.Errorf("LevelError = %d, want 17 (OTel ERROR range)", observability.LevelError)
	}
}

func TestNoOpObserver(t *testing.T) {
	obs := observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "test.event",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "test",
		Data:      map[string]any{"key": "value"},
	})
}

func TestMultiObserver(t *testing.T) {
	obs1 := &observability.Recorder{}
	obs2 := &observability.Recorder{}

	multi := observability.NewMultiObserver(obs1, obs2)

	event := observability.Event{
		Type:      "test.event",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "test",
		Data:      map[string]any{"key": "value"},
	}

	multi.OnEvent(context.Background(), event)

	if n := len(obs1.Events()); n != 1 {
		t.Errorf("observer 1 received %d events, want 1", n)
	}
	if n := len(obs2.Events()); n != 1 {
		t.Errorf("observer 2 received %d events, want 1", n)
	}
	if got := obs1.Events()[0].Type; got != "test.event" {
		t.Errorf("observer 1 event type = %q, want %q", got, "test.event")
	}
}

func TestMultiObserver_NilFiltering(t *testing.T) {
	obs := &observability.Recorder{}

	multi := observability.NewMultiObserver(nil, obs, nil)

	multi.OnEvent(context.Background(), observability.Event{
		Type:  "test.event",
		Level: observability.LevelInfo,
	})

	if n := obs.Count("test.event"); n != 1 {
		t.Errorf("received %d events, want 1 (nil observers should be filtered)", n)
	}
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at info handler", level: observability.LevelInfo, minLevel: slog.LevelInfo, expectLog: true},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "warning at warn handler", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				Level: tt.minLevel,
			}))

			obs := observability.NewSlogObserver(logger)
			obs.OnEvent(context.Background(), observability.Event{
				Type:      "test.event",
				Level:     tt.level,
				Timestamp: time.Now(),
				Source:    "test",
			})

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expectLog {
				t.Errorf("log output = %v, want %v (buf: %q)", hasOutput, tt.expectLog, buf.String())
			}
		})
	}
}

func TestSlogObserver_EventTypeAsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "messenger.request",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "alpha",
		Data: map[string]any{
			"id": 42,
		},
	})

	output := buf.String()
	if !strings.Contains(output, "messenger.request") {
		t.Errorf("expected event type as log message, got: %s", output)
	}
	if !strings.Contains(output, "messenger=alpha") {
		t.Errorf("expected source attribute, got: %s", output)
	}
	if !strings.Contains(output, "id=42") {
		t.Errorf("expected data attributes, got: %s", output)
	}
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop", wantErr: false},
		{name: "slog exists", key: "slog", wantErr: false},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetObserver(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && obs == nil {
				t.Errorf("GetObserver(%q) returned nil observer", tt.key)
			}
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	custom := &observability.Recorder{}

	observability.RegisterObserver("test-custom", custom)

	obs, err := observability.GetObserver("test-custom")
	if err != nil {
		t.Fatalf("GetObserver failed: %v", err)
	}

	obs.OnEvent(context.Background(), observability.Event{
		Type:  "test.event",
		Level: observability.LevelInfo,
	})

	if n := custom.Count("test.event"); n != 1 {
		t.Errorf("received %d events, want 1", n)
	}
}

func TestResolve_SlogUsesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	obs, err := observability.Resolve("slog", logger)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	obs.OnEvent(context.Background(), observability.NewEvent("messenger.send", observability.LevelInfo, "beta", nil))

	if !strings.Contains(buf.String(), "messenger.send") {
		t.Errorf("expected event in messenger logger, got: %q", buf.String())
	}
}

func TestResolve_Unknown(t *testing.T) {
	if _, err := observability.Resolve("carrier-pigeon", slog.Default()); err == nil {
		t.Error("Resolve(unknown) error = nil, want error")
	}
}

func TestNames(t *testing.T) {
	names := observability.Names()
	want := map[string]bool{"noop": false, "slog": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("Names() = %v, missing %q", names, n)
		}
	}
}

func TestObserverFunc(t *testing.T) {
	var got observability.EventType
	obs := observability.ObserverFunc(func(_ context.Context, e observability.Event) {
		got = e.Type
	})
	obs.OnEvent(context.Background(), observability.Event{Type: "messenger.shoot"})

	if got != "messenger.shoot" {
		t.Errorf("ObserverFunc saw %q, want messenger.shoot", got)
	}
}

func TestRecorder_Reset(t *testing.T) {
	rec := &observability.Recorder{}
	rec.OnEvent(context.Background(), observability.Event{Type: "a"})
	rec.OnEvent(context.Background(), observability.Event{Type: "a"})
	rec.OnEvent(context.Background(), observability.Event{Type: "b"})

	if n := rec.Count("a"); n != 2 {
		t.Errorf("Count(a) = %d, want 2", n)
	}
	rec.Reset()
	if n := len(rec.Events()); n != 0 {
		t.Errorf("after Reset, %d events, want 0", n)
	}
}

func TestMetricsObserver(t *testing.T) {
	obs := observability.NewMetricsObserver("courier")
	reg := prometheus.NewRegistry()
	reg.MustRegister(obs)

	ctx := context.Background()
	obs.OnEvent(ctx, observability.NewEvent("messenger.send", observability.LevelInfo, "alpha", nil))
	obs.OnEvent(ctx, observability.NewEvent("messenger.send", observability.LevelInfo, "alpha", nil))
	obs.OnEvent(ctx, observability.NewEvent("messenger.timeout", observability.LevelWarning, "alpha", nil))

	if n := testutil.CollectAndCount(obs, "courier_events_total"); n != 2 {
		t.Errorf("series = %d, want 2", n)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "courier_events_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if total != 3 {
		t.Errorf("events_total sum = %v, want 3", total)
	}
}
