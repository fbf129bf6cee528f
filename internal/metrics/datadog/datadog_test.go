package datadog

import (
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/asolidum/proofreader/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if b, err := NewBackend(Config{}); err == nil || b != nil {
		t.Fatalf("NewBackend(empty)=%v,%v; want nil,error", b, err)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   metrics.Labels
		want []string
	}{
		{"nil", nil, nil},
		{"empty", metrics.Labels{}, nil},
		{"sorted", metrics.Labels{"step": "run", "job": "audit"}, []string{"job:audit", "step:run"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := labelsToTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("labelsToTags(%v)=%v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestZeroBackendIsNop(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter(metrics.LinesTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestBackend_SendsToAgent(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer pc.Close()

	b, err := NewBackend(Config{
		Addr:       pc.LocalAddr().String(),
		Namespace:  "audit.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	defer b.Close()

	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "run", "status": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	buf := make([]byte, 4096)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = pc.SetReadDeadline(deadline)
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			break
		}
		got := string(buf[:n])
		if strings.Contains(got, "audit."+metrics.StepDuration+":0.25|h") {
			if !strings.Contains(got, "env:test") || !strings.Contains(got, "step:run") {
				t.Fatalf("payload %q missing tags", got)
			}
			return
		}
	}
	t.Fatalf("no histogram payload received")
}
