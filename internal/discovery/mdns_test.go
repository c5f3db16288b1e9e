// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests service naming and answer parsing
package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Player",
		Port:        8927,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	if mgr.config.Path != "/" {
		t.Errorf("expected default path /, got %s", mgr.config.Path)
	}
}

func TestServiceType(t *testing.T) {
	if got := NewManager(Config{}).ServiceType(); got != PlayerService {
		t.Errorf("expected %s, got %s", PlayerService, got)
	}
	if got := NewManager(Config{ServerMode: true}).ServiceType(); got != ServerService {
		t.Errorf("expected %s, got %s", ServerService, got)
	}
}

func TestEntryToServer(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "kitchen._livelisten-server._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8927,
		InfoFields: []string{"path=/listen"},
	}

	server := entryToServer(entry)
	if server == nil {
		t.Fatal("expected server")
	}
	if server.Addr() != "192.168.1.20:8927" {
		t.Errorf("expected 192.168.1.20:8927, got %s", server.Addr())
	}
	if server.Path != "/listen" {
		t.Errorf("expected /listen, got %s", server.Path)
	}
}

func TestEntryWithoutIPv4Skipped(t *testing.T) {
	if entryToServer(&mdns.ServiceEntry{Port: 1}) != nil {
		t.Error("expected nil for entry without IPv4 address")
	}
	if entryToServer(nil) != nil {
		t.Error("expected nil for nil entry")
	}
}

func TestPathFromTXT(t *testing.T) {
	tests := []struct {
		fields []string
		want   string
	}{
		{nil, "/"},
		{[]string{"version=1"}, "/"},
		{[]string{"path="}, "/"},
		{[]string{"version=1", "path=/stream"}, "/stream"},
	}

	for _, tt := range tests {
		if got := pathFromTXT(tt.fields); got != tt.want {
			t.Errorf("pathFromTXT(%v): expected %s, got %s", tt.fields, tt.want, got)
		}
	}
}

func TestWaitForServerTimesOut(t *testing.T) {
	mgr := NewManager(Config{})
	defer mgr.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := mgr.WaitForServer(ctx); err == nil {
		t.Error("expected timeout error")
	}
}
