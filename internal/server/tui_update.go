// ABOUTME: TUI update helpers for server
// ABOUTME: Pushes server state to the TUI and applies its mic toggles
package server

import (
	"fmt"
	"sort"
	"time"
)

// tuiLoop refreshes the TUI and applies mic toggles until stop
func (s *Server) tuiLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.updateTUI()
	for {
		select {
		case <-ticker.C:
			s.updateTUI()
		case <-s.tui.MuteChan():
			s.SetMicMuted(!s.MicMuted())
			s.updateTUI()
		case <-s.stopChan:
			return
		}
	}
}

// updateTUI sends current server state to TUI
func (s *Server) updateTUI() {
	if s.tui == nil {
		return
	}
	s.tui.Update(s.Status())
}

// Status snapshots the server for display
func (s *Server) Status() ServerStatus {
	s.clientsMu.RLock()
	clients := make([]ClientInfo, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, ClientInfo{
			Addr:    client.RemoteAddr,
			ID:      client.ID,
			Playing: client.Playing(),
			RTT:     client.RTT(),
		})
	}
	s.clientsMu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].Addr < clients[j].Addr
	})

	format := s.engine.Format()

	return ServerStatus{
		Name:       s.config.Name,
		Port:       s.config.Port,
		Format:     fmt.Sprintf("%s %d Hz", format.Codec, format.SampleRate),
		MicMuted:   s.MicMuted(),
		FramesSent: s.engine.FramesSent(),
		Clients:    clients,
	}
}
