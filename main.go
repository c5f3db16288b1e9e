// ABOUTME: Entry point for the LiveListen player
// ABOUTME: Parses CLI flags and YAML config, then runs the listener session
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/livelisten/internal/client"
	"github.com/Resonate-Protocol/livelisten/internal/config"
	"github.com/Resonate-Protocol/livelisten/internal/discovery"
	"github.com/Resonate-Protocol/livelisten/internal/metrics"
	"github.com/Resonate-Protocol/livelisten/internal/ui"
	"github.com/Resonate-Protocol/livelisten/internal/version"
	"github.com/Resonate-Protocol/livelisten/pkg/audio/output"
	"github.com/Resonate-Protocol/livelisten/pkg/livelisten"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	serverAddr = flag.String("server", "", "Manual server address (skip mDNS)")
	path       = flag.String("path", "", "WebSocket path on the server")
	port       = flag.Int("port", 8928, "Port for mDNS advertisement")
	name       = flag.String("name", "", "Player friendly name (default: hostname-livelisten)")
	logFile    = flag.String("log-file", "", "Log file path")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	noAudio    = flag.Bool("no-audio", false, "Discard audio instead of opening the sound card")
	metricsOn  = flag.Bool("metrics", false, "Serve Prometheus metrics")
	autoplay   = flag.Bool("autoplay", false, "Start playing as soon as connected")

	discoveryTimeout = 10 * time.Second
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	useTUI := cfg.UI.Enabled

	// Set up logging
	f, err := os.OpenFile(cfg.Logging.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	log.Infof("Starting %s %s: %s", version.Product, version.Version, cfg.Server.Name)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Advertise the player and discover a server if none was given
	disc := discovery.NewManager(discovery.Config{
		ServiceName: cfg.Server.Name,
		Port:        *port,
		Path:        cfg.Server.Path,
	})
	defer disc.Stop()

	if err := disc.Advertise(); err != nil {
		log.Warnf("mDNS advertisement failed: %v", err)
	}

	address := cfg.Server.Address
	serverPath := cfg.Server.Path
	if address == "" {
		log.Info("Starting server discovery...")
		if err := disc.Browse(); err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, discoveryTimeout)
		server, err := disc.WaitForServer(waitCtx)
		waitCancel()
		if err != nil {
			log.Fatalf("No server found after %v: %v", discoveryTimeout, err)
		}

		address = server.Addr()
		if server.Path != "" {
			serverPath = server.Path
		}
		log.Infof("Discovered server %s at %s", server.Name, address)
	}

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		go serveMetrics(cfg.Metrics.Address, reg)
	}

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg = ui.Run(controls, cfg.Audio.Volume, cfg.UI.ShowStats)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg tea.Msg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	dialer := client.NewWebsocketDialer()
	dialer.Header = http.Header{
		"User-Agent": []string{"livelisten/" + version.Version},
	}

	playerConfig := livelisten.PlayerConfig{
		ServerAddr:        address,
		Path:              serverPath,
		PlayerName:        cfg.Server.Name,
		Volume:            cfg.Audio.Volume,
		SampleRate:        cfg.Audio.SampleRate,
		VisualSamples:     cfg.Audio.VisualSamples,
		MinBuffer:         cfg.Buffer.MinSeconds,
		MaxBuffer:         cfg.Buffer.MaxSeconds,
		TailFactor:        cfg.Buffer.TailFactor,
		WindowSize:        cfg.Buffer.WindowSize,
		HeartbeatInterval: cfg.Connection.HeartbeatInterval(),
		HeartbeatTimeout:  cfg.Connection.HeartbeatTimeout(),
		ReconnectInterval: cfg.Connection.ReconnectInterval(),
		Autoplay:          cfg.Connection.Autoplay,
		Dialer:            dialer,
		Metrics:           m,
		OnStateChange: func(st livelisten.Status) {
			senderMuted := st.SenderMuted
			updateTUI(ui.StatusMsg{
				Connection:  st.Connection.String(),
				ServerName:  address,
				State:       st.State,
				SenderMuted: &senderMuted,
			})
		},
	}
	if cfg.Audio.Disabled {
		playerConfig.Sink = output.NewNull(cfg.Audio.SampleRate, nil)
	}

	player, err := livelisten.NewPlayer(playerConfig)
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	runCtx, stopPlayer := context.WithCancel(ctx)
	defer stopPlayer()

	done := make(chan error, 1)
	go func() {
		done <- player.Run(runCtx)
	}()

	if controls != nil {
		go handleControls(runCtx, player, controls)
		go statsUpdateLoop(runCtx, player, cfg.UI.StatsInterval(), address, updateTUI)
	} else {
		go statsLogLoop(runCtx, player, cfg.UI.StatsInterval())
	}

	// Wait for quit signal from TUI or OS
	var quit <-chan struct{}
	if controls != nil {
		quit = controls.Quit
	}

	select {
	case <-quit:
		log.Info("Received quit signal from TUI")
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("Player failed: %v", err)
		}
	}

	stopPlayer()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("Error stopping player: %v", err)
		}
	case <-time.After(5 * time.Second):
		log.Warn("Player did not stop in time")
	}

	if tuiProg != nil {
		tuiProg.Quit()
	}

	log.Info("Player stopped")
}

// loadConfig reads the YAML file if given and applies explicitly set flags
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "server":
			cfg.Server.Address = *serverAddr
		case "path":
			cfg.Server.Path = *path
		case "name":
			cfg.Server.Name = *name
		case "log-file":
			cfg.Logging.File = *logFile
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "no-tui":
			cfg.UI.Enabled = !*noTUI
		case "no-audio":
			cfg.Audio.Disabled = *noAudio
		case "metrics":
			cfg.Metrics.Enabled = *metricsOn
		case "autoplay":
			cfg.Connection.Autoplay = *autoplay
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// serveMetrics exposes the registry until the process exits
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	log.Infof("Metrics listening on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server failed: %v", err)
	}
}

// handleControls applies key presses from the TUI
func handleControls(ctx context.Context, player *livelisten.Player, controls *ui.Controls) {
	for {
		select {
		case vol := <-controls.Changes:
			log.Debugf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			player.SetVolume(vol.Volume)
			player.Mute(vol.Muted)
		case <-controls.Toggle:
			player.Toggle()
		case <-ctx.Done():
			return
		}
	}
}

// statsUpdateLoop periodically updates TUI with buffer statistics
func statsUpdateLoop(ctx context.Context, player *livelisten.Player, interval time.Duration, address string, updateTUI func(tea.Msg)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := player.Stats()
			st := player.Status()

			updateTUI(ui.StatusMsg{
				Connection:  stats.Connection.String(),
				ServerName:  address,
				LinkQuality: stats.LinkQuality,
				State:       st.State,
			})
			updateTUI(ui.StatsMsg{
				Line:      stats.String(),
				Packets:   stats.Packets,
				Malformed: stats.Malformed,
				Waveform:  player.Waveform(),
			})

		case <-ctx.Done():
			return
		}
	}
}

// statsLogLoop logs the stats line when there is no TUI
func statsLogLoop(ctx context.Context, player *livelisten.Player, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Debug(player.Stats().String(), "state", player.Status().State)
		case <-ctx.Done():
			return
		}
	}
}
