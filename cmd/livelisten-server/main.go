// ABOUTME: Entry point for the LiveListen development server
// ABOUTME: Streams a test tone to listeners as PCM16 or IMA ADPCM frames
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/livelisten/internal/server"
	"github.com/Resonate-Protocol/livelisten/pkg/audio"
	"github.com/charmbracelet/log"
)

var (
	port      = flag.Int("port", server.DefaultPort, "WebSocket server port")
	name      = flag.String("name", "", "Server friendly name (default: hostname-livelisten-server)")
	wsPath    = flag.String("path", "/", "WebSocket path")
	logFile   = flag.String("log-file", "livelisten-server.log", "Log file path")
	debug     = flag.Bool("debug", false, "Enable debug logging")
	noMDNS    = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	useTUI    = flag.Bool("tui", false, "Show the status TUI (m toggles the mic)")
	rateKHz   = flag.Int("rate-khz", server.DefaultRateKHz, "Stream sample rate in kHz (1-127)")
	pcm       = flag.Bool("pcm", false, "Send raw PCM16 instead of IMA ADPCM")
	frameMs   = flag.Int("frame-ms", server.DefaultFrameMs, "Frame duration in milliseconds")
	frequency = flag.Float64("freq", server.DefaultFrequency, "Test tone frequency in Hz")
	muteEvery = flag.Duration("mute-every", 0, "Toggle the mic status on this period (0 disables)")
)

func main() {
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if *useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	log.SetReportTimestamp(true)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-livelisten-server", hostname)
	}

	codec := audio.CodecADPCM
	if *pcm {
		codec = audio.CodecPCM16
	}

	log.Infof("Starting LiveListen Server: %s on port %d", serverName, *port)
	log.Infof("Logging to: %s", *logFile)

	srv, err := server.New(server.Config{
		Port:       *port,
		Name:       serverName,
		Path:       *wsPath,
		EnableMDNS: !*noMDNS,
		Debug:      *debug,
		UseTUI:     *useTUI,
		Codec:      codec,
		RateKHz:    *rateKHz,
		FrameMs:    *frameMs,
		Frequency:  *frequency,
		MuteEvery:  *muteEvery,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Infof("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Info("Server stopped")
}
