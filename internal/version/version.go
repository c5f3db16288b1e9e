// ABOUTME: Build and product identification
// ABOUTME: Reported in startup logs and the player User-Agent
package version

const (
	Version      = "0.3.0"
	Product      = "LiveListen Player"
	Manufacturer = "Resonate"
)
