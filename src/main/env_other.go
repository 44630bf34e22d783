//go:build !windows

package main

import (
	"log"

	"github.com/kbinani/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	n := screenshot.NumActiveDisplays()
	log.Printf("MONITOR: Detected %d displays", n)
	if n > 0 {
		log.Printf("MONITOR: Primary display %v (only the primary display is captured)", screenshot.GetDisplayBounds(0))
	}
}
