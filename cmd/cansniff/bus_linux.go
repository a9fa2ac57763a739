//go:build linux

package main

import (
	"errors"

	"halbus-go/can"
	"halbus-go/socketcan"
)

// openBus picks the frame source. Exact-identifier matches ride into the
// kernel as acceptance filters; the mux filter still applies on top.
func openBus(cfg config) (can.Bus, error) {
	switch {
	case cfg.iface != "" && cfg.serial != "":
		return nil, errors.New("-iface and -serial are mutually exclusive")
	case cfg.iface != "":
		var sc socketcan.Config
		for _, id := range cfg.match {
			sc.Filters = append(sc.Filters, socketcan.MatchID(id))
		}
		return socketcan.DialConfig(cfg.iface, sc)
	case cfg.serial != "":
		return openSerial(cfg)
	}
	return nil, errors.New("one of -iface or -serial is required")
}
