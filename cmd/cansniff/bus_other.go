//go:build !linux

package main

import (
	"errors"

	"halbus-go/can"
)

func openBus(cfg config) (can.Bus, error) {
	if cfg.iface != "" {
		return nil, errors.New("-iface captures from SocketCAN, which is Linux only; use -serial")
	}
	if cfg.serial == "" {
		return nil, errors.New("-serial is required")
	}
	return openSerial(cfg)
}
