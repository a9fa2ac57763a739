// Command cansniff dumps live CAN traffic to structured logs.
//
// The frame source is either a Linux SocketCAN interface or an SLCAN adapter
// on a serial port:
//
//	cansniff -iface vcan0
//	cansniff -serial /dev/ttyUSB0 -baud 115200 -bitrate 500k
//
// Identifier flags narrow the capture; on SocketCAN exact-identifier matches
// are pushed into the kernel so uninteresting traffic never crosses the
// socket.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"halbus-go/can"
	"halbus-go/slcan"
)

type config struct {
	iface   string
	serial  string
	baud    int
	bitrate string

	// match holds the exact identifiers the capture is narrowed to, for
	// sources that can filter below the mux.
	match []can.ID
}

func main() {
	var (
		iface    = flag.String("iface", "", "SocketCAN interface to capture from (Linux only)")
		device   = flag.String("serial", "", "serial device of an SLCAN adapter")
		baud     = flag.Int("baud", 115200, "serial baud rate to the SLCAN adapter")
		bitrate  = flag.String("bitrate", "500k", "CAN bitrate the SLCAN adapter is opened at")
		sid      = flag.String("sid", "", "capture only this standard identifier (hex)")
		eid      = flag.String("eid", "", "capture only this extended identifier (hex)")
		stdOnly  = flag.Bool("std", false, "capture base format frames only")
		extOnly  = flag.Bool("ext", false, "capture extended format frames only")
		dataOnly = flag.Bool("data", false, "drop remote transmission requests")
		count    = flag.Int("count", 0, "stop after this many frames (0 = run until interrupted)")
		verbose  = flag.Bool("v", false, "log at debug level")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config{iface: *iface, serial: *device, baud: *baud, bitrate: *bitrate}
	filter, err := buildFilter(&cfg, *sid, *eid, *stdOnly, *extOnly, *dataOnly)
	if err != nil {
		logger.Error("bad filter flags", "error", err)
		os.Exit(2)
	}

	bus, err := openBus(cfg)
	if err != nil {
		logger.Error("open source", "error", err)
		os.Exit(1)
	}

	// Closing the bus is what stops the mux; both the signal handler and the
	// frame-count limit funnel through here.
	var stopOnce sync.Once
	stopping := make(chan struct{})
	stop := func() {
		stopOnce.Do(func() {
			close(stopping)
			if err := bus.Close(); err != nil {
				logger.Debug("close source", "error", err)
			}
		})
	}

	// A second signal force-quits: a serial read blocked in the driver can
	// outlive the close, and waiting on it forever helps nobody.
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("interrupted, closing")
		stop()
		<-sig
		logger.Error("forced exit")
		os.Exit(1)
	}()

	mux := can.NewMux(bus, 64)
	sub := mux.Subscribe(filter)

	seen := 0
	for f := range sub.Frames() {
		logger.Info("frame",
			"text", f.String(),
			"extended", f.ID.IsExtended(),
			"rtr", f.RTR,
		)
		seen++
		if *count > 0 && seen >= *count {
			stop()
			break
		}
	}

	<-mux.Done()
	select {
	case <-stopping:
		// The error is whatever closing the source made Receive report.
	default:
		if err := mux.Err(); err != nil && !errors.Is(err, can.ErrClosed) {
			logger.Error("source failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("done", "frames", seen)
}

// buildFilter turns the identifier flags into one mux filter and records the
// exact matches on cfg for kernel-side filtering.
func buildFilter(cfg *config, sid, eid string, stdOnly, extOnly, dataOnly bool) (can.Filter, error) {
	if stdOnly && extOnly {
		return nil, errors.New("-std and -ext are mutually exclusive")
	}

	var byID []can.Filter
	if sid != "" {
		raw, err := strconv.ParseUint(sid, 16, 16)
		if err != nil {
			return nil, err
		}
		id, err := can.NewStandardID(uint16(raw))
		if err != nil {
			return nil, err
		}
		cfg.match = append(cfg.match, id)
		byID = append(byID, can.ByID(id))
	}
	if eid != "" {
		raw, err := strconv.ParseUint(eid, 16, 32)
		if err != nil {
			return nil, err
		}
		id, err := can.NewExtendedID(uint32(raw))
		if err != nil {
			return nil, err
		}
		cfg.match = append(cfg.match, id)
		byID = append(byID, can.ByID(id))
	}

	var parts []can.Filter
	switch len(byID) {
	case 1:
		parts = append(parts, byID[0])
	case 2:
		parts = append(parts, can.Or(byID...))
	}
	if stdOnly {
		parts = append(parts, can.StandardOnly())
	}
	if extOnly {
		parts = append(parts, can.ExtendedOnly())
	}
	if dataOnly {
		parts = append(parts, can.DataOnly())
	}

	switch len(parts) {
	case 0:
		return nil, nil // accept everything
	case 1:
		return parts[0], nil
	}
	return can.And(parts...), nil
}

// openSerial opens an SLCAN adapter and puts it on-bus at the requested
// bitrate.
func openSerial(cfg config) (can.Bus, error) {
	code, err := parseBitrate(cfg.bitrate)
	if err != nil {
		return nil, err
	}
	port, err := slcan.Dial(cfg.serial, cfg.baud)
	if err != nil {
		return nil, err
	}
	if err := port.Open(code); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}

func parseBitrate(s string) (slcan.Bitrate, error) {
	switch s {
	case "10k":
		return slcan.Bitrate10k, nil
	case "20k":
		return slcan.Bitrate20k, nil
	case "50k":
		return slcan.Bitrate50k, nil
	case "100k":
		return slcan.Bitrate100k, nil
	case "125k":
		return slcan.Bitrate125k, nil
	case "250k":
		return slcan.Bitrate250k, nil
	case "500k":
		return slcan.Bitrate500k, nil
	case "800k":
		return slcan.Bitrate800k, nil
	case "1m", "1M":
		return slcan.Bitrate1M, nil
	}
	return 0, errors.New("unknown bitrate " + strconv.Quote(s))
}
