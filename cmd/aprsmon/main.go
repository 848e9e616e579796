// Command aprsmon connects to APRS-IS, logs every frame it receives and
// optionally maintains a heard-station database.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/aprsgo/aprsis/aprs"
	"github.com/aprsgo/aprsis/aprsis"
	"github.com/aprsgo/aprsis/internal/config"
	"github.com/aprsgo/aprsis/internal/database"
)

const VERSION = "1.0.0"

func main() {
	configFile := flag.String("config", "aprsmon.toml", "Path to configuration file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aprsmon %s\n", VERSION)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "aprsmon",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	conf, err := config.Load(*configFile)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// A passcode that does not match the callsign would be rejected by
	// the server anyway, so fall back to a read-only session up front.
	if conf.Station.Passcode != aprsis.ReadOnlyPasscode {
		expected, err := aprs.CalculatePasscode(conf.Station.Callsign)
		if err != nil || conf.Station.Passcode != strconv.Itoa(expected) {
			logger.Warnf("passcode does not match callsign %s, connecting read-only",
				conf.Station.Callsign)
			conf.Station.Passcode = aprsis.ReadOnlyPasscode
		}
	}

	var repo *database.StationRepository
	if conf.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: conf.Database.Path}, logger)
		if err != nil {
			logger.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		repo = database.NewStationRepository(db.GetDB())
	}

	transport := aprsis.NewTCP(
		conf.Station.Callsign,
		conf.Station.Passcode,
		conf.APRSIS.Servers,
		conf.APRSIS.Filter,
		logger,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	shutdown := make(chan struct{})
	go func() {
		sig := <-sigCh
		logger.Infof("received %v, shutting down", sig)
		close(shutdown)
		transport.Close()
	}()

	if err := transport.Start(); err != nil {
		logger.Fatalf("failed to connect: %v", err)
	}

	err = transport.Receive(func(frame aprs.Frame) {
		logger.Infof("heard %s", frame.String())
		if repo != nil {
			if err := repo.Record(frame); err != nil {
				logger.Warnf("failed to record station: %v", err)
			}
		}
	})
	if err != nil {
		// Closing the transport from the signal handler surfaces as a
		// closed-connection read error; after a signal that is the
		// normal way out, not a failure.
		select {
		case <-shutdown:
			logger.Info("shutdown complete")
		default:
			logger.Fatalf("receive ended: %v", err)
		}
	}
}
