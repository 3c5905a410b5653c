// Command mediapanel polls GPIO buttons and rotary encoders and drives
// an MPD server with the decoded playback events.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/mediapanel/internal/config"
	"github.com/sweeney/mediapanel/internal/dispatch"
	"github.com/sweeney/mediapanel/internal/gpio"
	"github.com/sweeney/mediapanel/internal/player"
	"github.com/sweeney/mediapanel/internal/poller"
	"github.com/sweeney/mediapanel/internal/status"
	"github.com/sweeney/mediapanel/internal/telemetry"
	"github.com/sweeney/mediapanel/internal/web"
)

const joinTimeout = time.Second

func main() {
	configPath := flag.String("config", "/etc/mediapanel/pins.yaml", "Pin table path")
	quantum := flag.Duration("poll", poller.DefaultQuantum, "Sleep between polling passes")
	chip := flag.String("chip", "gpiochip0", "GPIO character device name")
	mpdAddr := flag.String("mpd", "localhost:6600", "MPD address (host:port or unix socket path)")
	broker := flag.String("broker", "", "MQTT broker for event telemetry (empty to disable)")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")
	printPins := flag.Bool("print-pins", false, "Print the validated pin table and exit")

	flag.Parse()

	if err := run(*configPath, *quantum, *chip, *mpdAddr, *broker, *httpAddr, *printPins); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath string, quantum time.Duration, chip, mpdAddr, broker, httpAddr string, printPins bool) error {
	// Configuration errors are the only fatal runtime class.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if printPins {
		printPinTable(os.Stdout, cfg)
		return nil
	}

	// Initialize GPIO
	reader, err := gpio.NewRealReader(chip, lineRequests(cfg))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Initialize the playback surface and handler table
	ctl := player.NewMPDController(mpdAddr)
	defer ctl.Close()
	disp := dispatch.New(ctl)

	tracker := status.NewTracker(time.Now(), status.Config{
		ConfigPath: configPath,
		PollUs:     quantum.Microseconds(),
		MPDAddr:    mpdAddr,
		Broker:     broker,
		HTTPAddr:   httpAddr,
	}, pinInfos(cfg))

	// Telemetry is optional and never blocks startup: a dead broker is
	// logged and the panel runs without it.
	var publisher telemetry.Publisher
	var mqttStatus telemetry.ConnectionStatus
	if broker != "" {
		pub, err := telemetry.NewRealPublisher(broker)
		if err != nil {
			log.Printf("mqtt unavailable, continuing without telemetry: %v", err)
		} else {
			publisher = pub
			mqttStatus = pub
			defer pub.Close()
		}
	}

	if publisher != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
		snap := tracker.Snapshot()
		startup := telemetry.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	sink := newSink(disp, tracker, publisher, mqttStatus)
	p := poller.New(cfg, reader, sink, poller.Options{Quantum: quantum})

	log.Printf("started: %d lines, %d encoders, poll=%v mpd=%s", len(cfg.Lines), len(cfg.Groups), quantum, mpdAddr)
	go p.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	// Bounded join; the deferred reader.Close runs either way, so a
	// loop stuck in a debounce stall cannot hold the lines hostage.
	if err := p.Stop(joinTimeout); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		shutdown := telemetry.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "SHUTDOWN",
			Reason:     signalName(s),
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName(s)),
		}
		if err := publisher.PublishSystem(shutdown); err != nil {
			log.Printf("failed to publish shutdown event: %v", err)
		} else {
			log.Printf("published shutdown event")
		}
	}

	return nil
}

// newSink wires a decoded input event through the dispatcher and then
// into the status tracker and telemetry. Dispatch failures propagate to
// the poller, which logs them; only successful dispatches are counted
// and published.
func newSink(disp *dispatch.Dispatcher, tracker *status.Tracker, pub telemetry.Publisher, conn telemetry.ConnectionStatus) poller.Sink {
	return func(line config.Line, event string) error {
		now := time.Now()
		if err := disp.Dispatch(event, line.Options); err != nil {
			return err
		}

		tracker.RecordEvent(event, now)

		if pub != nil {
			source := "button"
			if line.Rotary() {
				source = "rotary"
			}
			err := pub.PublishInput(telemetry.InputEvent{
				Timestamp: now,
				Line:      line.Offset,
				Event:     event,
				Source:    source,
			})
			if err != nil {
				log.Printf("telemetry publish: %v", err)
			}
			if conn != nil {
				tracker.SetMQTTConnected(conn.IsConnected())
			}
		}
		return nil
	}
}

// lineRequests derives the bias for each line from its polarity:
// active_low buttons idle high on a pull-up, active_high ones idle low
// on a pull-down.
func lineRequests(cfg *config.Config) []gpio.Request {
	reqs := make([]gpio.Request, 0, len(cfg.Lines))
	for _, ln := range cfg.Lines {
		pull := gpio.PullUp
		if ln.Active == config.ActiveHigh {
			pull = gpio.PullDown
		}
		reqs = append(reqs, gpio.Request{Offset: ln.Offset, Pull: pull})
	}
	return reqs
}

func pinInfos(cfg *config.Config) []status.PinInfo {
	pins := make([]status.PinInfo, 0, len(cfg.Lines))
	for _, ln := range cfg.Lines {
		pins = append(pins, status.PinInfo{
			Offset:   ln.Offset,
			Event:    ln.Event,
			Active:   string(ln.Active),
			Rotenc:   ln.RotencID,
			Debounce: ln.Debounce,
		})
	}
	return pins
}

func printPinTable(w io.Writer, cfg *config.Config) {
	for _, ln := range cfg.Lines {
		if ln.Rotary() {
			fmt.Fprintf(w, "bcm%d %s %s rotenc=%s\n", ln.Offset, ln.Event, ln.Active, ln.RotencID)
			continue
		}
		fmt.Fprintf(w, "bcm%d %s %s debounce=%v\n", ln.Offset, ln.Event, ln.Active, ln.Debounce)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
