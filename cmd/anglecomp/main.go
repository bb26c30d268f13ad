package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/anglecomp/internal/config"
	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
	"github.com/banshee-data/anglecomp/internal/lidar/monitor"
	"github.com/banshee-data/anglecomp/internal/serialmux"
	"github.com/banshee-data/anglecomp/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to a sensor config JSON file (defaults apply when empty)")
	port          = flag.String("port", "", "Serial port to use; overrides the config file")
	listen        = flag.String("listen", "", "Admin HTTP listen address; overrides the config file")
	binary        = flag.Bool("binary", false, "Use CoLa-B binary framing; overrides the config file")
	devMode       = flag.Bool("dev", false, "Run against a mock scanner")
	disableSensor = flag.Bool("disable-sensor", false, "Run without a scanner; only the admin routes are served")
	debugLogs     = flag.Bool("debug", false, "Log every decoded reply and calibration update")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// devReply is what the mock scanner answers to the calibration query.
const devReply = "sRA MCAngleCompSin +1893 -210503 -245"

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on the command line.
func loadConfig(path string, set map[string]bool) (*config.SensorConfig, error) {
	cfg := config.EmptySensorConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadSensorConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if set["port"] {
		cfg.Port = port
	}
	if set["listen"] {
		cfg.Listen = listen
	}
	if set["binary"] {
		cfg.Binary = binary
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mockReply returns the dev reply in the value encoding of the dialect.
func mockReply(dialect serialmux.Dialect) []byte {
	if !dialect.Binary() {
		return []byte(devReply)
	}
	return append([]byte("sRA MCAngleCompSin "),
		0x00, 0x00, 0x07, 0x65, // 1893
		0xFF, 0xFC, 0xC9, 0xB9, // -210503
		0xFF, 0xFF, 0xFF, 0x0B, // -245
	)
}

func openSensor(cfg *config.SensorConfig) (serialmux.SerialMuxInterface, error) {
	switch {
	case *disableSensor:
		return serialmux.NewDisabledSerialMux(), nil
	case *devMode:
		mux := serialmux.NewMockSerialMux(cfg.Dialect(), mockReply(cfg.Dialect()))
		mux.SetQueryCommand(cfg.GetQueryCommand())
		return mux, nil
	default:
		mux, err := serialmux.NewRealSerialMux(cfg.GetPort(), cfg.PortOptions(), cfg.Dialect())
		if err != nil {
			return nil, err
		}
		mux.SetQueryCommand(cfg.GetQueryCommand())
		return mux, nil
	}
}

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(*configPath, set)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *debugLogs {
		anglecomp.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	}

	sensor, err := openSensor(cfg)
	if err != nil {
		log.Fatalf("failed to open scanner on %s: %v", cfg.GetPort(), err)
	}
	defer sensor.Close()

	comp := anglecomp.NewCompensator()
	stats := monitor.NewReplyStats()
	binaryReplies := cfg.Dialect().Binary()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// subscribe before the monitor starts so the first reply is not dropped
	id, c := sensor.Subscribe()

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sensor.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// pass replies to the event handler
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer sensor.Unsubscribe(id)
		for {
			select {
			case payload, ok := <-c:
				if !ok {
					return
				}
				if err := serialmux.HandleEvent(comp, stats, binaryReplies, payload); err != nil {
					log.Printf("error handling event: %v", err)
				}
			case <-ctx.Done():
				log.Printf("subscribe routine terminated")
				return
			}
		}
	}()

	if err := sensor.Initialize(); err != nil {
		log.Printf("failed to query angle compensation: %v", err)
	} else {
		log.Printf("queried angle compensation (%s)", cfg.Dialect())
	}

	// periodic re-query
	if interval := cfg.GetQueryInterval(); interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := sensor.Initialize(); err != nil {
						log.Printf("re-query failed: %v", err)
					}
					stats.LogStats()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		sensor.AttachAdminRoutes(mux)
		monitor.AttachAngleCompRoutes(mux, comp, stats)

		server := &http.Server{
			Addr:    cfg.GetListen(),
			Handler: mux,
		}

		go func() {
			log.Printf("admin routes at http://%s/debug/", cfg.GetListen())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	stats.LogStats()
	log.Printf("Graceful shutdown complete")
}
