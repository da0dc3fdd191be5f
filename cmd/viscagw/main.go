// Command viscagw is the gateway's composition root: load config, open
// transports, bring up the daisy chain, and serve UDP passthrough plus a
// debug event feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viscactl/gateway/config"
	"github.com/viscactl/gateway/eventhub"
	"github.com/viscactl/gateway/passthrough"
	"github.com/viscactl/gateway/transport"
	"github.com/viscactl/gateway/visca"
)

func main() {
	configPath := flag.String("config", "viscagw.yaml", "path to the gateway's YAML config")
	debugAddr := flag.String("debug-addr", ":8088", "HTTP listen address for the event feed")
	bringUpTimeout := flag.Duration("bring-up-timeout", 5*time.Second, "deadline for daisy-chain bring-up")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*configPath, *debugAddr, *bringUpTimeout, logger); err != nil {
		logger.Error("viscagw exiting", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath, debugAddr string, bringUpTimeout time.Duration, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	hub := eventhub.New(logger)
	ctrl := visca.NewController(hub, logger)

	var closers []func() error

	if cfg.ViscaSerial.Port != "" {
		baud := cfg.ViscaSerial.Baud
		if baud == 0 {
			baud = transport.DefaultBaud
		}
		serialLink, err := transport.OpenSerial(cfg.ViscaSerial.Port, baud, logger)
		if err != nil {
			return fmt.Errorf("opening serial chain: %w", err)
		}
		closers = append(closers, serialLink.Close)
		ctrl.AddSerialChain(serialLink)
	}

	for _, ip := range cfg.ViscaIPCameras {
		addr := fmt.Sprintf("%s:%d", ip.IP, ip.Port)
		udpLink, err := transport.DialUDP(addr, logger)
		if err != nil {
			return fmt.Errorf("dialing ip camera %s: %w", ip.Name, err)
		}
		closers = append(closers, udpLink.Close)
		cameraID := -(ip.Index + 1)
		ctrl.AddIPCamera(cameraID, udpLink)
		logger.Info("ip camera attached", slog.String("name", ip.Name), slog.String("addr", addr))
	}

	if cfg.ViscaSerial.Port != "" {
		ctx, cancel := context.WithTimeout(context.Background(), bringUpTimeout)
		err := ctrl.BringUp(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("bring-up: %w", err)
		}
	}

	ctrl.Start()
	if cfg.ViscaSerial.Port != "" {
		ctrl.QueueInquireAll()
	}

	var passthroughServers []*passthrough.Server
	if cfg.ViscaServer.BasePort != 0 {
		for i := 1; i <= visca.MaxChainAddress; i++ {
			addr := fmt.Sprintf(":%d", cfg.ViscaServer.BasePort+i-1)
			srv, err := passthrough.Listen(ctrl, i, addr, logger)
			if err != nil {
				logger.Warn("passthrough listener skipped", slog.Int("camera", i), slog.Any("error", err))
				continue
			}
			passthroughServers = append(passthroughServers, srv)
			go func(s *passthrough.Server, cameraID int) {
				if err := s.Serve(); err != nil {
					logger.Debug("passthrough listener stopped", slog.Int("camera", cameraID), slog.Any("error", err))
				}
			}(srv, i)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", hub.ServeWS)
	debugSrv := &http.Server{Addr: debugAddr, Handler: mux}
	go func() {
		if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("debug http server failed", slog.Any("error", err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = debugSrv.Shutdown(shutdownCtx)

	for _, srv := range passthroughServers {
		_ = srv.Close()
	}
	ctrl.Stop()
	for _, closeFn := range closers {
		_ = closeFn()
	}
	return nil
}
