// Command ctap2key runs a loopback simulator for the roottap CTAP2
// authenticator core: a websocket host (serve), a companion-app pairing
// QR code (pair), and a raw CBOR payload pretty-printer (inspect). It
// follows the teacher's cmd/ctap2-hybrid/main.go layout: flag-based
// configuration, a log/latest.log + stdout multi-writer, and signal-driven
// graceful shutdown.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/roottap/firmware-core/internal/core"
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2boundary"
	"github.com/roottap/firmware-core/internal/inspect"
	"github.com/roottap/firmware-core/internal/pairing"
	"github.com/roottap/firmware-core/internal/simhost"
)

var cliLog = logrus.New()

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sessionID := uuid.New().String()
	if err := setupLogFile(sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up log file: %v\n", err)
		os.Exit(1)
	}
	cliLog.WithField("session", sessionID).Info("ctap2key starting")

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "pair":
		err = runPair(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		cliLog.WithField("status", "error").Error(err)
		os.Exit(1)
	}
	cliLog.WithField("status", "ok").Info("ctap2key finished")
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ctap2key <serve|pair|inspect> [flags]")
}

// logFileHandle, setupLogFile mirror cmd/ctap2-hybrid/main.go's
// log/latest.log + stdout multi-writer, driving logrus's output instead
// of the standard logger.
var logFileHandle *os.File

func setupLogFile(sessionID string) error {
	logDir := "log"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "latest.log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	logFileHandle = file

	cliLog.SetOutput(io.MultiWriter(file, os.Stdout))
	cliLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cliLog.WithField("session", sessionID).Infof("log file: %s", logPath)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:8089", "websocket listen address")
	presenceMode := fs.String("presence", "auto", "presence gate: auto or prompt")
	presenceTimeout := fs.Duration("presence-timeout", 30*time.Second, "presence prompt timeout")
	passphrase := fs.String("seed", "", "device seed passphrase; empty uses crypto/rand")
	statefile := fs.String("statefile", "ctap2key.state", "persisted credential store path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	adapter, st := ctap2boundary.Init(make([]byte, ctap2boundary.CtxSize()))
	if st != ctap2.StatusOK {
		return fmt.Errorf("init context: %v", st)
	}

	if blob, err := os.ReadFile(*statefile); err == nil {
		if st := adapter.LoadState(blob); st != ctap2.StatusOK {
			return fmt.Errorf("load state from %s: %v", *statefile, st)
		}
		cliLog.WithField("cred_slot", "restored").Infof("loaded persisted state from %s", *statefile)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read statefile: %w", err)
	}

	var rng core.RandomSource
	if *passphrase != "" {
		seed, err := simhost.DeriveDeviceSeed([]byte(*passphrase))
		if err != nil {
			return err
		}
		rng = simhost.NewSeededSource(seed)
	} else {
		rng = simhost.CSPRNGSource{}
	}

	var gate core.PresenceGate
	switch *presenceMode {
	case "auto":
		gate = core.AlwaysApproveGate{}
	case "prompt":
		gate = simhost.NewPromptGate(os.Stdin, os.Stdout, *presenceTimeout)
	default:
		return fmt.Errorf("unknown -presence mode %q", *presenceMode)
	}

	srv := simhost.NewServer(adapter, rng, gate)
	httpServer := &http.Server{Addr: *listen, Handler: srv}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		cliLog.Info("shutting down, persisting state")
		if dirty, _ := adapter.IsDirty(); dirty {
			out := make([]byte, ctap2boundary.PersistBlobSize())
			if n, st := adapter.SaveState(out); st == ctap2.StatusOK {
				if err := os.WriteFile(*statefile, out[:n], 0o600); err != nil {
					cliLog.WithField("status", "error").Errorf("save state: %v", err)
				} else {
					adapter.MarkClean()
				}
			}
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	cliLog.WithField("cmd", "serve").Infof("listening on %s", *listen)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func runPair(args []string) error {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	code, err := pairing.Generate(pairing.DeviceAAGUID)
	if err != nil {
		return err
	}

	cliLog.WithField("cmd", "pair").Infof("pairing nonce: %s", uuid.NewSHA1(uuid.Nil, code.Nonce[:]))
	fmt.Println(code.Art())
	fmt.Println(code.URI)
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	hexInput := fs.String("hex", "", "hex-encoded CBOR payload to pretty-print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *hexInput == "" {
		return fmt.Errorf("inspect: -hex is required")
	}

	raw, err := hex.DecodeString(*hexInput)
	if err != nil {
		return fmt.Errorf("inspect: decode hex: %w", err)
	}

	out, err := inspect.Pretty(raw)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
