package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tilefall/internal/config"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
	"github.com/vovakirdan/tilefall/internal/platform/tui"
	"github.com/vovakirdan/tilefall/internal/platform/watch"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagWatchAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tilefall SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session with the mode picker menu.
The "Shared Table" entry creates or joins a board that several players
clear together; others can watch. With --watch, shared tables are also
streamed as JSON over WebSocket at /ws/{code}.

Host key handling:
  - Uses the key at --host-key, generating it on first start

Examples:
  tilefall serve                           # Listen on :23234
  tilefall serve --ssh :2222               # Listen on port 2222
  tilefall serve --host-key ./my_host_key  # Use specific host key
  tilefall serve --watch :8080             # Also serve the watch feed

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "~/.tilefall/host_key", "Path to host key file (generated if missing)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagWatchAddr, "watch", "", "Address for the WebSocket watch feed (disabled if empty)")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tilefall",
	})

	hostKey, err := expandHome(flagHostKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(hostKey), 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create host key directory: %v\n", err)
		os.Exit(1)
	}

	coordCfg := multiplayer.DefaultCoordinatorConfig()
	settings, err := tableSettings(coordCfg.MaxBoardSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	defer closeStore(store)

	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(coordCfg, sessions)
	if store != nil {
		coord.SetJournal(store)
	}
	coord.SetLogger(logger.WithPrefix("tables"))
	coord.Start()
	defer coord.Stop()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = hostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.TickRate = flagFPS
	cfg.Table = settings

	server, err := tui.NewSSHServer(cfg, store, coord, sessions, logger.WithPrefix("ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.ListenAndServe(gctx) })

	if flagWatchAddr != "" {
		watchServer := watch.NewServer(coord, sessions, logger.WithPrefix("watch"))
		g.Go(func() error { return watchServer.ListenAndServe(gctx, flagWatchAddr) })
	}

	fmt.Printf("Starting tilefall SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port(cfg.Address))
	if flagWatchAddr != "" {
		fmt.Printf("Watch shared tables at ws://localhost:%s/ws/<code>\n", port(flagWatchAddr))
	}
	fmt.Println("Press Ctrl+C to stop")

	// One server failing cancels gctx and takes the other down
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		coord.Stop()
		closeStore(store)
		os.Exit(1)
	}
}

// tableSettings sizes shared tables from the config and global flags.
// Boards wider or taller than maxSize are refused by the coordinator.
func tableSettings(maxSize int) (tui.TableSettings, error) {
	tc, err := config.LoadTilefall(flagConfig)
	if err != nil {
		return tui.TableSettings{}, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return tui.TableSettings{}, err
	}
	config.ApplyTilefallPreset(&tc, preset)
	if flagWidth > 0 {
		tc.Board.Width = flagWidth
	}
	if flagHeight > 0 {
		tc.Board.Height = flagHeight
	}
	if err := tc.Validate(); err != nil {
		return tui.TableSettings{}, err
	}
	if tc.Board.Width > maxSize || tc.Board.Height > maxSize {
		return tui.TableSettings{}, fmt.Errorf("shared tables allow boards up to %dx%d, got %dx%d",
			maxSize, maxSize, tc.Board.Width, tc.Board.Height)
	}
	return tui.TableSettings{
		Width:     tc.Board.Width,
		Height:    tc.Board.Height,
		Colours:   tc.Colours,
		CellWidth: tc.Display.CellWidth,
	}, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// port returns the port part of a listen address.
func port(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return addr
}
