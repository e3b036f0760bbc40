// Package main is the entry point for the Uniswap V3 swap volume dashboard.
// It loads configuration, starts the services and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/app"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/config"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/tabs/history"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/tabs/tokens"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns stdout, so logs go to a file.
	logCloser, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	logger.Info("Starting", "version", version.GetVersion(), "subgraph_network", cfg.SubgraphNetwork,
		"window", cfg.SwapWindow, "bucket", cfg.BucketSize)

	// Starts polling the subgraph immediately
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		tokens.New(state),
		history.New(state, svcManager),
		info.New(state, cfg, svcManager),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("Stopped")
	return nil
}

func printUsage() {
	fmt.Println(`Uniswap Dashboard TUI - live Uniswap V3 swap volume

Usage:
  udt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Dashboard, Tokens, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  v               Toggle line/bar chart (Dashboard)
  t               Cycle history range (History)
  c               Copy selection (Tokens, Info)
  r               Refresh now
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SUBGRAPH_API_KEY        The Graph gateway API key
  SUBGRAPH_NETWORK        Subgraph network (default: ethereum)
  SUBGRAPH_URL            Full subgraph endpoint, overrides network and key
  SWAP_REFRESH_INTERVAL   Polling interval (default: 60s)
  SWAP_WINDOW             Dashboard window (default: 24h)
  BUCKET_SIZE             Aggregation interval (default: 30m)
  SWAP_FETCH_LIMIT        Maximum swaps per refresh (default: 5000)
  RECENT_SWAPS_COUNT      Recent swaps kept in the snapshot (default: 5)
  RETENTION_DAYS          Days of swaps kept in the database (default: 30)
  DATABASE_PATH           SQLite database path
  ALERTS_PATH             Alert rules JSON file path
  LOG_PATH                Log file path
  LOG_LEVEL               debug, info, warn or error (default: info)

Configuration:
  The application looks for a .env file in the following locations:
  - Current directory
  - ~/.config/uniswap-tui/.env
  - ~/.uniswap/.env

For more information, visit: https://github.com/j-veylop/uniswap-dashboard-tui`)
}
