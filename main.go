package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	flags "github.com/jessevdk/go-flags"

	"github.com/sadopc/mycket/internal/config"
	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
	"github.com/sadopc/mycket/internal/tui"
)

const appVersion = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := config.Load(os.Args[1:])
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", config.AppName,
			appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	}

	if err := initLogRotator(cfg.LogFile()); err != nil {
		return err
	}
	defer logRotator.Close()
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	log.Infof("%s version %s", config.AppName, appVersion)
	log.Infof("Database: %s", cfg.DBPath)

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	engine := timer.New(s)
	if _, err := engine.Recover(); err != nil {
		return err
	}

	app := tui.NewApp(s, engine, tui.Options{ExportDir: cfg.ExportDir})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Errorf("TUI exited: %v", err)
		return err
	}
	log.Infof("Shutdown")
	return nil
}
