package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/sadopc/mycket/internal/config"
	"github.com/sadopc/mycket/internal/export"
	"github.com/sadopc/mycket/internal/invoice"
	"github.com/sadopc/mycket/internal/report"
	"github.com/sadopc/mycket/internal/store"
	"github.com/sadopc/mycket/internal/timer"
)

// logWriter writes to the log rotator only. The terminal belongs to the TUI.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// Loggers per subsystem.  A single backend logger is created and all subsystem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is closed on shutdown.
	logRotator *rotator.Rotator

	log       = backendLog.Logger("MYCK")
	storeLog  = backendLog.Logger("STOR")
	timerLog  = backendLog.Logger("TIMR")
	reportLog = backendLog.Logger("RPRT")
	invLog    = backendLog.Logger("INVC")
	exportLog = backendLog.Logger("EXPT")
)

func init() {
	store.UseLogger(storeLog)
	timer.UseLogger(timerLog)
	report.UseLogger(reportLog)
	invoice.UseLogger(invLog)
	export.UseLogger(exportLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"MYCK": log,
	"STOR": storeLog,
	"TIMR": timerLog,
	"RPRT": reportLog,
	"INVC": invLog,
	"EXPT": exportLog,
}

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for id := range subsystemLoggers {
		subsystems = append(subsystems, id)
	}
	sort.Strings(subsystems)
	return subsystems
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

func setLogLevels(logLevel string) {
	for id := range subsystemLoggers {
		setLogLevel(id, logLevel)
	}
}

// parseAndSetDebugLevels applies a --debuglevel value to the subsystem
// loggers.
func parseAndSetDebugLevels(debugLevel string) error {
	all, per, err := config.ParseDebugLevel(debugLevel, supportedSubsystems())
	if err != nil {
		return err
	}
	if all != "" {
		setLogLevels(all)
		return nil
	}
	for id, level := range per {
		setLogLevel(id, level)
	}
	return nil
}
