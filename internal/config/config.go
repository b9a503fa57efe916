// Package config loads the application options from the command line and an
// optional ini configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	flags "github.com/jessevdk/go-flags"
)

const (
	AppName = "mycket"

	defaultConfigFilename = AppName + ".conf"
	defaultDBFilename     = AppName + ".db"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"

	// LogFilename is the name of the rotated log file inside LogDir.
	LogFilename = AppName + ".log"
)

// Config defines the configuration options for mycket.
//
// See Load for details on the configuration load process.
type Config struct {
	AppDir      string `short:"A" long:"appdata" description:"Path to application data directory"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DBPath      string `long:"db" description:"Path to the SQLite database"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	ExportDir   string `long:"exportdir" description:"Default directory for report and invoice exports"`
}

// LogFile is the full path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.LogDir, LogFilename)
}

// DefaultAppDir returns <user config dir>/mycket.
func DefaultAppDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName)
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Default returns the configuration used when no options are given.
func Default() Config {
	appDir := DefaultAppDir()
	return Config{
		AppDir:     appDir,
		ConfigFile: filepath.Join(appDir, defaultConfigFilename),
		DBPath:     filepath.Join(appDir, defaultDBFilename),
		LogDir:     filepath.Join(appDir, defaultLogDirname),
		DebugLevel: defaultLogLevel,
		ExportDir:  defaultExportDir(),
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// Load parses args on top of the defaults and the configuration file.
//
// The configuration proceeds as follows:
//  1. Start with a default config
//  2. Pre-parse the command line to check for an alternative app dir or
//     config file
//  3. Load the configuration file overwriting defaults with any specified
//     options
//  4. Parse CLI options and overwrite/add any specified options
//
// A missing configuration file is not an error. Help requests are returned
// as a *flags.Error of type flags.ErrHelp carrying the usage text.
func Load(args []string) (*Config, []string, error) {
	def := Default()
	cfg := def

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := preParser.ParseArgs(args); err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
	}
	if preCfg.ShowVersion {
		cfg.ShowVersion = true
		return &cfg, nil, nil
	}

	// A different app dir moves every path that was left at its default.
	if preCfg.AppDir != def.AppDir {
		cfg.AppDir = cleanAndExpandPath(preCfg.AppDir)
		cfg.ConfigFile = filepath.Join(cfg.AppDir, defaultConfigFilename)
		cfg.DBPath = filepath.Join(cfg.AppDir, defaultDBFilename)
		cfg.LogDir = filepath.Join(cfg.AppDir, defaultLogDirname)
	}
	if preCfg.ConfigFile != def.ConfigFile {
		cfg.ConfigFile = preCfg.ConfigFile
	}
	cfg.ConfigFile = cleanAndExpandPath(cfg.ConfigFile)

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	err := flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, nil, fmt.Errorf("parse config file %s: %w", cfg.ConfigFile, err)
		}
	}

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	cfg.AppDir = cleanAndExpandPath(cfg.AppDir)
	cfg.DBPath = cleanAndExpandPath(cfg.DBPath)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.ExportDir = cleanAndExpandPath(cfg.ExportDir)

	if _, _, err := ParseDebugLevel(cfg.DebugLevel, nil); err != nil {
		return nil, nil, err
	}
	return &cfg, remaining, nil
}

// ValidLogLevel returns whether or not logLevel is a valid debug log level.
func ValidLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

// ParseDebugLevel splits a --debuglevel value. A bare level applies to every
// subsystem and is returned as all; otherwise perSubsystem maps each named
// subsystem to its level. When subsystems is non-nil, unknown subsystem names
// are rejected.
func ParseDebugLevel(debugLevel string, subsystems []string) (all string, perSubsystem map[string]string, err error) {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !ValidLogLevel(debugLevel) {
			return "", nil, fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}
		return debugLevel, nil, nil
	}

	known := make(map[string]bool, len(subsystems))
	for _, s := range subsystems {
		known[s] = true
	}
	perSubsystem = make(map[string]string)
	for _, pair := range strings.Split(debugLevel, ",") {
		subsysID, level, ok := strings.Cut(pair, "=")
		if !ok {
			return "", nil, fmt.Errorf("the specified debug level contains an "+
				"invalid subsystem/level pair [%v]", pair)
		}
		if subsystems != nil && !known[subsysID] {
			sorted := append([]string(nil), subsystems...)
			sort.Strings(sorted)
			return "", nil, fmt.Errorf("the specified subsystem [%v] is invalid -- "+
				"supported subsystems %v", subsysID, sorted)
		}
		if !ValidLogLevel(level) {
			return "", nil, fmt.Errorf("the specified debug level [%v] is invalid", level)
		}
		perSubsystem[subsysID] = level
	}
	return "", perSubsystem, nil
}
