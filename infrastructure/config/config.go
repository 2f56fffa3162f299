package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/infrastructure/logger"
	"github.com/dynastynet/finalityd/version"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename = "finalityd.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "finalityd.log"
	defaultErrLogFilename = "finalityd_err.log"
	defaultPruneInterval  = time.Minute
	defaultStateCacheSize = 200
	minPruneInterval      = time.Second
)

var (
	// DefaultHomeDir is the default home directory for finalityd.
	DefaultHomeDir = appDataDir("finalityd")

	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// Flags defines the configuration options for finalityd.
//
// See ParseConfig for details on the configuration load process.
type Flags struct {
	ShowVersion    bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile     string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir        string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir         string        `long:"logdir" description:"Directory to log output."`
	DebugLevel     string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	PruneInterval  time.Duration `long:"pruneinterval" description:"How often finalization states below the last finalized checkpoint are pruned. Valid time units are {s, m, h}. Minimum 1 second"`
	StateCacheSize int           `long:"statecachesize" description:"Number of stored finalization states kept deserialized in memory"`
	NetworkFlags
}

// Config defines the configuration options for finalityd.
//
// See ParseConfig for details on the configuration load process.
type Config struct {
	*Flags
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// appDataDir returns the per-user directory of appName: %LOCALAPPDATA% on
// Windows, ~/Library/Application Support on macOS and ~/.appName elsewhere.
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	title := strings.ToUpper(appName[:1]) + appName[1:]
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, title)
		}
		return filepath.Join(homeDir, title)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", title)
	default:
		return filepath.Join(homeDir, "."+appName)
	}
}

// DefaultFlags returns the flag values finalityd starts from before the
// config file and the command line are applied.
func DefaultFlags() *Flags {
	return &Flags{
		ConfigFile:     defaultConfigFile,
		DataDir:        defaultDataDir,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		PruneInterval:  defaultPruneInterval,
		StateCacheSize: defaultStateCacheSize,
	}
}

// Options customizes ParseConfig for tools built on the finalityd
// configuration.
type Options struct {
	// Defaults replaces DefaultFlags.
	Defaults *Flags

	// AppOptions, if set, is parsed as an additional go-flags group named
	// AppOptionsGroup.
	AppOptions      interface{}
	AppOptionsGroup string

	// DefaultNetParams is used when no network is selected. Mainnet if nil.
	DefaultNetParams *dagconfig.Params
}

// ParseConfig parses the config using a config file and args.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence. options may be nil.
func ParseConfig(args []string, options *Options) (*Config, error) {
	if options == nil {
		options = &Options{}
	}
	cfgFlags := options.Defaults
	if cfgFlags == nil {
		cfgFlags = DefaultFlags()
	}
	defaultNetParams := options.DefaultNetParams
	if defaultNetParams == nil {
		defaultNetParams = &dagconfig.MainnetParams
	}
	addAppOptions := func(parser *flags.Parser) error {
		if options.AppOptions == nil {
			return nil
		}
		_, err := parser.AddGroup(options.AppOptionsGroup, "", options.AppOptions)
		return errors.WithStack(err)
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	err := addAppOptions(preParser)
	if err != nil {
		return nil, err
	}
	_, err = preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	// Load additional config from file. A missing config file is fine.
	parser := flags.NewParser(cfgFlags, flags.Default)
	err = addAppOptions(parser)
	if err != nil {
		return nil, err
	}
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %s\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); !ok || flagsErr.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, err
	}

	// Special show command to list supported subsystems and exit.
	if cfgFlags.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	cfg := &Config{Flags: cfgFlags}
	err = cfg.ResolveNetwork(parser, defaultNetParams)
	if err != nil {
		return nil, err
	}

	if cfg.PruneInterval < minPruneInterval {
		str := "ParseConfig: the pruneinterval option may not be less than %s -- parsed [%s]"
		err := errors.Errorf(str, minPruneInterval, cfg.PruneInterval)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}
	if cfg.StateCacheSize <= 0 {
		err := errors.Errorf("ParseConfig: statecachesize must be positive -- parsed [%d]", cfg.StateCacheSize)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	// Namespace the data and log directories per network.
	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir), cfg.NetParams().Name)
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir), cfg.NetParams().Name)
	return cfg, nil
}

// InitLog starts logging to the log files in LogDir, along with any
// writers already added to logger.BackendLog, and applies DebugLevel.
func (cfg *Config) InitLog() error {
	// After log rotation has been initialized, the logger variables may be
	// used.
	logger.InitLog(filepath.Join(cfg.LogDir, defaultLogFilename), filepath.Join(cfg.LogDir, defaultErrLogFilename))

	// Parse, validate, and set debug log level(s).
	err := logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		return errors.Wrap(err, "InitLog")
	}
	return nil
}
