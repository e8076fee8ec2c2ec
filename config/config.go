// Package config defines the node's CLI/config-file surface, grounded on
// the teacher's jessevdk/go-flags-based config structs
// (kasparov/kasparovd/config/config.go, mining/simulator/config.go):
// one struct with `long`/`description` tags, parsed once at startup and
// exposed through an ActiveConfig accessor.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/tos-network/tosd/consensustypes"
)

const (
	defaultDataDirname = "data"
	defaultLogFilename = "tosd.log"
)

var activeConfig *Config

// ActiveConfig returns the configuration parsed by Parse.
func ActiveConfig() *Config {
	return activeConfig
}

// Config holds every CLI flag / config-file option the node accepts.
type Config struct {
	AppDir   string `long:"appdir" description:"Directory to store data and logs"`
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}" default:"info"`

	ChainID                     uint8  `long:"chainid" description:"Chain ID this node enforces on transactions"`
	ChainIDActivationTopoheight uint64 `long:"chainid-activation" description:"Topoheight at which chain_id enforcement activates"`
	MinGas                      uint64 `long:"mingas" description:"Minimum gas offer accepted for scheduled execution registration"`
	BlockGasLimit               uint64 `long:"blockgaslimit" description:"Total gas budget dispatched per block"`
	MaxExecutionsPerBlock       int    `long:"maxexecsperblock" description:"Maximum scheduled executions dispatched per block"`

	StorageDir   string `long:"storagedir" description:"Directory for the leveldb chain-state store"`
	ScheduledDir string `long:"scheduleddir" description:"Directory for the bbolt scheduled-execution queue store"`
}

// Parse parses CLI arguments into ActiveConfig. No config file is read.
func Parse() (*Config, error) {
	preCfg := &Config{}
	parser := flags.NewParser(preCfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	applyDefaults(preCfg)

	if err := os.MkdirAll(preCfg.AppDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "creating app directory %s", preCfg.AppDir)
	}

	activeConfig = preCfg
	return activeConfig, nil
}

// applyDefaults fills in AppDir/StorageDir/ScheduledDir when the caller
// (CLI or config file) left them blank.
func applyDefaults(cfg *Config) {
	if cfg.AppDir == "" {
		cfg.AppDir = defaultAppDir()
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = filepath.Join(cfg.AppDir, defaultDataDirname, "chainstate")
	}
	if cfg.ScheduledDir == "" {
		cfg.ScheduledDir = filepath.Join(cfg.AppDir, defaultDataDirname, "scheduled")
	}
}

// LogFile returns the path logger.InitLogRotators should write to.
func (c *Config) LogFile() string {
	return filepath.Join(c.AppDir, "logs", defaultLogFilename)
}

// Params builds the consensustypes.Params this node enforces from the
// parsed configuration.
func (c *Config) Params() consensustypes.Params {
	return consensustypes.Params{
		ChainID:                     consensustypes.ChainID(c.ChainID),
		ChainIDActivationTopoheight: c.ChainIDActivationTopoheight,
		MinGas:                      c.MinGas,
		BlockGasLimit:               c.BlockGasLimit,
		MaxExecutionsPerBlock:       c.MaxExecutionsPerBlock,
	}
}

func defaultAppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fmt.Sprintf(".%s", "tosd"))
	}
	return filepath.Join(home, fmt.Sprintf(".%s", "tosd"))
}
