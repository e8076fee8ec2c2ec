// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem. A single backend logger is created and all subsystem
// loggers created from it will write to the backend. When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file. This must be performed early during application startup by calling
// InitLogRotators.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	// The backend must not be used before the log rotator has been initialized,
	// or data races and/or nil pointer dereferences will occur.
	backendLog = btclog.NewBackend(logWriter{})

	// LogRotator is the logging output. It should be closed on application
	// shutdown.
	LogRotator *rotator.Rotator

	reachLog  = backendLog.Logger(SubsystemTags.REACH)
	gdagLog   = backendLog.Logger(SubsystemTags.GDAG)
	diffLog   = backendLog.Logger(SubsystemTags.DIFF)
	stateLog  = backendLog.Logger(SubsystemTags.STATE)
	schedLog  = backendLog.Logger(SubsystemTags.SCHED)
	mpoolLog  = backendLog.Logger(SubsystemTags.MPOOL)
	txvlLog   = backendLog.Logger(SubsystemTags.TXVL)
	wireLog   = backendLog.Logger(SubsystemTags.WIRE)
	storLog   = backendLog.Logger(SubsystemTags.STOR)
	nodeLog   = backendLog.Logger(SubsystemTags.NODE)
	cnfgLog   = backendLog.Logger(SubsystemTags.CNFG)

	initiated = false
)

// SubsystemTags is an enum of all subsystem tags, one per component of spec
// §2's A→F data flow plus the ambient node/config subsystems.
var SubsystemTags = struct {
	REACH,
	GDAG,
	DIFF,
	STATE,
	SCHED,
	MPOOL,
	TXVL,
	WIRE,
	STOR,
	NODE,
	CNFG string
}{
	REACH: "REACH",
	GDAG:  "GDAG",
	DIFF:  "DIFF",
	STATE: "STATE",
	SCHED: "SCHED",
	MPOOL: "MPOOL",
	TXVL:  "TXVL",
	WIRE:  "WIRE",
	STOR:  "STOR",
	NODE:  "NODE",
	CNFG:  "CNFG",
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	SubsystemTags.REACH: reachLog,
	SubsystemTags.GDAG:  gdagLog,
	SubsystemTags.DIFF:  diffLog,
	SubsystemTags.STATE: stateLog,
	SubsystemTags.SCHED: schedLog,
	SubsystemTags.MPOOL: mpoolLog,
	SubsystemTags.TXVL:  txvlLog,
	SubsystemTags.WIRE:  wireLog,
	SubsystemTags.STOR:  storLog,
	SubsystemTags.NODE:  nodeLog,
	SubsystemTags.CNFG:  cnfgLog,
}

// InitLogRotators initializes the logging rotator to write logs to logFile
// and create roll files in the same directory. It must be called before the
// package-global log rotator variable is used.
func InitLogRotators(logFile string) {
	initiated = true
	LogRotator = initLogRotator(logFile)
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level. It can be used to initialize the logging system.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	sort.Strings(subsystems)
	return subsystems
}

// Get returns a logger of a specific subsystem.
func Get(tag string) (logger btclog.Logger, ok bool) {
	logger, ok = subsystemLoggers[tag]
	return
}

// ParseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid.
func ParseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			str := "The specified debug level [%s] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		SetLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "The specified debug level contains an invalid " +
				"subsystem/level pair [%s]"
			return fmt.Errorf(str, logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := Get(subsysID); !exists {
			str := "The specified subsystem [%s] is invalid -- " +
				"supported subsystems %s"
			return fmt.Errorf(str, subsysID, strings.Join(SupportedSubsystems(), ", "))
		}

		if !validLogLevel(logLevel) {
			str := "The specified debug level [%s] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		SetLogLevel(subsysID, logLevel)
	}

	return nil
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace":
		fallthrough
	case "debug":
		fallthrough
	case "info":
		fallthrough
	case "warn":
		fallthrough
	case "error":
		fallthrough
	case "critical":
		return true
	}
	return false
}
