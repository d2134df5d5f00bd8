package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "arbor"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	sequencedFlagName     = "sequenced"
	workersFlagName       = "workers"
	timeoutFlagName       = "timeout"
	failOnFocusedFlagName = "fail-on-focused"
	allowDuplicatesName   = "allow-duplicates"
	filterFlagName        = "filter"
	tuiFlagName           = "tui"
	verboseFlagName       = "verbose"
	locationsFlagName     = "locations"
	reportFlagName        = "report"
	journalFlagName       = "journal"
	logFileFlagName       = "log-file"
	logVerboseFlagName    = "log-verbose"

	sequencedConfigKey       = "run.sequenced"
	workersConfigKey         = "run.workers"
	timeoutConfigKey         = "run.timeout"
	failOnFocusedConfigKey   = "run.fail_on_focused"
	allowDuplicatesConfigKey = "run.allow_duplicate_names"
	filterConfigKey          = "run.filter"
	tuiConfigKey             = "output.tui"
	verboseConfigKey         = "output.verbose"
	locationsConfigKey       = "output.summary_location"
	reportConfigKey          = "report.yaml"
	journalConfigKey         = "report.journal"

	defaultSequenced = false
	defaultWorkers   = 0
	defaultTimeout   = "0s"
	defaultTUI       = tuiAuto

	tuiAuto   = "auto"
	tuiAlways = "always"
	tuiNever  = "never"

	envPrefix = "ARBOR"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".arbor.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	initConfig()
}

// initConfig points viper at arbor.yaml and ARBOR_* variables and loads defaults.
func initConfig() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		slog.Warn("Failed to read config file", "path", viper.ConfigFileUsed(), "error", err)
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(sequencedConfigKey, defaultSequenced)
	viper.SetDefault(workersConfigKey, defaultWorkers)
	viper.SetDefault(timeoutConfigKey, defaultTimeout)
	viper.SetDefault(failOnFocusedConfigKey, false)
	viper.SetDefault(allowDuplicatesConfigKey, false)
	viper.SetDefault(filterConfigKey, []string{})

	viper.SetDefault(tuiConfigKey, defaultTUI)
	viper.SetDefault(verboseConfigKey, false)
	viper.SetDefault(locationsConfigKey, false)

	viper.SetDefault(reportConfigKey, "")
	viper.SetDefault(journalConfigKey, "")

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs a rotating file logger as the slog default.
//
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// useTUI resolves the output.tui setting against whether stdout is a terminal.
func useTUI(mode string, tty bool) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case tuiAlways, "true", "on", "yes":
		return true
	case tuiNever, "false", "off", "no":
		return false
	default:
		return tty
	}
}
