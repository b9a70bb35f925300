package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(consoleWriter(os.Stdout)).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

// Init sets up the console logger and, unless artifacts are disabled, a
// rotating log file under CONFIG_FOLDER/logs.
func Init() {
	writers := []io.Writer{consoleWriter(os.Stdout)}

	folder := viper.GetString(constants.ConfigFolder)
	if folder != "" && !viper.GetBool(constants.NoSave) {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(folder, "logs", constants.LogFileName),
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	level := zerolog.InfoLevel
	if viper.GetBool(constants.Verbose) {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}

// SetOutput redirects all logs to w; used by tests.
func SetOutput(w io.Writer) {
	logger = zerolog.New(w).With().Timestamp().Logger()
}

func Info(v ...any) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}

// FileLogger writes content as indented JSON to CONFIG_FOLDER/<fileName><fileExtension>.
func FileLogger(content any, fileName, fileExtension string) error {
	if viper.GetBool(constants.NoSave) {
		return nil
	}

	folder := viper.GetString(constants.ConfigFolder)
	if folder == "" {
		folder = os.TempDir()
	}

	return FileLoggerWithPath(content, filepath.Join(folder, fileName+fileExtension))
}

// FileLoggerWithPath writes content as indented JSON to path, creating parent directories.
func FileLoggerWithPath(content any, path string) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content for %s: %s", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %s", path, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %s", path, err)
	}

	return nil
}
