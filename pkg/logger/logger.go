package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var InfoLogger, FatalLogger *zap.Logger

// nop backs every logging call made before Init, so logging is never a
// panic path. Fatal still exits even through the nop logger.
var nop = zap.NewNop()

var (
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init builds the process-wide loggers. Until it runs, log calls go to a
// nop logger.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	InfoLogger = l
	FatalLogger = l
	return nil
}

func infoLogger() *zap.Logger {
	if InfoLogger == nil {
		return nop
	}
	return InfoLogger
}

func fatalLogger() *zap.Logger {
	if FatalLogger == nil {
		return nop
	}
	return FatalLogger
}

func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	infoLogger().With(
		zap.String("service", serviceName),
	).Info(msg)
}

func Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	infoLogger().With(
		zap.String("service", serviceName),
	).Warn(msg)
}

func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	infoLogger().With(
		zap.String("service", serviceName),
	).Error(msg)
}

func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fatalLogger().With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
