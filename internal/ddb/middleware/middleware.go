package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
)

type Middleware struct {
	log *zap.Logger
}

func NewMiddleware() *Middleware {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to instantiate middleware")
	}

	return &Middleware{
		log: logger,
	}
}

// LogHandler prints the provided information using the logger, stamping the
// request id from the context when present.
func (m *Middleware) LogHandler(ctx context.Context, msg string, args ...interface{}) {
	fields := convertToZapFields(args...)
	if rid, ok := ctx.Value(constants.CliRequestId).(string); ok {
		fields = append(fields, zap.String(constants.LogRequestIdKey, rid))
	}
	m.log.Info(msg, fields...)
}

func (m *Middleware) LogInfo(message string) {
	m.log.Info(message)
}

func (m *Middleware) LogWarn(ctx context.Context, msg string, args ...interface{}) {
	fields := convertToZapFields(args...)
	if rid, ok := ctx.Value(constants.CliRequestId).(string); ok {
		fields = append(fields, zap.String(constants.LogRequestIdKey, rid))
	}
	m.log.Warn(msg, fields...)
}

// LogError prints the provided error using the logger
func (m *Middleware) LogError(message string, err error) {
	m.log.Error(message, zap.Error(err))
}

func (m *Middleware) LogFatal(message string, err error) {
	m.log.Fatal(message, zap.Error(err))
}

func convertToZapFields(args ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0)
	if len(args)%2 != 0 {
		// If the number of arguments is odd, ignore the last one
		args = args[:len(args)-1]
	}

	for i := 0; i < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}

	return fields
}
