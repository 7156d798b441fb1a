package log

import (
	"os"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base    atomic.Pointer[zap.Logger]
	logFile atomic.Pointer[os.File]
)

func init() { base.Store(zap.NewNop()) }

// Init builds the process logger: JSON to stdout and, when file is set, to
// that file as well. Close releases the file.
func Init(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, zapcore.AddSync(f))
		if old := logFile.Swap(f); old != nil {
			_ = old.Close()
		}
	}
	l := zap.New(zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), lvl))
	Use(l)
	return l, nil
}

// Close flushes the process logger, closes the log file opened by Init and
// falls back to a no-op logger.
func Close() error {
	_ = L().Sync()
	Use(zap.NewNop())
	if f := logFile.Swap(nil); f != nil {
		return f.Close()
	}
	return nil
}

// Use replaces the process logger.
func Use(l *zap.Logger) { base.Store(l) }

// L returns the process logger for code that has no request.
func L() *zap.Logger { return base.Load() }

func write(level zapcore.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	zf := make([]zap.Field, 0, len(fields)+8)
	zf = append(zf, zap.String("action", action))
	if c != nil {
		zf = append(zf,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			zf = append(zf, zap.String("req_id", rid))
		}
		if uid, ok := c.Locals("userID").(int64); ok && uid != 0 {
			zf = append(zf, zap.Int64("user_id", uid))
		}
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	if ce := L().Check(level, action); ce != nil {
		ce.Write(zf...)
	}
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, fields)
}

// Audit records a privileged or state-changing action.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, withKind(fields, "audit"))
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, c, action, nil, withKind(fields, "security"))
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, c, action, err, fields)
}

func withKind(fields map[string]any, kind string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["kind"] = kind
	return out
}
