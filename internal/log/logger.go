package log

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type Slog struct {
	l *slog.Logger
}

func New() *Slog {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Slog{l: slog.New(h)}
}

func (s *Slog) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// Zap は zap.SugaredLogger を Logger として使うためのアダプタです。
type Zap struct {
	l *zap.SugaredLogger
}

// NewZap は JSON 出力の zap ロガーを作成します。LOG_LEVEL=debug でデバッグ出力を有効にします。
func NewZap() (*Zap, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Zap{l: z.Sugar()}, nil
}

// FromZap は既存の zap.Logger をラップします。
func FromZap(z *zap.Logger) *Zap { return &Zap{l: z.Sugar()} }

func (z *Zap) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *Zap) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *Zap) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }

// Sync はバッファされたログを書き出します。
func (z *Zap) Sync() error { return z.l.Sync() }

// FromEnv は LOG_FORMAT に応じてロガーを選択します (text | zap)。
func FromEnv() (Logger, error) {
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "zap") {
		return NewZap()
	}
	return New(), nil
}

// Nop は何も出力しないロガーです。
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Error(string, ...any) {}
