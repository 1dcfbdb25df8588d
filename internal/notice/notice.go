// Package notice turns outcomes into short, auto-dismissing messages and
// delivers them to optional desktop sinks.
package notice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one transient message.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Duration is how long the notice stays on screen.
func (n Notice) Duration() time.Duration {
	if n.Level == LevelError {
		return constants.NoticeErrorDuration
	}
	return constants.NoticeSuccessDuration
}

func (n Notice) String() string {
	if n.Title == "" {
		return n.Text
	}
	return n.Title + ": " + n.Text
}

func Success(format string, args ...interface{}) Notice {
	return Notice{Level: LevelSuccess, Text: fmt.Sprintf(format, args...)}
}

func Info(format string, args ...interface{}) Notice {
	return Notice{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func Error(format string, args ...interface{}) Notice {
	return Notice{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}

// FromError maps err to the notice the user sees.
func FromError(err error) Notice {
	switch errors.KindOf(err) {
	case errors.KindFutureDate:
		return Notice{Level: LevelError, Title: "Not allowed", Text: "Cannot edit future dates"}
	case errors.KindValidation:
		return Notice{Level: LevelError, Title: "Invalid input", Text: validationText(err)}
	case errors.KindStorage:
		return Notice{Level: LevelError, Title: "Error", Text: "Error saving entry"}
	}
	if err == nil {
		return Notice{}
	}
	return Notice{Level: LevelError, Title: "Error", Text: err.Error()}
}

func validationText(err error) string {
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return strings.TrimSpace(err.Error())
}

// Sink delivers a notice outside the app window.
type Sink interface {
	Send(ctx context.Context, n Notice) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notice) error

func (f SinkFunc) Send(ctx context.Context, n Notice) error { return f(ctx, n) }

// Chain tries sinks in order and stops at the first that succeeds.
type Chain []Sink

func (c Chain) Send(ctx context.Context, n Notice) error {
	if len(c) == 0 {
		return nil
	}
	var errs []string
	for _, s := range c {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		return nil
	}
	return fmt.Errorf("no notification sink succeeded: %s", strings.Join(errs, "; "))
}

// Deliver sends n through sink and only logs a failure.
func Deliver(ctx context.Context, sink Sink, n Notice) {
	if sink == nil {
		return
	}
	if err := sink.Send(ctx, n); err != nil {
		logger.Debug("Notification not delivered", "error", err, "text", n.Text)
	}
}
