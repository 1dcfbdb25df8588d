package notice

import (
	"context"

	"github.com/gen2brain/beeep"

	"github.com/julianstephens/foodmood/internal/constants"
)

var (
	beeepNotify = func(title, message string) error { return beeep.Notify(title, message, "") }
	beeepAlert  = func(title, message string) error { return beeep.Alert(title, message, "") }
)

// Desktop shows notices as native desktop notifications. Errors use an
// alert so they make a sound.
type Desktop struct{}

func (Desktop) Send(_ context.Context, n Notice) error {
	title := n.Title
	if title == "" {
		title = constants.AppName
	}
	if n.Level == LevelError {
		return beeepAlert(title, n.Text)
	}
	return beeepNotify(title, n.Text)
}

// NewSink builds the configured sink chain; tray first, desktop second.
// It returns nil when both are off.
func NewSink(tray, desktop bool) Sink {
	var c Chain
	if tray {
		c = append(c, NewTray())
	}
	if desktop {
		c = append(c, Desktop{})
	}
	if len(c) == 0 {
		return nil
	}
	return c
}
