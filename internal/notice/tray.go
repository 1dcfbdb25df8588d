package notice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/foodmood/internal/constants"
)

// ErrNoListener means no live process has registered for notices.
var ErrNoListener = errors.New("no notice listener registered")

var findProcessFunc = ps.FindProcess

// Tray forwards notices to a local listener such as a tray applet.
//
// A listener registers by writing constants.NoticeListenerFile into the
// config directory:
//
//	{"port": 48123, "pid": 4242, "token": "..."}
//
// Each notice is POSTed as a Message to http://127.0.0.1:<port>/notice
// with "Authorization: Bearer <token>". Any 2xx reply counts as delivered.
// A file whose pid is no longer running is stale and gets removed.
type Tray struct {
	// Dir holds the listener file. Empty means the default config dir.
	Dir    string
	Client *http.Client
}

// Listener is the registration a listener file carries.
type Listener struct {
	Port  int    `json:"port"`
	PID   int    `json:"pid"`
	Token string `json:"token"`
}

// Message is the body posted for each notice.
type Message struct {
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	Level      string `json:"level"`
	DurationMs int64  `json:"duration_ms"`
}

func NewTray() *Tray {
	return &Tray{Client: &http.Client{}}
}

func (t *Tray) Send(ctx context.Context, n Notice) error {
	l, err := t.listener()
	if err != nil {
		return err
	}
	return t.post(ctx, l, Message{
		Title:      n.Title,
		Text:       n.Text,
		Level:      n.Level.String(),
		DurationMs: n.Duration().Milliseconds(),
	})
}

func (t *Tray) path() (string, error) {
	dir := t.Dir
	if dir == "" {
		expanded, err := homedir.Expand(constants.DefaultConfigDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve config dir: %w", err)
		}
		dir = expanded
	}
	return filepath.Join(dir, constants.NoticeListenerFile), nil
}

// listener reads and checks the registration, dropping it when its
// process has exited.
func (t *Tray) listener() (Listener, error) {
	path, err := t.path()
	if err != nil {
		return Listener{}, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Listener{}, ErrNoListener
	}
	if err != nil {
		return Listener{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var l Listener
	if err := json.Unmarshal(raw, &l); err != nil {
		return Listener{}, fmt.Errorf("malformed listener file: %w", err)
	}
	switch {
	case l.Port < 1 || l.Port > 65535:
		return Listener{}, fmt.Errorf("listener port %d is outside 1-65535", l.Port)
	case l.PID <= 0:
		return Listener{}, fmt.Errorf("listener pid %d is invalid", l.PID)
	case l.Token == "":
		return Listener{}, errors.New("listener token is empty")
	}

	p, err := findProcessFunc(l.PID)
	if err != nil {
		return Listener{}, fmt.Errorf("failed to look up listener pid %d: %w", l.PID, err)
	}
	if p == nil {
		_ = os.Remove(path)
		return Listener{}, ErrNoListener
	}
	return l, nil
}

func (t *Tray) post(ctx context.Context, l Listener, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("http://127.0.0.1:%d/notice", l.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.Token)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	reply, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("listener replied %d: %s", res.StatusCode, bytes.TrimSpace(reply))
}
