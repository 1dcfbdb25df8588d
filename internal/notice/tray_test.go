package notice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/foodmood/internal/constants"
)

type mockProcess struct {
	pid int
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return "applet" }

func stubProcesses(t *testing.T, alive bool) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if !alive {
			return nil, nil
		}
		return &mockProcess{pid: pid}, nil
	}
}

func writeListener(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, constants.NoticeListenerFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTrayListenerFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		dead    bool
		wantErr string
	}{
		{name: "not json", content: "8080|12345|s3cret", wantErr: "malformed"},
		{name: "port out of range", content: `{"port":99999,"pid":1,"token":"t"}`, wantErr: "outside"},
		{name: "missing pid", content: `{"port":8080,"token":"t"}`, wantErr: "pid"},
		{name: "empty token", content: `{"port":8080,"pid":1}`, wantErr: "token"},
		{name: "ok", content: `{"port":8080,"pid":4242,"token":"s3cret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcesses(t, true)
			dir := t.TempDir()
			writeListener(t, dir, tt.content)

			l, err := (&Tray{Dir: dir}).listener()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Port != 8080 || l.PID != 4242 || l.Token != "s3cret" {
				t.Errorf("listener = %+v", l)
			}
		})
	}
}

func TestTrayWithoutListener(t *testing.T) {
	stubProcesses(t, true)
	err := (&Tray{Dir: t.TempDir()}).Send(context.Background(), Success("Saved"))
	if !errors.Is(err, ErrNoListener) {
		t.Errorf("err = %v, want ErrNoListener", err)
	}
}

func TestTrayDropsStaleListener(t *testing.T) {
	stubProcesses(t, false)
	dir := t.TempDir()
	path := writeListener(t, dir, `{"port":8080,"pid":4242,"token":"s3cret"}`)

	if _, err := (&Tray{Dir: dir}).listener(); !errors.Is(err, ErrNoListener) {
		t.Errorf("err = %v, want ErrNoListener", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale listener file should be removed")
	}
}

func TestTraySend(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notice" || r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())

	stubProcesses(t, true)
	dir := t.TempDir()
	tray := &Tray{Dir: dir, Client: server.Client()}
	ctx := context.Background()

	writeListener(t, dir, `{"port":`+strconv.Itoa(port)+`,"pid":4242,"token":"s3cret"}`)
	if err := tray.Send(ctx, Error("Invalid export file format")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Text != "Invalid export file format" || got.Level != "error" || got.DurationMs != 5000 {
		t.Errorf("message = %+v", got)
	}

	writeListener(t, dir, `{"port":`+strconv.Itoa(port)+`,"pid":4242,"token":"wrong"}`)
	err = tray.Send(ctx, Success("Saved"))
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want a 401 reply", err)
	}
}

func TestChainFallsBackWhenNoListener(t *testing.T) {
	stubProcesses(t, true)
	var delivered bool
	c := Chain{
		&Tray{Dir: t.TempDir()},
		SinkFunc(func(context.Context, Notice) error { delivered = true; return nil }),
	}
	if err := c.Send(context.Background(), Success("Saved")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !delivered {
		t.Error("next sink was not tried")
	}
}
