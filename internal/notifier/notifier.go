package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/logger"
)

// ErrTrayNotRunning is returned when no live companion tray app owns the lockfile.
var ErrTrayNotRunning = errors.New("droptime-tray is not running")

const secretHeader = "X-Droptime-Secret"

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Payload is the body posted to the tray app's webhook.
type Payload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// endpoint is the parsed content of the tray lockfile: "port|pid|secret".
type endpoint struct {
	port   int
	pid    int
	secret string
}

func (e endpoint) url() string {
	return "http://127.0.0.1:" + strconv.Itoa(e.port)
}

// Notifier delivers countdown alerts to the tray app, ringing the terminal bell
// when the tray cannot be reached.
type Notifier struct {
	enabled bool
	client  *http.Client
	bell    io.Writer
}

func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		client:  &http.Client{Timeout: 3 * time.Second},
		bell:    os.Stderr,
	}
}

// TimerDone announces the end of a countdown. Delivery failures are logged, never returned.
func (n *Notifier) TimerDone(ctx context.Context) {
	if n.enabled {
		err := n.Notify(ctx, constants.TimerDoneMessage)
		if err == nil {
			return
		}
		logger.Warn("Tray notification failed, falling back to bell", "error", err)
	}
	fmt.Fprint(n.bell, "\a")
}

// Notify posts text to the running tray app.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	dir, err := TrayConfigDir()
	if err != nil {
		return err
	}
	ep, err := readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	if err := checkProcess(ep.pid); err != nil {
		return err
	}
	return n.post(ctx, ep, Payload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// TrayConfigDir returns the tray app's configuration directory, honouring a custom
// lockfile_dir from its settings.json.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Debug("Ignoring unreadable tray settings", "error", err)
		return dir, nil
	}
	if store.Settings.LockfileDir != "" {
		return store.Settings.LockfileDir, nil
	}
	return dir, nil
}

func readLockfile(path string) (endpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return endpoint{}, ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return endpoint{}, errors.New("lockfile is malformed")
	}
	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return endpoint{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return endpoint{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return endpoint{}, errors.New("secret in lockfile is empty")
	}
	return endpoint{port: port, pid: pid, secret: secret}, nil
}

func checkProcess(pid int) error {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayProcessPrefix) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayProcessPrefix, process.Executable())
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, ep endpoint, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, ep.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
