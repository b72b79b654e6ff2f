package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"melody/internal/media"
)

// ErrNotStarted is returned by commands sent before Start.
var ErrNotStarted = errors.New("mpv not started")

// observed properties, keyed by observe_property id.
var observed = []string{"time-pos", "duration", "pause", "volume"}

// MPV implements Player by running mpv in idle mode and talking to it over
// its JSON IPC socket at a randomized temp path.
type MPV struct {
	cmd       *exec.Cmd
	socketDir string
	conn      net.Conn
	writeMu   sync.Mutex
	events    chan media.Event
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	nextID      int64
	pendingPlay map[int64]bool
	src         string
	paused      bool
	timePos     float64
	duration    float64
	volume      float64
}

// NewMPV returns an unstarted mpv player.
func NewMPV() *MPV {
	return &MPV{
		events:      make(chan media.Event, 64),
		done:        make(chan struct{}),
		pendingPlay: make(map[int64]bool),
		paused:      true,
		duration:    math.NaN(),
		volume:      1,
	}
}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Start launches mpv and connects to its IPC socket.
func (m *MPV) Start(ctx context.Context) error {
	socketDir, err := os.MkdirTemp("", "melody-mpv-*")
	if err != nil {
		return fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	m.socketDir = socketDir
	socketPath := filepath.Join(socketDir, "socket")

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server=" + socketPath,
	}

	m.cmd = exec.Command("mpv", args...)
	if err := m.cmd.Start(); err != nil {
		os.RemoveAll(socketDir)
		return fmt.Errorf("starting mpv: %w", err)
	}

	conn, err := dialSocket(ctx, socketPath)
	if err != nil {
		m.cmd.Process.Kill()
		m.cmd.Wait()
		os.RemoveAll(socketDir)
		return fmt.Errorf("connecting to mpv: %w", err)
	}

	return m.attach(conn)
}

// dialSocket waits for mpv to create its socket, then connects.
func dialSocket(ctx context.Context, socketPath string) (net.Conn, error) {
	for i := 0; i < 50; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	var d net.Dialer
	return d.DialContext(ctx, "unix", socketPath)
}

// attach starts reading from conn and subscribes to the observed properties.
func (m *MPV) attach(conn net.Conn) error {
	m.conn = conn
	go m.readLoop(conn)

	for i, name := range observed {
		if _, err := m.send("observe_property", i+1, name); err != nil {
			return fmt.Errorf("observing %s: %w", name, err)
		}
	}
	return nil
}

// Close asks mpv to quit and cleans up.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	if m.conn != nil {
		m.send("quit")
		m.conn.Close()
	}
	if m.cmd != nil && m.cmd.Process != nil {
		done := make(chan struct{})
		go func() {
			m.cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			m.cmd.Process.Kill()
			<-done
		}
	}
	if m.socketDir != "" {
		return os.RemoveAll(m.socketDir)
	}
	return nil
}

func (m *MPV) Events() <-chan media.Event { return m.events }

func (m *MPV) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

// SetSource replaces the current file. Like an audio element, a new source
// starts out paused.
func (m *MPV) SetSource(src string) error {
	if _, err := m.send("set_property", "pause", true); err != nil {
		return err
	}
	if _, err := m.send("loadfile", src, "replace"); err != nil {
		return err
	}
	m.mu.Lock()
	m.src = src
	m.paused = true
	m.timePos = 0
	m.duration = math.NaN()
	m.mu.Unlock()
	return nil
}

// Play resumes playback. A rejection by mpv arrives later as a
// PlaybackFailed event.
func (m *MPV) Play() error {
	if _, err := m.request(true, "set_property", "pause", false); err != nil {
		return err
	}
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	return nil
}

func (m *MPV) Pause() error {
	if _, err := m.send("set_property", "pause", true); err != nil {
		return err
	}
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	return nil
}

func (m *MPV) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *MPV) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timePos
}

func (m *MPV) SetCurrentTime(seconds float64) error {
	if _, err := m.send("seek", seconds, "absolute"); err != nil {
		return err
	}
	m.mu.Lock()
	m.timePos = seconds
	m.mu.Unlock()
	return nil
}

// Duration returns NaN until mpv reports the track length.
func (m *MPV) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MPV) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SetVolume sets the volume from 0.0–1.0; mpv works in percent.
func (m *MPV) SetVolume(v float64) error {
	if _, err := m.send("set_property", "volume", v*100); err != nil {
		return err
	}
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
	return nil
}

// send writes one IPC command and returns its request id.
func (m *MPV) send(command ...interface{}) (int64, error) {
	return m.request(false, command...)
}

// request writes a command. Failed replies to play requests are reported
// as PlaybackFailed events.
func (m *MPV) request(play bool, command ...interface{}) (int64, error) {
	if m.conn == nil {
		return 0, ErrNotStarted
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if play {
		m.pendingPlay[id] = true
	}
	m.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{
		"command":    command,
		"request_id": id,
	})
	if err != nil {
		return 0, fmt.Errorf("encoding mpv command: %w", err)
	}
	data = append(data, '\n')

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if _, err := m.conn.Write(data); err != nil {
		m.mu.Lock()
		delete(m.pendingPlay, id)
		m.mu.Unlock()
		return 0, fmt.Errorf("writing to mpv: %w", err)
	}
	return id, nil
}

// ipcMessage covers both replies and events on the IPC socket.
type ipcMessage struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`
}

// readLoop consumes the socket until it closes, then closes the event channel.
func (m *MPV) readLoop(r io.Reader) {
	defer close(m.events)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event == "" {
			m.handleReply(msg)
			continue
		}
		m.handleEvent(msg)
	}
}

func (m *MPV) handleReply(msg ipcMessage) {
	m.mu.Lock()
	isPlay := m.pendingPlay[msg.RequestID]
	delete(m.pendingPlay, msg.RequestID)
	m.mu.Unlock()

	if isPlay && msg.Error != "success" {
		m.emit(media.Event{Kind: media.PlaybackFailed, Err: fmt.Errorf("mpv: %s", msg.Error)}, true)
	}
}

func (m *MPV) handleEvent(msg ipcMessage) {
	switch msg.Event {
	case "property-change":
		m.propertyChanged(msg.Name, msg.Data)
	case "end-file":
		switch msg.Reason {
		case "eof":
			m.emit(media.Event{Kind: media.Ended}, true)
		case "error":
			reason := msg.FileError
			if reason == "" {
				reason = "unknown error"
			}
			m.emit(media.Event{Kind: media.PlaybackFailed, Err: fmt.Errorf("mpv: %s", reason)}, true)
		}
	}
}

func (m *MPV) propertyChanged(name string, data json.RawMessage) {
	switch name {
	case "time-pos":
		v, ok := decodeNumber(data)
		if !ok {
			return
		}
		m.mu.Lock()
		m.timePos = v
		m.mu.Unlock()
		m.emit(media.Event{Kind: media.TimeUpdate}, false)
	case "duration":
		v, ok := decodeNumber(data)
		if !ok {
			v = math.NaN()
		}
		m.mu.Lock()
		m.duration = v
		m.mu.Unlock()
	case "pause":
		var p bool
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		m.mu.Lock()
		m.paused = p
		m.mu.Unlock()
	case "volume":
		v, ok := decodeNumber(data)
		if !ok {
			return
		}
		m.mu.Lock()
		m.volume = v / 100
		m.mu.Unlock()
	}
}

// emit delivers an event. Time updates are dropped when the consumer lags;
// everything else waits for room until the player is closed.
func (m *MPV) emit(ev media.Event, must bool) {
	if must {
		select {
		case m.events <- ev:
		case <-m.done:
		}
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}

func decodeNumber(data json.RawMessage) (float64, bool) {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}
