package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
	"github.com/robocomp/gesturecomp/internal/recognizer"
	"github.com/robocomp/gesturecomp/internal/store"
)

func TestAPI_GestureWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	rec := recognizer.NewMock()
	rec.SetResult(gesture.Result{GestureIndex: 2, GestureProb: 0.75})

	srv := New(Config{Recognizer: rec, Log: s, Logger: log.Discard()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	// 1. Subscribe to the results feed
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/results"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s error = %v", wsURL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Results().Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	// 2. Call getGesture through the client proxy
	proxy := gesture.NewProxy(ts.URL)
	defer proxy.Close()

	video := &gesture.Video{
		Images:    bytes.Repeat([]byte{7}, 3*4*4*3),
		Height:    4,
		Width:     4,
		Depth:     3,
		NumFrames: 3,
	}
	result, err := proxy.GetGesture(t.Context(), video)
	if err != nil {
		t.Fatalf("GetGesture() error = %v", err)
	}
	if result.GestureIndex != 2 || result.GestureProb != 0.75 {
		t.Errorf("result = %+v, want {2 0.75}", result)
	}

	// 3. The feed carries the served result
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg resultMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.ID == "" || msg.GestureIndex != 2 || msg.GestureProb != 0.75 || msg.NumFrames != 3 {
		t.Errorf("feed message = %+v", msg)
	}
	if msg.Timestamp == 0 {
		t.Error("feed message should carry a timestamp")
	}

	// 4. The recognition history lists it
	resp, err := ts.Client().Get(ts.URL + "/api/recognitions?limit=10")
	if err != nil {
		t.Fatalf("GET /api/recognitions error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/recognitions status = %d", resp.StatusCode)
	}

	var listed struct {
		Recognitions []struct {
			ID        string `json:"id"`
			NumFrames int    `json:"numFrames"`
			Height    int    `json:"height"`
		} `json:"recognitions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)

	if len(listed.Recognitions) != 1 {
		t.Fatalf("listed %d recognitions, want 1", len(listed.Recognitions))
	}
	if listed.Recognitions[0].ID != msg.ID || listed.Recognitions[0].Height != 4 {
		t.Errorf("listed = %+v, feed id = %s", listed.Recognitions[0], msg.ID)
	}
}

func TestAPI_RemoteErrorThroughProxy(t *testing.T) {
	rec := recognizer.NewMock()
	rec.SetError(errors.New("recognizer crashed"))

	ts := httptest.NewServer(New(Config{Recognizer: rec, Logger: log.Discard()}))
	defer ts.Close()

	proxy := gesture.NewProxy(ts.URL)
	_, err := proxy.GetGesture(t.Context(), &gesture.Video{Images: []byte{1, 2, 3}, Height: 1, Width: 1, Depth: 3, NumFrames: 1})

	var remote *gesture.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %T %v, want *gesture.RemoteError", err, err)
	}
	if remote.StatusCode != http.StatusInternalServerError || !strings.Contains(remote.Message, "recognizer crashed") {
		t.Errorf("remote error = %+v", remote)
	}
}
