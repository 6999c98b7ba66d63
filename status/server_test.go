package status

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-drift/sequencer"
	"go-drift/transport"
)

type silent struct{}

func (silent) TriggerAttack(string, float64, float64)                 {}
func (silent) TriggerAttackRelease(string, float64, float64, float64) {}

type beat struct{ name string }

func (b beat) Name() string         { return b.name }
func (b beat) Fire(float64) float64 { return 1 }

func newEngine(t *testing.T) (*sequencer.Manager, *transport.Transport) {
	t.Helper()
	spec := func(name string) sequencer.VoiceSpec {
		return sequencer.VoiceSpec{
			Name:    name,
			Group:   true,
			Channel: 1,
			Load:    func(context.Context) (sequencer.Player, error) { return silent{}, nil },
			Build: func(sequencer.Player, *rand.Rand, float64) (sequencer.Voice, error) {
				return beat{name}, nil
			},
		}
	}
	tr := transport.New()
	m := sequencer.NewManager(tr, 5, []sequencer.VoiceSpec{spec("kick"), spec("hats")})
	m.Start(context.Background())
	m.Wait()
	<-m.Ready()
	tr.Advance(3)
	return m, tr
}

func TestStatusRoutes(t *testing.T) {
	m, _ := newEngine(t)
	srv := httptest.NewServer(New(m, io.Discard).Handler())
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"transport", http.MethodGet, "/transport", http.StatusOK},
		{"voices", http.MethodGet, "/voices", http.StatusOK},
		{"one voice", http.MethodGet, "/voices/kick", http.StatusOK},
		{"unknown voice", http.MethodGet, "/voices/cowbell", http.StatusNotFound},
		{"stop unknown", http.MethodPost, "/voices/cowbell/stop", http.StatusNotFound},
		{"stop needs post", http.MethodGet, "/voices/kick/stop", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.status)
			}
		})
	}
}

func TestVoicesBody(t *testing.T) {
	m, _ := newEngine(t)
	rec := httptest.NewRecorder()
	New(m, io.Discard).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/voices", nil))

	var voices []sequencer.VoiceStatus
	if err := json.NewDecoder(rec.Body).Decode(&voices); err != nil {
		t.Fatal(err)
	}
	if len(voices) != 2 || voices[0].Name != "kick" || voices[0].Fires != 4 {
		t.Errorf("voices = %+v", voices)
	}
	if voices[0].State != sequencer.StateRunning {
		t.Errorf("kick state %s", voices[0].State)
	}
}

func TestStopVoice(t *testing.T) {
	m, tr := newEngine(t)
	h := New(m, io.Discard).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/voices/kick/stop", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var vs sequencer.VoiceStatus
	json.NewDecoder(rec.Body).Decode(&vs)
	if vs.State != sequencer.StateStopped {
		t.Errorf("state %s, want stopped", vs.State)
	}

	tr.Advance(10)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transport", nil))
	var ts sequencer.TransportStatus
	json.NewDecoder(rec.Body).Decode(&ts)
	if !ts.Started || ts.Pending != 1 || ts.Seed != 5 {
		t.Errorf("transport = %+v", ts)
	}
}
