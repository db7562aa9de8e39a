package e2e

import (
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	goosc "github.com/hypebeast/go-osc/osc"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/osc"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/testdata"
)

// oscCollector receives OSC messages on a loopback UDP socket.
type oscCollector struct {
	conn *net.UDPConn
	mu   sync.Mutex
	msgs []*goosc.Message
	done chan struct{}
}

func newOSCCollector(t *testing.T) *oscCollector {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	c := &oscCollector{conn: conn, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		buf := make([]byte, 65535)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			packet, err := goosc.ParsePacket(string(buf[:n]))
			if err != nil {
				continue
			}
			if msg, ok := packet.(*goosc.Message); ok {
				c.mu.Lock()
				c.msgs = append(c.msgs, msg)
				c.mu.Unlock()
			}
		}
	}()
	t.Cleanup(func() {
		conn.Close()
		<-c.done
	})
	return c
}

func (c *oscCollector) port() int {
	return c.conn.LocalAddr().(*net.UDPAddr).Port
}

// count returns how many messages for address carried the given argument.
func (c *oscCollector) count(address string, arg interface{}) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m.Address == address && len(m.Arguments) == 1 && m.Arguments[0] == arg {
			n++
		}
	}
	return n
}

func (c *oscCollector) has(address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.msgs {
		if m.Address == address {
			return true
		}
	}
	return false
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer s.Close()

	logger, _ := logtest.NewNullLogger()
	collector := newOSCCollector(t)
	hub := server.NewHub(logger)

	classifier, err := gesture.NewClassifier(gesture.DefaultThresholds())
	require.NoError(t, err)

	application, err := app.New(app.Config{
		Detector:   detector.NewMockDetector(),
		Classifier: classifier,
		Sender:     osc.NewSender("127.0.0.1", collector.port()),
		Store:      s,
		Publisher:  hub,
		Logger:     logger,
	})
	require.NoError(t, err)

	srv := server.New(server.Config{Store: s, Thresholds: application, Hub: hub, Logger: logger})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/gestures", nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	script := testdata.WithPose(testdata.Concat(
		testdata.Wave(testdata.WaveXs...),               // frames 1-7, waving turns on at 7
		testdata.Hold(3, detector.ThumbsUpLandmarks()),  // frames 8-10, thumbs up once
		testdata.Empty(1),                               // frame 11
		testdata.Hold(2, detector.PeaceSignLandmarks()), // frames 12-13, peace sign once
		testdata.Clap(2, 0.02),                          // frames 14-15, clap once
	))

	t.Run("ProcessScript", func(t *testing.T) {
		for i, res := range script {
			_, err := application.ProcessResult(res)
			require.NoError(t, err, "frame %d", i+1)
		}

		// A malformed frame is skipped and the stream continues
		bad := detector.OpenPalmLandmarks()
		bad.Points = bad.Points[:4]
		_, err := application.ProcessResult(detector.Result{Hands: []detector.HandLandmarks{bad}})
		assert.Error(t, err)
	})

	t.Run("WebsocketUpdates", func(t *testing.T) {
		var updates []server.Update
		ws.SetReadDeadline(time.Now().Add(3 * time.Second))
		for len(updates) < len(script) {
			var u server.Update
			require.NoError(t, ws.ReadJSON(&u))
			updates = append(updates, u)
		}

		assert.Equal(t, int64(1), updates[0].Frame)
		assert.False(t, updates[5].Gestures.Waving)
		assert.True(t, updates[6].Gestures.Waving)
		assert.True(t, updates[7].Gestures.ThumbsUp)
		assert.False(t, updates[8].Gestures.ThumbsUp)
		assert.True(t, updates[11].Gestures.PeaceSign)
		assert.True(t, updates[13].Gestures.Clapping)
		assert.False(t, updates[14].Gestures.Clapping)
		assert.Len(t, updates[0].Body, 3)
	})

	t.Run("OSCMessages", func(t *testing.T) {
		require.Eventually(t, func() bool {
			return collector.count("/gesture/clapping", int32(1)) == 1
		}, 2*time.Second, 10*time.Millisecond)

		assert.Equal(t, 1, collector.count("/gesture/thumbs_up", int32(1)))
		assert.Equal(t, 1, collector.count("/gesture/peace_sign", int32(1)))
		assert.Equal(t, len(script)-6, collector.count("/gesture/waving", int32(1)))
		assert.True(t, collector.has("/pose/head"))
		assert.True(t, collector.has("/pose/left_wrist"))
		assert.True(t, collector.has("/pose/right_wrist"))
	})

	client := resty.New().SetHostURL(ts.URL)

	t.Run("JournalAPI", func(t *testing.T) {
		var stats struct {
			Counts map[string]int `json:"counts"`
			Total  int            `json:"total"`
		}
		resp, err := client.R().SetResult(&stats).Get("/api/events/stats")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		assert.Equal(t, map[string]int{
			"waving":     1,
			"thumbs_up":  1,
			"peace_sign": 1,
			"clapping":   1,
		}, stats.Counts)
		assert.Equal(t, 4, stats.Total)

		var listed struct {
			Events []struct {
				Gesture string `json:"gesture"`
				Frame   int64  `json:"frame"`
			} `json:"events"`
		}
		resp, err = client.R().SetResult(&listed).SetQueryParam("limit", "10").Get("/api/events")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		require.Len(t, listed.Events, 4)

		frames := map[string]int64{}
		for _, e := range listed.Events {
			frames[e.Gesture] = e.Frame
		}
		assert.Equal(t, map[string]int64{"waving": 7, "thumbs_up": 8, "peace_sign": 12, "clapping": 14}, frames)
	})

	t.Run("ThresholdsAPI", func(t *testing.T) {
		var body struct {
			Active gesture.Thresholds `json:"active"`
		}
		resp, err := client.R().SetResult(&body).Get("/api/thresholds")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, gesture.DefaultThresholds(), body.Active)

		resp, err = client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"clap_distance": 0.1}`).
			Put("/api/thresholds")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		saved, err := s.Settings().LoadThresholds()
		require.NoError(t, err)
		assert.Equal(t, 0.1, saved.ClapDistance)
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.R().Get("/api/health")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
	})
}

func TestE2E_PersistedThresholdsSurviveRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")

	s, err := store.New(dbPath)
	require.NoError(t, err)
	th := gesture.DefaultThresholds()
	th.WaveCount = 1
	require.NoError(t, s.Settings().SaveThresholds(th))
	s.Close()

	s, err = store.New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.Settings().LoadThresholds()
	require.NoError(t, err)

	classifier, err := gesture.NewClassifier(loaded)
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()
	application, err := app.New(app.Config{
		Detector:   detector.NewMockDetector(),
		Classifier: classifier,
		Store:      s,
		Logger:     logger,
	})
	require.NoError(t, err)

	// With wave_count 1 the toggle needs only two large swings
	var snap gesture.Snapshot
	for _, res := range testdata.Wave(0.30, 0.40, 0.30) {
		snap, err = application.ProcessResult(res)
		require.NoError(t, err)
	}
	assert.True(t, snap.Waving)
}
