package osc

import (
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// recorder is a Transport that keeps every packet it is given.
type recorder struct {
	packets []goosc.Packet
	err     error
}

func (r *recorder) Send(p goosc.Packet) error {
	if r.err != nil {
		return r.err
	}
	r.packets = append(r.packets, p)
	return nil
}

func (r *recorder) messages(t *testing.T) []*goosc.Message {
	t.Helper()
	out := make([]*goosc.Message, len(r.packets))
	for i, p := range r.packets {
		msg, ok := p.(*goosc.Message)
		require.True(t, ok, "packet %d is %T", i, p)
		out[i] = msg
	}
	return out
}

func TestSender_SendLandmarks(t *testing.T) {
	rec := &recorder{}
	s := NewSenderWithTransport(rec)

	err := s.SendLandmarks(map[string]detector.Point3D{
		detector.BodyRightWrist: {X: 0.25, Y: 0.5, Z: -0.125},
		detector.BodyHead:       {X: 0.5, Y: 0.1, Z: 0},
	})
	require.NoError(t, err)

	msgs := rec.messages(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, "/pose/head", msgs[0].Address)
	assert.Equal(t, "/pose/right_wrist", msgs[1].Address)
	assert.Equal(t, []interface{}{float32(0.25), float32(0.5), float32(-0.125)}, msgs[1].Arguments)
}

func TestSender_SendSnapshot(t *testing.T) {
	rec := &recorder{}
	s := NewSenderWithTransport(rec)

	require.NoError(t, s.SendSnapshot(gesture.Snapshot{Waving: true, Clapping: true}))

	msgs := rec.messages(t)
	require.Len(t, msgs, 4)

	got := map[string]interface{}{}
	for _, m := range msgs {
		require.Len(t, m.Arguments, 1)
		got[m.Address] = m.Arguments[0]
	}
	assert.Equal(t, map[string]interface{}{
		"/gesture/waving":     int32(1),
		"/gesture/thumbs_up":  int32(0),
		"/gesture/peace_sign": int32(0),
		"/gesture/clapping":   int32(1),
	}, got)
}

func TestSender_TransportErrors(t *testing.T) {
	rec := &recorder{err: errors.New("network down")}
	s := NewSenderWithTransport(rec)

	err := s.SendSnapshot(gesture.Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/gesture/waving")
	assert.Contains(t, err.Error(), "/gesture/clapping")

	err = s.SendLandmarks(map[string]detector.Point3D{"head": {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/pose/head")

	assert.NoError(t, s.SendLandmarks(nil), "nothing to send is not an error")
}

func TestSender_UDPLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that opens a UDP socket")
	}

	serverAddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)
	server, err := net.ListenUDP("udp", serverAddr)
	require.NoError(t, err)
	defer server.Close()

	port := server.LocalAddr().(*net.UDPAddr).Port
	s := NewSender("127.0.0.1", port)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), s.Address())

	require.NoError(t, s.SendGesture(gesture.ThumbsUp, true))

	require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 1024)
	n, _, err := server.ReadFromUDP(buf)
	require.NoError(t, err)

	packet, err := goosc.ParsePacket(string(buf[:n]))
	require.NoError(t, err)
	msg, ok := packet.(*goosc.Message)
	require.True(t, ok)
	assert.Equal(t, "/gesture/thumbs_up", msg.Address)
	assert.Equal(t, []interface{}{int32(1)}, msg.Arguments)
}
