// Package osc forwards gesture flags and body landmarks over Open Sound Control.
package osc

import (
	"errors"
	"fmt"
	"sort"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Address prefixes for outgoing messages.
const (
	PosePrefix    = "/pose/"
	GesturePrefix = "/gesture/"
)

// Transport delivers an OSC packet. *goosc.Client satisfies it.
type Transport interface {
	Send(packet goosc.Packet) error
}

// Sender publishes one OSC message per landmark and per gesture flag.
type Sender struct {
	transport Transport
	address   string
}

// NewSender creates a Sender that sends UDP datagrams to host:port.
func NewSender(host string, port int) *Sender {
	return &Sender{
		transport: goosc.NewClient(host, port),
		address:   fmt.Sprintf("%s:%d", host, port),
	}
}

// NewSenderWithTransport creates a Sender over an arbitrary transport.
func NewSenderWithTransport(t Transport) *Sender {
	return &Sender{transport: t, address: "custom"}
}

// Address returns the destination the sender was created for.
func (s *Sender) Address() string {
	return s.address
}

// LandmarkMessage builds the /pose/<name> message carrying x, y, z as float32.
func LandmarkMessage(name string, p detector.Point3D) *goosc.Message {
	return goosc.NewMessage(PosePrefix+name, float32(p.X), float32(p.Y), float32(p.Z))
}

// GestureMessage builds the /gesture/<name> message carrying 1 or 0.
func GestureMessage(name gesture.Name, active bool) *goosc.Message {
	var v int32
	if active {
		v = 1
	}
	return goosc.NewMessage(GesturePrefix+string(name), v)
}

// SendLandmarks sends one message per landmark in name order.
// Every landmark is attempted; the returned error joins all failures.
func (s *Sender) SendLandmarks(landmarks map[string]detector.Point3D) error {
	names := make([]string, 0, len(landmarks))
	for name := range landmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := s.transport.Send(LandmarkMessage(name, landmarks[name])); err != nil {
			errs = append(errs, fmt.Errorf("send %s%s: %w", PosePrefix, name, err))
		}
	}
	return errors.Join(errs...)
}

// SendGesture sends a single gesture flag.
func (s *Sender) SendGesture(name gesture.Name, active bool) error {
	if err := s.transport.Send(GestureMessage(name, active)); err != nil {
		return fmt.Errorf("send %s%s: %w", GesturePrefix, name, err)
	}
	return nil
}

// SendSnapshot sends every flag of snap, set or not.
func (s *Sender) SendSnapshot(snap gesture.Snapshot) error {
	var errs []error
	for _, name := range gesture.Names {
		if err := s.SendGesture(name, snap.Get(name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
