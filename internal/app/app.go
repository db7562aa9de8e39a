// Package app wires camera capture, landmark detection, the gesture
// classifier and the downstream sinks (OSC, journal, websocket, tray) into
// one detection pipeline.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// ErrNoClassifier is returned by New when Config.Classifier is nil.
var ErrNoClassifier = errors.New("app: classifier is required")

// Sender forwards body landmarks and gesture flags downstream.
// *osc.Sender implements it.
type Sender interface {
	SendLandmarks(body map[string]detector.Point3D) error
	SendSnapshot(snap gesture.Snapshot) error
}

// Publisher receives one Update per classified frame. *server.Hub implements it.
type Publisher interface {
	Publish(u server.Update)
}

// FrameSink stores the latest annotated JPEG. *server.FrameBuffer implements it.
type FrameSink interface {
	Set(jpeg []byte)
}

// GestureFunc is called for every journaled gesture edge.
type GestureFunc func(name gesture.Name, value bool)

// Config holds configuration options for the application. Only Classifier is
// required; nil sinks are skipped.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier *gesture.Classifier
	Sender     Sender
	Store      *store.Store
	Publisher  Publisher
	Frames     FrameSink
	FPS        int
	Logger     logrus.FieldLogger
	OnGesture  GestureFunc
}

// App is the main application that orchestrates gesture detection and output.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	log        logrus.FieldLogger

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}

	// Guarded by procMu; ProcessResult is the single writer.
	procMu     sync.Mutex
	frame      int64
	prevWaving bool
	last       gesture.Snapshot
}

// New creates a new App instance with the given configuration. Without a
// detector it tries MediaPipe and falls back to the mock detector.
func New(config Config) (*App, error) {
	if config.Classifier == nil {
		return nil, ErrNoClassifier
	}

	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		classifier: config.Classifier,
		log:        log.WithField("component", "app"),
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			a.log.Info("using MediaPipe landmark detection")
		} else {
			a.log.WithError(err).Warn("MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Classifier returns the gesture classifier.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Thresholds returns the classifier thresholds in use.
func (a *App) Thresholds() gesture.Thresholds {
	return a.classifier.Thresholds()
}

// Frames returns the number of frames handed to ProcessResult so far.
func (a *App) Frames() int64 {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.frame
}

// Last returns the snapshot of the most recent successfully classified frame.
func (a *App) Last() gesture.Snapshot {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.last
}

// Start opens the camera and begins the detection loop at the configured FPS.
// Starting a running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if a.camera == nil {
		return capture.ErrCameraNotOpen
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.FPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done, time.Second/time.Duration(a.config.FPS))

	a.log.WithField("fps", a.config.FPS).Info("detection pipeline started")
	return nil
}

// Stop halts the detection loop and closes the camera. The detector stays
// usable so the App can be started again.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("error closing camera")
	}

	a.log.Info("detection pipeline stopped")
}

// Close stops the pipeline and releases the detector.
func (a *App) Close() error {
	a.Stop()
	if d := a.Detector(); d != nil {
		return d.Close()
	}
	return nil
}
