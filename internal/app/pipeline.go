package app

import (
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// runPipeline is the detection loop. Each tick, while enabled, it reads a
// frame, detects landmarks, classifies them and publishes the preview.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}, interval time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.log.WithError(err).Debug("error reading frame")
				continue
			}
			a.processFrame(frame)
			frame.Close()
		}
	}
}

// processFrame runs detection and classification on one camera frame and
// stores the annotated result for the preview stream.
func (a *App) processFrame(frame *gocv.Mat) {
	res, err := a.Detector().Detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("landmark detection failed")
		return
	}

	snap, err := a.ProcessResult(res)
	if err != nil {
		return
	}

	if a.config.Frames == nil {
		return
	}
	render.Annotate(frame, res, snap)
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		a.log.WithError(err).Debug("failed to encode preview frame")
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	a.config.Frames.Set(jpeg)
}

// ProcessResult classifies one detector result and fans the outcome out to
// the configured sinks. Results must be supplied in frame order.
//
// Steps:
// 1. Classify the hands; a malformed frame is logged and skipped with the
//    classifier state intact
// 2. Send body landmarks and the four gesture flags downstream
// 3. Journal wave toggle edges and fired one-shots
// 4. Publish the Update to websocket clients
func (a *App) ProcessResult(res detector.Result) (gesture.Snapshot, error) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	a.frame++
	log := a.log.WithFields(logrus.Fields{"frame": a.frame, "hands": len(res.Hands)})

	snap, err := a.classifier.Process(gesture.Frame{Hands: res.Hands})
	if err != nil {
		log.WithError(err).Warn("skipping frame")
		return gesture.Snapshot{}, err
	}
	a.last = snap

	body := detector.ExtractBody(res.Pose)

	if a.config.Sender != nil {
		if err := a.config.Sender.SendLandmarks(body); err != nil {
			log.WithError(err).Warn("failed to send landmarks")
		}
		if err := a.config.Sender.SendSnapshot(snap); err != nil {
			log.WithError(err).Warn("failed to send gestures")
		}
	}

	for _, name := range a.edges(snap) {
		value := snap.Get(name)
		log.WithFields(logrus.Fields{"gesture": name, "value": value}).Info("gesture")
		a.journal(log, name, value)
		if a.config.OnGesture != nil {
			a.config.OnGesture(name, value)
		}
	}

	if a.config.Publisher != nil {
		a.config.Publisher.Publish(server.Update{
			Frame:     a.frame,
			Gestures:  snap,
			Body:      body,
			Timestamp: time.Now().UnixMilli(),
		})
	}

	log.WithField("gestures", snap.Fired()).Debug("frame classified")
	return snap, nil
}

// edges returns the gestures to journal for snap: the wave toggle when it
// changed since the last frame, and every one-shot that fired.
func (a *App) edges(snap gesture.Snapshot) []gesture.Name {
	var names []gesture.Name
	for _, name := range gesture.Names {
		if name == gesture.Waving {
			if snap.Waving != a.prevWaving {
				names = append(names, name)
			}
			continue
		}
		if snap.Get(name) {
			names = append(names, name)
		}
	}
	a.prevWaving = snap.Waving
	return names
}

func (a *App) journal(log logrus.FieldLogger, name gesture.Name, value bool) {
	if a.config.Store == nil {
		return
	}
	err := a.config.Store.Events().Record(&store.Event{
		Gesture: string(name),
		Value:   value,
		Frame:   a.frame,
	})
	if err != nil {
		log.WithError(err).Warn("failed to journal gesture")
	}
}
