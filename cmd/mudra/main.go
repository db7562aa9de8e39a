package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/osc"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	configPath     = flag.String("config", "", "Path to a JSON config file")
	dbPath         = flag.String("db", "", "SQLite database path (default ~/.mudra/mudra.db)")
	listen         = flag.String("listen", config.DefaultListen, "HTTP listen address")
	cameraID       = flag.Int("camera", config.DefaultCameraID, "Camera device ID")
	fps            = flag.Int("fps", config.DefaultFPS, "Capture frame rate")
	oscHost        = flag.String("osc-host", config.DefaultOSCHost, "OSC target host")
	oscPort        = flag.Int("osc-port", config.DefaultOSCPort, "OSC target port")
	clapMode       = flag.String("clap-mode", "", "Clap signal mode: one_shot or continuous")
	logLevel       = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	useTray        = flag.Bool("tray", false, "Show the system tray menu")
	saveThresholds = flag.Bool("save-thresholds", false, "Persist the resolved thresholds to the settings table and exit")
)

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", *logLevel, err)
	}
	log.SetLevel(level)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	path, err := resolveDBPath(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("failed to prepare data directory: %v", err)
	}
	st, err := store.New(path)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer st.Close()
	log.WithField("path", path).Info("store opened")

	th, err := resolveThresholds(cfg, st.Settings())
	if err != nil {
		log.Fatalf("failed to resolve thresholds: %v", err)
	}

	if *saveThresholds {
		if err := st.Settings().SaveThresholds(th); err != nil {
			log.Fatalf("failed to save thresholds: %v", err)
		}
		log.WithField("thresholds", fmt.Sprintf("%+v", th)).Info("thresholds saved")
		return
	}

	classifier, err := gesture.NewClassifier(th)
	if err != nil {
		log.Fatalf("invalid thresholds: %v", err)
	}

	sender := osc.NewSender(cfg.GetOSCHost(), cfg.GetOSCPort())
	log.WithField("addr", sender.Address()).Info("sending OSC")

	hub := server.NewHub(log.StandardLogger())
	frames := &server.FrameBuffer{}

	var t *tray.Tray
	if *useTray {
		t = tray.New(true)
	}

	application, err := app.New(app.Config{
		Camera:     capture.NewCameraWithSize(cfg.GetCameraID(), cfg.GetFrameWidth(), cfg.GetFrameHeight()),
		Classifier: classifier,
		Sender:     sender,
		Store:      st,
		Publisher:  hub,
		Frames:     frames,
		FPS:        cfg.GetFPS(),
		Logger:     log.StandardLogger(),
		OnGesture: func(name gesture.Name, value bool) {
			if t != nil {
				t.SetLastGesture(gestureLabel(name, value))
			}
		},
	})
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}
	defer application.Close()

	// Without a camera the journal and settings API are still served
	if err := application.Start(); err != nil {
		log.WithError(err).Warn("detection not started")
	}
	application.SetEnabled(true)

	webDir := findWebDir()
	if webDir != "" {
		log.WithField("dir", webDir).Info("serving static files")
	}
	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Thresholds: application,
		Hub:        hub,
		Frames:     frames,
		Logger:     log.StandardLogger(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx, cfg.GetListen()); err != nil {
			log.WithError(err).Error("http server failed")
			stop()
		}
	}()

	if t != nil {
		t.OnToggle(application.SetEnabled)
		t.OnDashboard(func() { openBrowser(dashboardURL(cfg.GetListen())) })
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// The tray loop must own the main goroutine
		t.Run()
		stop()
	} else {
		<-ctx.Done()
	}

	log.Info("shutting down")
	application.Stop()
	wg.Wait()
}

// loadConfig reads the optional config file and overlays explicitly set flags.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DBPath = dbPath
		case "listen":
			cfg.Listen = listen
		case "camera":
			cfg.CameraID = cameraID
		case "fps":
			cfg.FPS = fps
		case "osc-host":
			cfg.OSCHost = oscHost
		case "osc-port":
			cfg.OSCPort = oscPort
		case "clap-mode":
			cfg.ClapMode = clapMode
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type thresholdsLoader interface {
	LoadThresholds() (gesture.Thresholds, error)
}

// resolveThresholds picks thresholds by precedence: values set in the config
// file (or flags), then the persisted settings, then the defaults.
func resolveThresholds(cfg *config.Config, settings thresholdsLoader) (gesture.Thresholds, error) {
	base := gesture.DefaultThresholds()

	saved, err := settings.LoadThresholds()
	switch {
	case err == nil:
		base = saved
		log.Info("using thresholds from settings table")
	case errors.Is(err, store.ErrNotFound):
	default:
		return gesture.Thresholds{}, err
	}

	th := cfg.ApplyThresholds(base)
	if err := th.Validate(); err != nil {
		return gesture.Thresholds{}, err
	}
	return th, nil
}

func resolveDBPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "mudra.db"), nil
}

func gestureLabel(name gesture.Name, value bool) string {
	if name == gesture.Waving {
		if value {
			return "waving on"
		}
		return "waving off"
	}
	return strings.ReplaceAll(string(name), "_", " ")
}

func dashboardURL(listen string) string {
	host := listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("failed to open browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
