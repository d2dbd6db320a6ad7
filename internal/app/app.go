package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"lpservice/internal/config"
	"lpservice/internal/logger"
	"lpservice/internal/recognition"
	"lpservice/internal/routes"
	"lpservice/internal/service"
	"lpservice/internal/service/ai"
	"lpservice/internal/service/camera"
	"lpservice/internal/service/storage"
	"lpservice/internal/service/websocket"
	"lpservice/internal/vision"
)

// App owns every long-lived component of the server.
type App struct {
	config     *config.Config
	logger     *logger.Logger
	registry   *recognition.Registry[*vision.Frame]
	tempStore  *storage.TempStore
	hubService *websocket.HubService
	manager    *service.Manager[*vision.Frame]
	server     *http.Server
}

// New builds the application. A model load failure is logged and leaves the
// service running but not ready.
func New(cfg *config.Config, log *logger.Logger) *App {
	registry := recognition.NewRegistry(ai.LoadModels(cfg, log))
	if err := registry.Load(); err != nil {
		log.Error("Recognition service unavailable: %v", err)
	}
	pipeline := recognition.NewPipeline(registry, vision.Load, log)

	cameras := camera.NewManager(openCamera(cfg), log)
	tempStore := storage.NewTempStore(cfg, log)
	hub := websocket.NewHubService(log)

	manager := service.NewManager(pipeline, cameras, tempStore, hub, service.Options{
		CameraSupported: camera.Supported(cfg.CameraMode),
		PreviewInterval: cfg.PreviewInterval,
	}, log)

	return &App{
		config:     cfg,
		logger:     log,
		registry:   registry,
		tempStore:  tempStore,
		hubService: hub,
		manager:    manager,
		server: &http.Server{
			Addr:    cfg.Address(),
			Handler: routes.SetupRoutes(manager, cfg, log),
		},
	}
}

func openCamera(cfg *config.Config) camera.OpenFunc[*vision.Frame] {
	return func() (camera.Device[*vision.Frame], error) {
		device, err := vision.OpenCamera(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight, cfg.CameraWarmup)
		if err != nil {
			return nil, err
		}
		return device, nil
	}
}

// Run serves until ctx is cancelled, then shuts the server down, releases
// the camera and closes the models.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, run := range []func(context.Context){a.tempStore.Run, a.hubService.Run, a.manager.StreamPreview} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(bgCtx)
		}()
	}

	a.printBanner()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		err = a.server.Shutdown(shutdownCtx)
		stop()
	}

	cancel()
	wg.Wait()

	if cerr := a.manager.Close(); cerr != nil {
		a.logger.Warning("Error stopping camera: %v", cerr)
	}
	if cerr := a.registry.Close(); cerr != nil {
		a.logger.Warning("Error releasing models: %v", cerr)
	}
	return err
}

func (a *App) printBanner() {
	fmt.Println("============================================================")
	fmt.Println("🚀 License Plate Recognition API Server")
	fmt.Println("============================================================")
	fmt.Printf("📡 Listening on %s\n", a.config.Address())
	fmt.Printf("🤖 Models ready: %t\n", a.registry.Ready())
	fmt.Printf("📷 Camera supported: %t (mode %s)\n", a.manager.CameraSupported(), a.config.CameraMode)
	fmt.Printf("📍 Health Check: GET /health\n")
	fmt.Printf("📍 Recognize Endpoint: POST /api/recognize\n")
	fmt.Printf("📍 Camera Recognize: POST /api/recognize/camera\n")
	fmt.Printf("📍 Camera Control: POST /api/camera/start, POST /api/camera/stop, GET /api/camera/status\n")
	fmt.Printf("📍 Camera Preview: GET /api/camera/preview, GET /api/camera/stream\n")
	fmt.Println("============================================================")
}
