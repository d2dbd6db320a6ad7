package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Camera modes accepted by CAMERA_MODE.
const (
	CameraModeAuto = "auto"
	CameraModeOn   = "on"
	CameraModeOff  = "off"
)

type Config struct {
	Host            string
	Port            int
	AppEnv          string
	LogDirectory    string
	LogLevel        string
	ShutdownTimeout time.Duration

	DetectorModelPath   string
	OCRModelPath        string
	DetectorInputSize   int
	OCRInputSize        int
	DetectionConfidence float64
	OCRConfidence       float64
	NMSThreshold        float64
	OCRLabels           string

	UploadDirectory   string
	MaxUploadSize     int64
	AllowedExtensions []string
	TempFileTTL       time.Duration
	TempSweepInterval time.Duration

	CameraMode      string
	CameraDevice    int
	CameraWidth     int
	CameraHeight    int
	CameraWarmup    time.Duration
	PreviewInterval time.Duration

	RateLimit      float64 // requests per second per client IP
	RateBurst      int
	AllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 5001)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_DIR", filepath.Join(".", "logs"))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DETECTOR_MODEL_PATH", filepath.Join(".", "models", "LP_detector.onnx"))
	v.SetDefault("OCR_MODEL_PATH", filepath.Join(".", "models", "LP_ocr.onnx"))
	v.SetDefault("DETECTOR_INPUT_SIZE", 640)
	v.SetDefault("OCR_INPUT_SIZE", 640)
	v.SetDefault("DETECTION_CONFIDENCE", 0.25)
	v.SetDefault("OCR_CONFIDENCE", 0.60)
	v.SetDefault("NMS_THRESHOLD", 0.45)
	v.SetDefault("OCR_LABELS", "123456789ABCDEFGHKLMNPRSTUVXYZ0")

	v.SetDefault("UPLOAD_DIR", filepath.Join(".", "uploads"))
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("ALLOWED_EXTENSIONS", "png,jpg,jpeg,bmp")
	v.SetDefault("TEMP_FILE_TTL", "10m")
	v.SetDefault("TEMP_SWEEP_INTERVAL", "1m")

	v.SetDefault("CAMERA_MODE", CameraModeAuto)
	v.SetDefault("CAMERA_DEVICE", 0)
	v.SetDefault("CAMERA_WIDTH", 1280)
	v.SetDefault("CAMERA_HEIGHT", 720)
	v.SetDefault("CAMERA_WARMUP", "3s")
	v.SetDefault("PREVIEW_INTERVAL", "200ms")

	v.SetDefault("RATE_LIMIT", 5.0)
	v.SetDefault("RATE_BURST", 10)
	v.SetDefault("ALLOWED_ORIGINS", "*")
}

// Load reads .env (if present), an optional config.yaml in the working
// directory and the process environment, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Host:            v.GetString("HOST"),
		Port:            v.GetInt("PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		LogDirectory:    v.GetString("LOG_DIR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		DetectorModelPath:   v.GetString("DETECTOR_MODEL_PATH"),
		OCRModelPath:        v.GetString("OCR_MODEL_PATH"),
		DetectorInputSize:   v.GetInt("DETECTOR_INPUT_SIZE"),
		OCRInputSize:        v.GetInt("OCR_INPUT_SIZE"),
		DetectionConfidence: v.GetFloat64("DETECTION_CONFIDENCE"),
		OCRConfidence:       v.GetFloat64("OCR_CONFIDENCE"),
		NMSThreshold:        v.GetFloat64("NMS_THRESHOLD"),
		OCRLabels:           v.GetString("OCR_LABELS"),

		UploadDirectory:   v.GetString("UPLOAD_DIR"),
		MaxUploadSize:     v.GetInt64("MAX_UPLOAD_SIZE"),
		AllowedExtensions: splitList(v.GetString("ALLOWED_EXTENSIONS")),
		TempFileTTL:       v.GetDuration("TEMP_FILE_TTL"),
		TempSweepInterval: v.GetDuration("TEMP_SWEEP_INTERVAL"),

		CameraMode:      strings.ToLower(v.GetString("CAMERA_MODE")),
		CameraDevice:    v.GetInt("CAMERA_DEVICE"),
		CameraWidth:     v.GetInt("CAMERA_WIDTH"),
		CameraHeight:    v.GetInt("CAMERA_HEIGHT"),
		CameraWarmup:    v.GetDuration("CAMERA_WARMUP"),
		PreviewInterval: v.GetDuration("PREVIEW_INTERVAL"),

		RateLimit:      v.GetFloat64("RATE_LIMIT"),
		RateBurst:      v.GetInt("RATE_BURST"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.DetectorInputSize <= 0 || c.OCRInputSize <= 0:
		return fmt.Errorf("model input sizes must be positive")
	case c.DetectionConfidence < 0 || c.DetectionConfidence > 1:
		return fmt.Errorf("DETECTION_CONFIDENCE must be within [0,1], got %v", c.DetectionConfidence)
	case c.OCRConfidence < 0 || c.OCRConfidence > 1:
		return fmt.Errorf("OCR_CONFIDENCE must be within [0,1], got %v", c.OCRConfidence)
	case c.NMSThreshold < 0 || c.NMSThreshold > 1:
		return fmt.Errorf("NMS_THRESHOLD must be within [0,1], got %v", c.NMSThreshold)
	case c.OCRLabels == "":
		return fmt.Errorf("OCR_LABELS must not be empty")
	case c.MaxUploadSize <= 0:
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	case c.TempFileTTL <= 0:
		return fmt.Errorf("TEMP_FILE_TTL must be positive, got %v", c.TempFileTTL)
	case c.TempSweepInterval <= 0:
		return fmt.Errorf("TEMP_SWEEP_INTERVAL must be positive, got %v", c.TempSweepInterval)
	case c.PreviewInterval <= 0:
		return fmt.Errorf("PREVIEW_INTERVAL must be positive, got %v", c.PreviewInterval)
	case c.CameraMode != CameraModeAuto && c.CameraMode != CameraModeOn && c.CameraMode != CameraModeOff:
		return fmt.Errorf("CAMERA_MODE must be one of auto, on, off, got %q", c.CameraMode)
	}
	return nil
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
