package ai

import (
	"strings"

	"lpservice/internal/config"
	"lpservice/internal/logger"
	"lpservice/internal/recognition"
	"lpservice/internal/vision"
)

// LoadModels returns the registry loader for the detector and OCR networks.
func LoadModels(cfg *config.Config, logger *logger.Logger) recognition.LoadFunc[*vision.Frame] {
	return func() (recognition.Models[*vision.Frame], error) {
		logger.Info("Loading plate detector from %s", cfg.DetectorModelPath)
		detector, err := loadNetwork(cfg.DetectorModelPath, cfg.DetectorInputSize, cfg.DetectionConfidence, cfg.NMSThreshold)
		if err != nil {
			return recognition.Models[*vision.Frame]{}, err
		}

		logger.Info("Loading OCR model from %s", cfg.OCRModelPath)
		ocr, err := loadNetwork(cfg.OCRModelPath, cfg.OCRInputSize, cfg.OCRConfidence, cfg.NMSThreshold)
		if err != nil {
			detector.Close()
			return recognition.Models[*vision.Frame]{}, err
		}

		logger.Info("Recognition models loaded")
		return recognition.Models[*vision.Frame]{
			Detector: &Detector{network: detector},
			Reader:   &Reader{network: ocr, labels: strings.Split(cfg.OCRLabels, "")},
		}, nil
	}
}
