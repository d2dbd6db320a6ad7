// Command recognize runs plate recognition on image files without starting
// the HTTP server. It exits non-zero if the models fail to load or any image
// yields no plate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"lpservice/internal/config"
	"lpservice/internal/logger"
	"lpservice/internal/recognition"
	"lpservice/internal/service/ai"
	"lpservice/internal/vision"
)

func main() {
	detectorPath := flag.String("detector", "", "Plate detector model (overrides DETECTOR_MODEL_PATH)")
	ocrPath := flag.String("ocr", "", "OCR model (overrides OCR_MODEL_PATH)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: recognize [-detector path] [-ocr path] image...")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *detectorPath != "" {
		cfg.DetectorModelPath = *detectorPath
	}
	if *ocrPath != "" {
		cfg.OCRModelPath = *ocrPath
	}

	lg := logger.Discard()
	registry := recognition.NewRegistry(ai.LoadModels(cfg, lg))
	if err := registry.Load(); err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}
	defer registry.Close()

	pipeline := recognition.NewPipeline(registry, vision.Load, lg)

	failed := 0
	for _, path := range flag.Args() {
		result := pipeline.RecognizeFromPath(context.Background(), path)
		if !result.OK() {
			failed++
			fmt.Printf("%s\t-\t%s\n", path, result.Err.Message)
			continue
		}
		fmt.Printf("%s\t%s\t%.2f%%\n", path, result.Plate, result.Confidence*100)
	}

	if failed > 0 {
		registry.Close()
		os.Exit(1)
	}
}
