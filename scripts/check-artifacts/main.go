package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"cancer-predictor/internal/common"
	"cancer-predictor/internal/ml"
)

func main() {
	var (
		modelPath  = flag.String("model", common.DefaultModelPath, "Model artifact path")
		scalerPath = flag.String("scaler", common.DefaultScalerPath, "Scaler artifact path")
	)
	flag.Parse()

	absModel, err := filepath.Abs(*modelPath)
	if err != nil {
		log.Fatalf("Failed to resolve model path: %v", err)
	}
	absScaler, err := filepath.Abs(*scalerPath)
	if err != nil {
		log.Fatalf("Failed to resolve scaler path: %v", err)
	}

	fmt.Printf("Model:  %s\n", absModel)
	fmt.Printf("Scaler: %s\n", absScaler)

	network, scaler, err := ml.LoadArtifacts(absModel, absScaler)
	if err != nil {
		log.Fatalf("Artifacts rejected: %v", err)
	}

	info := network.Info()
	fmt.Printf("\nVersion: %s, input width %d\n", info.Version, info.InputDim)
	for i, l := range info.Layers {
		fmt.Printf("  layer %d: %d units, %s\n", i, l.Units, l.Activation)
	}

	predictor, err := ml.NewPredictor(scaler, network, nil)
	if err != nil {
		log.Fatalf("Failed to create predictor: %v", err)
	}

	var zeros, atMean ml.FeatureVector
	for i := range atMean {
		atMean[i] = scaler.Mean(i)
	}

	cases := []struct {
		name string
		v    ml.FeatureVector
	}{
		{"all zeros", zeros},
		{"training means", atMean},
	}

	fmt.Println("\nSample predictions:")
	for _, tc := range cases {
		pred, err := predictor.Predict(context.Background(), tc.v)
		if err != nil {
			log.Fatalf("Prediction failed for %s: %v", tc.name, err)
		}
		fmt.Printf("  %-15s %-9s benign=%.4f malignant=%.4f\n", tc.name,
			common.ClassName(pred.ClassLabel), pred.Probabilities[common.ClassBenign], pred.Probabilities[common.ClassMalignant])
	}

	fmt.Println("\nArtifacts OK")
}
