package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/stratify/pkg/config"
)

// ExampleDefault demonstrates the defaults of the fixed iris run.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Source: %s\n", cfg.Source.Path)
	fmt.Printf("Destination: %s\n", cfg.Destination.Path)
	fmt.Printf("Per class: train=%d test=%d\n", cfg.Sampling.TrainPerClass, cfg.Sampling.TestPerClass)
	fmt.Printf("Seeded: %v\n", cfg.Sampling.HasSeed())

	// Output:
	// Source: iris.data
	// Destination: iris_subset.csv
	// Per class: train=4 test=1
	// Seeded: false
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Sampling.TrainPerClass = 0

	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid:", err)
	}

	// Output:
	// invalid: sampling.train_per_class must be positive
}

// ExampleLoad demonstrates loading configuration from a YAML file
// with environment variable substitution.
func ExampleLoad() {
	dir, err := os.MkdirTemp("", "stratify-config")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("STRATIFY_EXAMPLE_DIR", "/data")
	defer os.Unsetenv("STRATIFY_EXAMPLE_DIR")

	path := filepath.Join(dir, "stratify.yaml")
	content := "source:\n  path: ${STRATIFY_EXAMPLE_DIR}/iris.data\nsampling:\n  seed: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Fatal(err)
	}

	cfg := config.Default()
	if err := config.Load(path, cfg); err != nil {
		log.Fatal(err)
	}

	fmt.Println(cfg.Source.Path)
	fmt.Println(*cfg.Sampling.Seed)
	fmt.Println(cfg.Sampling.TrainPerClass)

	// Output:
	// /data/iris.data
	// 7
	// 4
}
