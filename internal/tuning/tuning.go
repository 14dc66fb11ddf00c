// Package tuning loads the runtime tuning file.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Scheduler granularity.
	SeedsPerItem int `yaml:"seeds_per_item"`
	QueueSize    int `yaml:"queue_size"`

	// Result sink cap.
	MaxResults int `yaml:"max_results"`

	// Session autosave interval in minutes; 0 disables.
	AutosaveCycle int `yaml:"autosave_cycle"`

	// Progress checkpoints are indexed at most once per this many items.
	ProgressEveryItems int `yaml:"progress_every_items"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func (t *Tuning) applyDefaults() {
	if t.SeedsPerItem <= 0 {
		t.SeedsPerItem = 1024
	}
	if t.QueueSize <= 0 {
		t.QueueSize = 1024
	}
	if t.MaxResults <= 0 {
		t.MaxResults = 65536
	}
	if t.ProgressEveryItems <= 0 {
		t.ProgressEveryItems = 64
	}
}

// Default returns the tuning used when no file is present.
func Default() Tuning {
	var t Tuning
	t.applyDefaults()
	return t
}
