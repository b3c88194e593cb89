package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so profile files and request bodies can use
// "30s" style values.
type Duration time.Duration

// UnmarshalYAML parses a duration string like "45s" or "2m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalJSON parses a quoted duration string like "45s" or "2m".
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid duration %s: %w", data, err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// FeedProfile is a named set of overrides for the feeder options, loaded
// from a YAML profiles file or a feed request body. Nil fields leave the
// base configuration untouched, so a profile only has to name what it
// changes.
type FeedProfile struct {
	TargetQueueCount   *int      `yaml:"target_queue_count" json:"target_queue_count"`
	MaxCycles          *int      `yaml:"max_cycles" json:"max_cycles"`
	MaxProcessingTime  *Duration `yaml:"max_processing_time" json:"max_processing_time"`
	InnerScanBatchSize *int      `yaml:"inner_scan_batch_size" json:"inner_scan_batch_size"`
	ChunkSize          *int      `yaml:"chunk_size" json:"chunk_size"`
	CheckConcurrency   *int      `yaml:"check_concurrency" json:"check_concurrency"`
}

// Apply overlays the profile onto a base feeder configuration and validates
// the result.
func (p FeedProfile) Apply(base FeederConfig) (FeederConfig, error) {
	if p.TargetQueueCount != nil {
		base.TargetQueueCount = *p.TargetQueueCount
	}
	if p.MaxCycles != nil {
		base.MaxCycles = *p.MaxCycles
	}
	if p.MaxProcessingTime != nil {
		base.MaxProcessingTime = time.Duration(*p.MaxProcessingTime)
	}
	if p.InnerScanBatchSize != nil {
		base.InnerScanBatchSize = *p.InnerScanBatchSize
	}
	if p.ChunkSize != nil {
		base.ChunkSize = *p.ChunkSize
	}
	if p.CheckConcurrency != nil {
		base.CheckConcurrency = *p.CheckConcurrency
	}

	if err := base.Validate(); err != nil {
		return FeederConfig{}, fmt.Errorf("invalid feed profile: %w", err)
	}
	return base, nil
}

// LoadFeedProfiles reads a YAML file mapping profile names to overrides.
func LoadFeedProfiles(path string) (map[string]FeedProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed profiles file: %w", err)
	}

	profiles := make(map[string]FeedProfile)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse feed profiles file: %w", err)
	}

	return profiles, nil
}
