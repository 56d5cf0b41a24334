package pipeline

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"solace/internal/domain/journal"
	"solace/internal/errs"
)

type BucketConfig struct {
	Capacity int   `toml:"capacity"`
	WindowMs int64 `toml:"window_ms"`
}

type SimilarityConfig struct {
	BaseMin            float64 `toml:"base_min"`
	HighBand           float64 `toml:"high_band"`
	Window             int     `toml:"window"`
	MaxCandidates      int     `toml:"max_candidates"`
	RequireSameVersion bool    `toml:"require_same_version"`
}

type GenerationConfig struct {
	AnalysisTimeoutMs int64 `toml:"analysis_timeout_ms"`
	StoryTimeoutMs    int64 `toml:"story_timeout_ms"`
	EmbedTimeoutMs    int64 `toml:"embed_timeout_ms"`
	StoryMaxChars     int   `toml:"story_max_chars"`
}

// Profile is the tuning surface of the pipeline: every threshold, timeout
// and window lives here so deployments can retune without a rebuild.
type Profile struct {
	Version    int                     `toml:"version"`
	Risk       journal.RiskThresholds  `toml:"risk"`
	Buckets    map[string]BucketConfig `toml:"buckets"`
	Similarity SimilarityConfig        `toml:"similarity"`
	Generation GenerationConfig        `toml:"generation"`
}

func DefaultProfile() Profile {
	return Profile{
		Version: 1,
		Risk:    journal.DefaultRiskThresholds(),
		Buckets: map[string]BucketConfig{
			"entrySubmit": {Capacity: 100, WindowMs: 3_600_000},
		},
		Similarity: SimilarityConfig{
			BaseMin:            0.90,
			HighBand:           0.95,
			Window:             50,
			MaxCandidates:      5,
			RequireSameVersion: true,
		},
		Generation: GenerationConfig{
			AnalysisTimeoutMs: 10_000,
			StoryTimeoutMs:    15_000,
			EmbedTimeoutMs:    5_000,
			StoryMaxChars:     journal.StoryMaxChars,
		},
	}
}

// LoadProfile reads a TOML tuning profile. An empty path returns defaults.
// File values override defaults section by section.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	path = strings.TrimSpace(path)
	if path == "" {
		return profile, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errs.Wrap(err, "read profile")
	}
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, errs.Wrap(err, "parse profile")
	}
	if err := validateProfile(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func validateProfile(profile Profile) error {
	if profile.Version != 1 {
		return errors.New("unsupported profile version: expected version = 1")
	}
	for name, bucket := range profile.Buckets {
		if bucket.Capacity <= 0 {
			return errors.New("buckets." + name + ".capacity must be positive")
		}
		if bucket.WindowMs <= 0 {
			return errors.New("buckets." + name + ".window_ms must be positive")
		}
	}
	sim := profile.Similarity
	if sim.BaseMin <= 0 || sim.BaseMin > 1 {
		return errors.New("similarity.base_min must be in (0, 1]")
	}
	if sim.HighBand < sim.BaseMin || sim.HighBand > 1 {
		return errors.New("similarity.high_band must be in [base_min, 1]")
	}
	if sim.Window <= 0 || sim.MaxCandidates <= 0 {
		return errors.New("similarity.window and max_candidates must be positive")
	}
	gen := profile.Generation
	if gen.AnalysisTimeoutMs <= 0 || gen.StoryTimeoutMs <= 0 || gen.EmbedTimeoutMs <= 0 {
		return errors.New("generation timeouts must be positive")
	}
	if gen.StoryMaxChars <= 0 {
		return errors.New("generation.story_max_chars must be positive")
	}
	return nil
}
