// Package hardware inspects the host machine and recommends a local
// interpretation model that fits it.
package hardware

import "sort"

// Model tiers. GPU-tier models are only recommended when an accelerator is
// present.
const (
	TierCPU = "cpu"
	TierGPU = "gpu"
)

// ModelSpec describes one locally runnable model and what it needs.
type ModelSpec struct {
	ID          string
	Name        string
	SizeMB      int
	MinRAMGB    float64
	RequiresGPU bool
	Tier        string
	Description string
}

var modelCatalog = []ModelSpec{
	{
		ID:          "google/flan-t5-small",
		Name:        "FLAN-T5 Small",
		SizeMB:      308,
		MinRAMGB:    2.0,
		RequiresGPU: false,
		Tier:        TierCPU,
		Description: "Lightweight model, perfect for CPU-only systems. Fast but basic interpretations.",
	},
	{
		ID:          "google/flan-t5-base",
		Name:        "FLAN-T5 Base",
		SizeMB:      990,
		MinRAMGB:    4.0,
		RequiresGPU: false,
		Tier:        TierCPU,
		Description: "Balanced model for CPU. Better quality than Small, still reasonably fast.",
	},
	{
		ID:          "google/flan-t5-large",
		Name:        "FLAN-T5 Large",
		SizeMB:      2950,
		MinRAMGB:    8.0,
		RequiresGPU: false,
		Tier:        TierCPU,
		Description: "High-quality CPU model. Requires 8GB+ RAM. Slower but excellent results.",
	},
	{
		ID:          "google/flan-t5-xl",
		Name:        "FLAN-T5 XL",
		SizeMB:      11200,
		MinRAMGB:    16.0,
		RequiresGPU: true,
		Tier:        TierGPU,
		Description: "Very large model. Requires GPU with 16GB+ VRAM or 32GB+ system RAM.",
	},
	{
		ID:          "facebook/bart-large-cnn",
		Name:        "BART Large",
		SizeMB:      1630,
		MinRAMGB:    6.0,
		RequiresGPU: false,
		Tier:        TierCPU,
		Description: "Good for summarization and analysis. Moderate resource usage.",
	},
}

// Catalog returns the known model table.
func Catalog() []ModelSpec {
	out := make([]ModelSpec, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// Compatible reports whether the model fits the profile.
func (m ModelSpec) Compatible(profile Profile) bool {
	if profile.usableRAMGB() < m.MinRAMGB {
		return false
	}
	if m.RequiresGPU && !profile.hasAccelerator() {
		return false
	}
	return true
}

// CompatibleModels filters the catalog against the profile, smallest first.
func CompatibleModels(profile Profile) []ModelSpec {
	var compatible []ModelSpec
	for _, model := range modelCatalog {
		if model.Compatible(profile) {
			compatible = append(compatible, model)
		}
	}

	sort.Slice(compatible, func(i, j int) bool {
		return compatible[i].SizeMB < compatible[j].SizeMB
	})
	return compatible
}
