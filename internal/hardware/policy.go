package hardware

import (
	"fmt"
	"io"

	"lyricsense/internal/core"
)

// CPU pick strategies for machines without an accelerator.
const (
	PickSmallest       = "smallest"
	PickSecondSmallest = "second-smallest"
	PickLargest        = "largest"
)

// Policy names the knobs of model selection. The CPU pick used to be an
// unstated index into the compatible list; it is a setting now.
type Policy struct {
	CPUPick string
}

// PolicyFromConfig derives the selection policy from app config.
func PolicyFromConfig(config *core.HardwareConfig) Policy {
	return Policy{CPUPick: config.CPUPick}
}

// Recommend picks the model for the profile under the policy. With an
// accelerator it takes the largest compatible GPU-tier model; on CPU it
// applies the policy's pick over the compatible CPU-tier models, smallest
// first. Returns false when nothing in the catalog fits.
func Recommend(profile Profile, policy Policy) (ModelSpec, bool) {
	compatible := CompatibleModels(profile)
	if len(compatible) == 0 {
		return ModelSpec{}, false
	}

	if profile.hasAccelerator() {
		if pick, ok := largestOfTier(compatible, TierGPU); ok {
			return pick, true
		}
	}

	cpuModels := ofTier(compatible, TierCPU)
	if len(cpuModels) > 0 {
		return pickCPU(cpuModels, policy), true
	}

	return compatible[0], true
}

func ofTier(models []ModelSpec, tier string) []ModelSpec {
	var out []ModelSpec
	for _, m := range models {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	return out
}

func largestOfTier(models []ModelSpec, tier string) (ModelSpec, bool) {
	tiered := ofTier(models, tier)
	if len(tiered) == 0 {
		return ModelSpec{}, false
	}
	return tiered[len(tiered)-1], true
}

// pickCPU applies the policy over models sorted smallest first.
func pickCPU(models []ModelSpec, policy Policy) ModelSpec {
	switch policy.CPUPick {
	case PickSmallest:
		return models[0]
	case PickLargest:
		return models[len(models)-1]
	default:
		// The historical behavior: base over small when both fit.
		if len(models) >= 2 {
			return models[1]
		}
		return models[0]
	}
}

// WriteReport prints the profile and its model recommendation to w.
func WriteReport(w io.Writer, profile Profile, policy Policy) {
	fmt.Fprintln(w, profile.String())

	spec, ok := Recommend(profile, policy)
	if !ok {
		fmt.Fprintln(w, "\nNo local model fits this machine.")
		return
	}
	fmt.Fprintf(w, "\nRecommended local model: %s (%d MB, needs %g GB RAM)\n", spec.Name, spec.SizeMB, spec.MinRAMGB)
	fmt.Fprintf(w, "  %s\n", spec.Description)
}
