package hardware

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"
)

const (
	defaultNvidiaDir = "/proc/driver/nvidia"
	kbPerGB          = 1024 * 1024
)

// Profile describes the host machine as far as model selection cares.
type Profile struct {
	CPUCount       int
	CPUModel       string
	TotalRAMGB     float64
	AvailableRAMGB float64
	HasCUDA        bool
	HasMPS         bool
	GPUName        string
}

// usableRAMGB is the figure compatibility checks run against. Available RAM
// when the kernel reports it, total otherwise.
func (p Profile) usableRAMGB() float64 {
	if p.AvailableRAMGB > 0 {
		return p.AvailableRAMGB
	}
	return p.TotalRAMGB
}

func (p Profile) hasAccelerator() bool {
	return p.HasCUDA || p.HasMPS
}

// String renders the profile for the shell.
func (p Profile) String() string {
	lines := []string{
		fmt.Sprintf("CPU: %s (%d cores)", p.cpuModelOrUnknown(), p.CPUCount),
		fmt.Sprintf("RAM: %.1fGB available / %.1fGB total", p.AvailableRAMGB, p.TotalRAMGB),
	}
	switch {
	case p.HasCUDA:
		lines = append(lines, fmt.Sprintf("GPU: %s (CUDA)", p.gpuNameOrUnknown()))
	case p.HasMPS:
		lines = append(lines, "GPU: Apple Silicon (Metal)")
	default:
		lines = append(lines, "GPU: None (CPU only)")
	}
	return strings.Join(lines, "\n")
}

func (p Profile) cpuModelOrUnknown() string {
	if p.CPUModel == "" {
		return "Unknown CPU"
	}
	return p.CPUModel
}

func (p Profile) gpuNameOrUnknown() string {
	if p.GPUName == "" {
		return "NVIDIA GPU"
	}
	return p.GPUName
}

// Detect inspects the host. It never fails: signals that cannot be read
// leave their zero values in the profile.
func Detect(logger *zap.Logger) Profile {
	return detectAt(procfs.DefaultMountPoint, defaultNvidiaDir, logger)
}

func detectAt(procMount, nvidiaDir string, logger *zap.Logger) Profile {
	var profile Profile

	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		profile.HasMPS = true
		profile.GPUName = "Apple Silicon"
	}

	fs, err := procfs.NewFS(procMount)
	if err != nil {
		logger.Debug("No procfs available", zap.Error(err))
		return profile
	}

	if meminfo, err := fs.Meminfo(); err == nil {
		if meminfo.MemTotal != nil {
			profile.TotalRAMGB = float64(*meminfo.MemTotal) / kbPerGB
		}
		if meminfo.MemAvailable != nil {
			profile.AvailableRAMGB = float64(*meminfo.MemAvailable) / kbPerGB
		}
	} else {
		logger.Debug("Failed to read meminfo", zap.Error(err))
	}

	if cpus, err := fs.CPUInfo(); err == nil && len(cpus) > 0 {
		profile.CPUCount = len(cpus)
		profile.CPUModel = cpus[0].ModelName
	} else if err != nil {
		logger.Debug("Failed to read cpuinfo", zap.Error(err))
	}

	if info, err := os.Stat(nvidiaDir); err == nil && info.IsDir() {
		profile.HasCUDA = true
		profile.GPUName = nvidiaGPUName(nvidiaDir)
		logger.Debug("NVIDIA driver detected", zap.String("gpu", profile.GPUName))
	}

	return profile
}

// nvidiaGPUName reads the model line from the driver's per-GPU information
// file. Best effort, empty on any failure.
func nvidiaGPUName(nvidiaDir string) string {
	matches, err := filepath.Glob(filepath.Join(nvidiaDir, "gpus", "*", "information"))
	if err != nil || len(matches) == 0 {
		return ""
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "Model:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Model:"))
		}
	}
	return ""
}
