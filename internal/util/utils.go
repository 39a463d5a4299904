package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/mitchellh/go-homedir"
)

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Saturate clamps a value to [0,1]
func Saturate(value float32) float32 {
	return Clamp(value, 0, 1)
}

// Fract returns the fractional part of x, always in [0,1) like GLSL fract
func Fract(x float32) float32 {
	return x - math32.Floor(x)
}

// Mod is the GLSL mod: x - y*floor(x/y), result has the sign of y
func Mod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

// Mix performs linear interpolation between a and b with t in [0,1]
func Mix(a, b, t float32) float32 {
	return a + t*(b-a)
}

// SmoothStep is the GLSL smoothstep between edge0 and edge1
func SmoothStep(edge0, edge1, x float32) float32 {
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// RotatePoint2D rotates a 2D point around the origin by the given angle (in radians)
func RotatePoint2D(x, y, angle float32) (float32, float32) {
	sin, cos := math32.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDirIfNotExist creates a directory if it doesn't exist
func CreateDirIfNotExist(dir string) error {
	if !DirExists(dir) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ListFilesWithExt lists all files in dir whose extension is one of exts
func ListFilesWithExt(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// GetFileNameWithoutExt returns the filename without extension
func GetFileNameWithoutExt(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
