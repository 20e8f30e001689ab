package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotName is the default file name for a screenshot taken at t.
func ScreenshotName(dir string, t time.Time) string {
	return filepath.Join(dir, "glhologram-"+t.Format("20060102-150405.000")+".png")
}

// SavePNG writes img to name, creating parent directories. It never
// overwrites an existing file. A partial file is removed on failure.
func SavePNG(name string, img image.Image) (err error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save screenshot: %w", err)
		}
	}

	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save screenshot: %w", cerr)
		}
		if err != nil {
			os.Remove(name)
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}
