package collage

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"testing"

	"photobooth-server/internal/models"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want models.Orientation
	}{
		{"wide", 100, 50, models.Landscape},
		{"tall", 50, 100, models.Portrait},
		{"square counts as portrait", 80, 80, models.Portrait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.name, bytes.NewReader(encodePNG(t, tt.w, tt.h)))
			if got != tt.want {
				t.Errorf("Classify(%dx%d) = %s, want %s", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

// A corrupt header classifies as portrait and is logged with the file
// name, so a bad upload leaves a trace instead of vanishing silently.
func TestClassifyCorruptDefaultsToPortraitAndLogs(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	if got := Classify("sess/broken.jpg", strings.NewReader("not an image at all")); got != models.Portrait {
		t.Errorf("corrupt input classified as %s, want portrait", got)
	}
	if !strings.Contains(logged.String(), "sess/broken.jpg") {
		t.Errorf("decode failure not logged with the file name: %q", logged.String())
	}
}

func TestClassifyFileMissingDefaultsToPortrait(t *testing.T) {
	if got := ClassifyFile("/nonexistent/photo.jpg"); got != models.Portrait {
		t.Errorf("missing file classified as %s, want portrait", got)
	}
}
