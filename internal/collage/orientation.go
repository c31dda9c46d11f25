package collage

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"

	_ "github.com/chai2010/webp"

	"photobooth-server/internal/models"
)

// Classify reads only the image header to decide landscape vs
// portrait. Square images count as portrait by convention. An
// unreadable header also classifies as portrait, logged under name:
// one corrupt file must not abort a whole collage run.
func Classify(name string, r io.Reader) models.Orientation {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		log.Printf("Classify %s: %v", name, err)
		return models.Portrait
	}
	if cfg.Width > cfg.Height {
		return models.Landscape
	}
	return models.Portrait
}

// ClassifyFile classifies the image at path.
func ClassifyFile(path string) models.Orientation {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Classify %s: %v", path, err)
		return models.Portrait
	}
	defer f.Close()
	return Classify(path, f)
}
