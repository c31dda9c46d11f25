// Package collage renders all photos of a booth session into two
// print-ready collage images, one per target orientation.
package collage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"photobooth-server/internal/models"
	"photobooth-server/internal/storage"
)

var (
	// ErrSessionFolderNotFound means compose was invoked on a path
	// that does not exist under the storage root.
	ErrSessionFolderNotFound = errors.New("session folder not found")
	// ErrNoSourceImages means the folder exists but holds no photos.
	ErrNoSourceImages = errors.New("no source images in session folder")
)

// Default canvas sizes when no explicit target resolution is given.
const (
	defaultLandscapeW = 1920
	defaultLandscapeH = 1160
	defaultPortraitW  = 1080
	defaultPortraitH  = 2000
)

// ArtifactName returns the reserved output file name for one
// orientation, e.g. "collage_landscape.jpg".
func ArtifactName(o models.Orientation) string {
	return "collage_" + string(o) + ".jpg"
}

// IsArtifactName reports whether name (or its base) is a reserved
// collage output. Previously generated collages must never feed back
// into a new one.
func IsArtifactName(name string) bool {
	base := filepath.Base(name)
	return base == ArtifactName(models.Landscape) || base == ArtifactName(models.Portrait)
}

// SessionDir maps a possibly camera-nested folder path to its
// session-level folder: multiple cameras' images under one session
// converge on one pair of collages at the top.
func SessionDir(folder string) string {
	folder = strings.Trim(path.Clean(filepath.ToSlash(folder)), "/")
	if i := strings.Index(folder, "/"); i >= 0 {
		return folder[:i]
	}
	return folder
}

// Compositor orchestrates folder scanning, layout, rendering and the
// dual local+remote persist of collage artifacts. The remote store is
// injected and may be nil, which disables mirroring.
type Compositor struct {
	store   *storage.FileStore
	remote  storage.RemoteStore
	planner Planner
	quality int
}

func NewCompositor(store *storage.FileStore, remote storage.RemoteStore, planner Planner, quality int) *Compositor {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &Compositor{store: store, remote: remote, planner: planner, quality: quality}
}

// Compose renders both orientation collages for the session folder
// belongs to and persists them locally, then mirrors them remotely on
// a best-effort basis. Local paths are always returned on success.
// The mirror pass starts only after both local writes succeeded, so a
// failed compose never leaves a half-mirrored session. Artifacts are
// overwritten in place, so repeated calls are idempotent by path.
func (c *Compositor) Compose(ctx context.Context, folder string, target *models.Resolution) (models.CollageResult, error) {
	var result models.CollageResult

	sessionDir := SessionDir(folder)
	if sessionDir == "" || sessionDir == "." || !c.store.IsDir(sessionDir) {
		return result, fmt.Errorf("%s: %w", folder, ErrSessionFolderNotFound)
	}

	files, err := c.store.ScanImages(sessionDir, true)
	if err != nil {
		return result, fmt.Errorf("scan %s: %w", sessionDir, err)
	}
	var sources []string
	for _, f := range files {
		if !IsArtifactName(f) {
			sources = append(sources, f)
		}
	}
	if len(sources) == 0 {
		return result, fmt.Errorf("%s: %w", sessionDir, ErrNoSourceImages)
	}

	orients := c.classifyAll(sources)

	orientations := []models.Orientation{models.Landscape, models.Portrait}
	rels := make([]string, 0, len(orientations))
	blobs := make([][]byte, 0, len(orientations))
	for _, o := range orientations {
		w, h := canvasSize(o, target)
		data, err := c.render(sources, orients, w, h)
		if err != nil {
			return result, fmt.Errorf("render %s collage: %w", o, err)
		}

		rel := path.Join(sessionDir, ArtifactName(o))
		abs, err := c.store.Write(rel, data)
		if err != nil {
			return result, err
		}
		result.LocalPaths = append(result.LocalPaths, abs)
		rels = append(rels, rel)
		blobs = append(blobs, data)
	}

	if c.remote == nil {
		return result, nil
	}
	for i, rel := range rels {
		url, err := c.remote.Upload(ctx, rel, blobs[i], "image/jpeg")
		if err != nil {
			// local copy stands alone; the mirror is not authoritative.
			// The empty entry keeps RemoteURLs positional with LocalPaths.
			log.Printf("Remote mirror failed for %s: %v", rel, err)
			url = ""
		}
		result.RemoteURLs = append(result.RemoteURLs, url)
	}
	return result, nil
}

// ExistsArtifact reports whether the session already has the given
// orientation's collage on local storage.
func (c *Compositor) ExistsArtifact(folder string, o models.Orientation) bool {
	return c.store.Exists(path.Join(SessionDir(folder), ArtifactName(o)))
}

func (c *Compositor) classifyAll(files []string) []models.Orientation {
	out := make([]models.Orientation, len(files))
	for i, f := range files {
		abs, err := c.store.Abs(f)
		if err != nil {
			out[i] = models.Portrait
			continue
		}
		out[i] = ClassifyFile(abs)
	}
	return out
}

// canvasSize picks the canvas for one orientation. An explicit target
// resolution is used verbatim for the orientation it matches and
// swapped for the other.
func canvasSize(o models.Orientation, target *models.Resolution) (int, int) {
	if target != nil && target.Width > 0 && target.Height > 0 {
		if canvasOrientation(target.Width, target.Height) == o {
			return target.Width, target.Height
		}
		return target.Height, target.Width
	}
	if o == models.Landscape {
		return defaultLandscapeW, defaultLandscapeH
	}
	return defaultPortraitW, defaultPortraitH
}

// render composites every placement onto a white canvas in placement
// order (later placements draw over earlier ones, which is what the
// scatter layout's shuffle relies on) and encodes the result as JPEG.
func (c *Compositor) render(sources []string, orients []models.Orientation, canvasW, canvasH int) ([]byte, error) {
	placements := c.planner.Plan(canvasW, canvasH, orients)

	cv, err := newCanvas(canvasW, canvasH)
	if err != nil {
		return nil, err
	}
	defer cv.Close()

	for _, p := range placements {
		abs, err := c.store.Abs(sources[p.Source])
		if err != nil {
			continue
		}
		img, err := loadImage(abs)
		if err != nil {
			// a damaged file degrades the collage, it does not abort it
			log.Printf("Skipping %s: %v", sources[p.Source], err)
			continue
		}

		var tile image.Image = cropFill(img, p.Width, p.Height)
		if p.Border {
			tile = addBorder(tile)
		}
		if p.Rotation != 0 {
			tile = imaging.Rotate(tile, p.Rotation, color.NRGBA{})
		}

		b := tile.Bounds()
		cx := p.X + p.Width/2
		cy := p.Y + p.Height/2
		dst := image.Rect(cx-b.Dx()/2, cy-b.Dy()/2, cx-b.Dx()/2+b.Dx(), cy-b.Dy()/2+b.Dy())
		draw.Draw(cv.RGBA, dst, tile, b.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cv.RGBA, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode collage: %w", err)
	}
	return buf.Bytes(), nil
}

// loadImage decodes the image file at path by extension.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return webp.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".png":
		return png.Decode(f)
	default:
		img, _, err := image.Decode(f)
		return img, err
	}
}

// cropFill scales src to cover exactly w×h, cropping the overflow
// around the center. Cells are filled edge to edge, never letterboxed.
func cropFill(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 || w <= 0 || h <= 0 {
		return dst
	}

	// largest centered source window with the target aspect
	cw, ch := sw, sw*h/w
	if ch > sh {
		ch = sh
		cw = sh * w / h
	}
	x0 := sb.Min.X + (sw-cw)/2
	y0 := sb.Min.Y + (sh-ch)/2

	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+cw, y0+ch), xdraw.Src, nil)
	return dst
}

// addBorder pastes the tile onto a slightly larger white backing for
// the layered-print look of scattered photos.
func addBorder(tile image.Image) image.Image {
	b := tile.Bounds()
	m := b.Dx() / 25
	if m < 6 {
		m = 6
	}
	backing := imaging.New(b.Dx()+2*m, b.Dy()+2*m, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Paste(backing, tile, image.Pt(m, m))
}
