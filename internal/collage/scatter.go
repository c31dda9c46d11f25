package collage

import (
	"image"
	"math/rand"
	"time"

	"photobooth-server/internal/models"
)

const (
	// maxAttempts bounds rejection sampling per image before the
	// deterministic fallback slot is used, so no image is ever dropped.
	maxAttempts = 50
	// maxOverlap bounds the pairwise intersection between a candidate
	// and any placed image, as a fraction of the smaller of the two.
	maxOverlap = 0.30
	// borderChance is the probability a placed photo gets a solid border.
	borderChance = 0.70
	// sizeJitter is the +/- fraction applied to each size class.
	sizeJitter = 0.20
	// marginFrac keeps placements away from the canvas edges.
	marginFrac = 0.04
	// fallbackCols is the column count of the safe grid.
	fallbackCols = 3
)

// sizeClasses are the five preset photo sizes, as fractions of the
// shorter canvas side.
var sizeClasses = [5]float64{0.20, 0.25, 0.30, 0.35, 0.40}

// rotations is the discrete angle set; zero appears three times to
// bias toward near-level photos.
var rotations = [17]float64{-25, -20, -15, -10, -8, -5, -3, 0, 0, 0, 3, 5, 8, 10, 15, 20, 25}

// ScatterPlanner places photos at randomized positions, sizes and
// angles for the creative collage look, keeping pairwise overlap
// bounded. The final placement list is shuffled so draw order does not
// mirror submission order.
type ScatterPlanner struct {
	rng *rand.Rand
}

// NewScatterPlanner seeds the planner. Pass 0 for a time-based seed.
func NewScatterPlanner(seed int64) *ScatterPlanner {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ScatterPlanner{rng: rand.New(rand.NewSource(seed))}
}

func (p *ScatterPlanner) Plan(canvasW, canvasH int, sources []models.Orientation) []models.Placement {
	n := len(sources)
	if n == 0 {
		return nil
	}

	placed := make([]models.Placement, 0, n)
	for i := 0; i < n; i++ {
		pl, ok := p.tryPlace(i, sources[i], canvasW, canvasH, placed)
		if !ok {
			pl = fallbackSlot(i, n, canvasW, canvasH)
		}
		pl.Rotation = rotations[p.rng.Intn(len(rotations))]
		pl.Border = p.rng.Float64() < borderChance
		placed = append(placed, pl)
	}

	p.rng.Shuffle(len(placed), func(i, j int) {
		placed[i], placed[j] = placed[j], placed[i]
	})
	return placed
}

func (p *ScatterPlanner) tryPlace(src int, o models.Orientation, canvasW, canvasH int, placed []models.Placement) (models.Placement, bool) {
	short := canvasW
	if canvasH < short {
		short = canvasH
	}
	marginX := int(float64(canvasW) * marginFrac)
	marginY := int(float64(canvasH) * marginFrac)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		long := float64(short) * sizeClasses[p.rng.Intn(len(sizeClasses))]
		long *= 1 + (p.rng.Float64()*2-1)*sizeJitter

		w, h := int(long), int(long*2/3)
		if o == models.Portrait {
			w, h = h, w
		}
		if w > canvasW-2*marginX {
			w = canvasW - 2*marginX
		}
		if h > canvasH-2*marginY {
			h = canvasH - 2*marginY
		}

		cand := models.Placement{
			Source: src,
			X:      marginX + p.rng.Intn(maxInt(1, canvasW-2*marginX-w+1)),
			Y:      marginY + p.rng.Intn(maxInt(1, canvasH-2*marginY-h+1)),
			Width:  w,
			Height: h,
		}
		if overlapAcceptable(cand, placed) {
			return cand, true
		}
	}
	return models.Placement{}, false
}

// overlapAcceptable checks the candidate against every placed image.
// The bound applies to the smaller of the two areas, so a large late
// photo cannot bury a small early one.
func overlapAcceptable(cand models.Placement, placed []models.Placement) bool {
	candArea := cand.Width * cand.Height
	for _, p := range placed {
		smaller := candArea
		if a := p.Width * p.Height; a < smaller {
			smaller = a
		}
		if float64(intersectArea(cand, p)) > maxOverlap*float64(smaller) {
			return false
		}
	}
	return true
}

func intersectArea(a, b models.Placement) int {
	r := rect(a).Intersect(rect(b))
	return r.Dx() * r.Dy()
}

func rect(p models.Placement) image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// fallbackSlot is the idx-th cell of a 3-column safe grid. Crowded
// canvases land here once rejection sampling gives up.
func fallbackSlot(idx, n, canvasW, canvasH int) models.Placement {
	rows := (n + fallbackCols - 1) / fallbackCols
	cellW := canvasW / fallbackCols
	cellH := canvasH / rows
	row := idx / fallbackCols
	col := idx % fallbackCols
	return models.Placement{
		Source: idx,
		X:      col*cellW + cellGap/2,
		Y:      row*cellH + cellGap/2,
		Width:  cellW - cellGap,
		Height: cellH - cellGap,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
