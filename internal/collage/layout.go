package collage

import (
	"math"

	"photobooth-server/internal/models"
)

// Planner computes one placement per source image on a canvas of the
// given size. Input is the orientation of each source, in enumeration
// order; Placement.Source indexes back into it.
type Planner interface {
	Plan(canvasW, canvasH int, sources []models.Orientation) []models.Placement
}

// cellGap is the pixel padding between grid cells.
const cellGap = 10

// GridPlanner lays images out in a deterministic grid sized by a
// fixed lookup table keyed on image count and canvas orientation.
type GridPlanner struct{}

func (GridPlanner) Plan(canvasW, canvasH int, sources []models.Orientation) []models.Placement {
	n := len(sources)
	if n == 0 {
		return nil
	}

	co := canvasOrientation(canvasW, canvasH)
	rows, cols := gridShape(n, co)
	order := cellOrder(sources, co)

	cellW := canvasW / cols
	cellH := canvasH / rows

	placements := make([]models.Placement, 0, n)
	for cell, src := range order {
		row := cell / cols
		col := cell % cols
		placements = append(placements, models.Placement{
			Source: src,
			X:      col*cellW + cellGap/2,
			Y:      row*cellH + cellGap/2,
			Width:  cellW - cellGap,
			Height: cellH - cellGap,
		})
	}
	return placements
}

func canvasOrientation(w, h int) models.Orientation {
	if w >= h {
		return models.Landscape
	}
	return models.Portrait
}

// gridShape returns (rows, cols) for n images. Beyond the table, the
// grid approximates a 16:9 tiling (9:16 for portrait canvases).
func gridShape(n int, canvas models.Orientation) (rows, cols int) {
	landscape := canvas == models.Landscape
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		if landscape {
			return 1, 2
		}
		return 2, 1
	case n <= 4:
		return 2, 2
	case n <= 6:
		if landscape {
			return 2, 3
		}
		return 3, 2
	case n <= 9:
		return 3, 3
	case n <= 12:
		if landscape {
			return 3, 4
		}
		return 4, 3
	case n <= 16:
		return 4, 4
	case n <= 20:
		if landscape {
			return 4, 5
		}
		return 5, 4
	default:
		long := int(math.Ceil(math.Sqrt(float64(n) * 1.77)))
		short := (n + long - 1) / long
		if landscape {
			return short, long
		}
		return long, short
	}
}

// cellOrder assigns source indices to grid cells. For six images the
// landscape shots take the visually central cells so wide hero shots
// end up in the middle of the grid; everything else keeps enumeration
// order.
func cellOrder(sources []models.Orientation, canvas models.Orientation) []int {
	n := len(sources)
	order := make([]int, n)
	if n != 6 {
		for i := range order {
			order[i] = i
		}
		return order
	}

	centers := map[int]bool{1: true, 4: true} // 2x3 grid
	if canvas == models.Portrait {
		centers = map[int]bool{2: true, 3: true} // 3x2 grid
	}

	var land, port []int
	for i, o := range sources {
		if o == models.Landscape {
			land = append(land, i)
		} else {
			port = append(port, i)
		}
	}

	for cell := 0; cell < n; cell++ {
		switch {
		case centers[cell] && len(land) > 0:
			order[cell], land = land[0], land[1:]
		case len(port) > 0:
			order[cell], port = port[0], port[1:]
		default:
			// landscape overflow fills whatever cells remain
			order[cell], land = land[0], land[1:]
		}
	}
	return order
}
