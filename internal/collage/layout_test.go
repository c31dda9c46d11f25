package collage

import (
	"testing"

	"photobooth-server/internal/models"
)

func portraits(n int) []models.Orientation {
	out := make([]models.Orientation, n)
	for i := range out {
		out[i] = models.Portrait
	}
	return out
}

func TestGridCoverage(t *testing.T) {
	canvases := []struct {
		name string
		w, h int
	}{
		{"landscape", 1920, 1160},
		{"portrait", 1080, 2000},
	}

	p := GridPlanner{}
	for _, c := range canvases {
		for n := 1; n <= 100; n++ {
			placements := p.Plan(c.w, c.h, portraits(n))
			if len(placements) != n {
				t.Fatalf("%s n=%d: got %d placements", c.name, n, len(placements))
			}

			cells := make(map[[2]int]bool)
			seen := make(map[int]bool)
			for _, pl := range placements {
				if pl.Width <= 0 || pl.Height <= 0 {
					t.Fatalf("%s n=%d: degenerate placement %+v", c.name, n, pl)
				}
				if pl.X < 0 || pl.Y < 0 || pl.X+pl.Width > c.w || pl.Y+pl.Height > c.h {
					t.Fatalf("%s n=%d: placement outside canvas: %+v", c.name, n, pl)
				}
				key := [2]int{pl.X, pl.Y}
				if cells[key] {
					t.Fatalf("%s n=%d: two placements in cell at (%d,%d)", c.name, n, pl.X, pl.Y)
				}
				cells[key] = true
				if seen[pl.Source] {
					t.Fatalf("%s n=%d: source %d placed twice", c.name, n, pl.Source)
				}
				seen[pl.Source] = true
			}
		}
	}
}

func TestGridShapeTable(t *testing.T) {
	tests := []struct {
		n          int
		canvas     models.Orientation
		rows, cols int
	}{
		{1, models.Landscape, 1, 1},
		{2, models.Landscape, 1, 2},
		{2, models.Portrait, 2, 1},
		{3, models.Landscape, 2, 2},
		{4, models.Portrait, 2, 2},
		{5, models.Landscape, 2, 3},
		{6, models.Landscape, 2, 3},
		{6, models.Portrait, 3, 2},
		{9, models.Portrait, 3, 3},
		{10, models.Landscape, 3, 4},
		{12, models.Portrait, 4, 3},
		{16, models.Landscape, 4, 4},
		{17, models.Landscape, 4, 5},
		{20, models.Portrait, 5, 4},
	}
	for _, tt := range tests {
		rows, cols := gridShape(tt.n, tt.canvas)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("gridShape(%d, %s) = %dx%d, want %dx%d", tt.n, tt.canvas, rows, cols, tt.rows, tt.cols)
		}
	}
}

func TestGridShapeBeyondTable(t *testing.T) {
	for n := 21; n <= 100; n++ {
		for _, canvas := range []models.Orientation{models.Landscape, models.Portrait} {
			rows, cols := gridShape(n, canvas)
			if rows*cols < n {
				t.Errorf("gridShape(%d, %s) = %dx%d does not fit %d images", n, canvas, rows, cols, n)
			}
			if canvas == models.Landscape && cols < rows {
				t.Errorf("gridShape(%d, landscape) = %dx%d is taller than wide", n, rows, cols)
			}
			if canvas == models.Portrait && rows < cols {
				t.Errorf("gridShape(%d, portrait) = %dx%d is wider than tall", n, rows, cols)
			}
		}
	}
}

// With six images the landscape shots must land in the visually
// central cells for both canvas orientations.
func TestSixImageHeroCentering(t *testing.T) {
	sources := []models.Orientation{
		models.Portrait,
		models.Landscape,
		models.Portrait,
		models.Landscape,
		models.Portrait,
		models.Portrait,
	}

	tests := []struct {
		name        string
		w, h        int
		rows, cols  int
		centerCells map[int]bool
	}{
		{"landscape canvas", 1920, 1160, 2, 3, map[int]bool{1: true, 4: true}},
		{"portrait canvas", 1080, 2000, 3, 2, map[int]bool{2: true, 3: true}},
	}

	p := GridPlanner{}
	for _, tt := range tests {
		placements := p.Plan(tt.w, tt.h, sources)
		cellW := tt.w / tt.cols
		cellH := tt.h / tt.rows

		for _, pl := range placements {
			col := pl.X / cellW
			row := pl.Y / cellH
			cell := row*tt.cols + col

			isLandscapeSource := pl.Source == 1 || pl.Source == 3
			if isLandscapeSource != tt.centerCells[cell] {
				t.Errorf("%s: source %d (landscape=%v) placed in cell %d", tt.name, pl.Source, isLandscapeSource, cell)
			}
		}
	}
}

// Concrete scenario from the booth's reference setup: two photos on a
// 1920x1080 canvas form a 1x2 grid in enumeration order.
func TestTwoImageGridScenario(t *testing.T) {
	sources := []models.Orientation{models.Landscape, models.Portrait}
	placements := GridPlanner{}.Plan(1920, 1080, sources)

	if len(placements) != 2 {
		t.Fatalf("got %d placements, want 2", len(placements))
	}
	for i, pl := range placements {
		if pl.Source != i {
			t.Errorf("placement %d holds source %d, want enumeration order", i, pl.Source)
		}
		wantX := i*960 + cellGap/2
		if pl.X != wantX || pl.Y != cellGap/2 {
			t.Errorf("placement %d at (%d,%d), want (%d,%d)", i, pl.X, pl.Y, wantX, cellGap/2)
		}
		if pl.Width != 960-cellGap || pl.Height != 1080-cellGap {
			t.Errorf("placement %d sized %dx%d, want %dx%d", i, pl.Width, pl.Height, 960-cellGap, 1080-cellGap)
		}
	}
}

func TestGridEmptyInput(t *testing.T) {
	if got := (GridPlanner{}).Plan(1920, 1160, nil); got != nil {
		t.Errorf("empty input produced %d placements", len(got))
	}
}
