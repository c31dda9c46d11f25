package models

// Orientation is the aspect class of a photo or of a target canvas.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// Valid reports whether o is one of the two known orientations.
func (o Orientation) Valid() bool {
	return o == Landscape || o == Portrait
}

// Resolution is an explicit target canvas size, e.g. a screen's
// native resolution.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Placement is one layout slot computed for a source image: where it
// goes on the canvas and how it is decorated. Source indexes into the
// image list the layout was computed for.
type Placement struct {
	Source   int
	X        int
	Y        int
	Width    int
	Height   int
	Rotation float64 // degrees, 0 = level
	Border   bool    // solid border around the photo
}

// CollageResult is what a compose call hands back to its caller.
// LocalPaths always has one entry per rendered orientation. When a
// remote mirror is configured, RemoteURLs is positional with
// LocalPaths, an empty string marking an upload that failed; without a
// mirror it is empty.
type CollageResult struct {
	LocalPaths []string `json:"local_paths"`
	RemoteURLs []string `json:"remote_urls,omitempty"`
}
