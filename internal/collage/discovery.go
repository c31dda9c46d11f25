package collage

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"photobooth-server/internal/models"
	"photobooth-server/internal/storage"
)

// Sweeper walks the storage root for sessions that have photos but no
// collages yet and generates the missing artifacts. It backfills
// historical sessions at startup and can be re-run on demand.
type Sweeper struct {
	store *storage.FileStore
	comp  *Compositor
}

func NewSweeper(store *storage.FileStore, comp *Compositor) *Sweeper {
	return &Sweeper{store: store, comp: comp}
}

// Run sweeps once. Each folder's failure is logged and the sweep
// moves on; a bad folder never halts the pass.
func (s *Sweeper) Run(ctx context.Context) {
	root := s.store.Root()
	candidates := make(map[string]bool)

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Sweep: %v", err)
			return nil
		}
		if info.IsDir() || !storage.IsImagePath(p) || IsArtifactName(p) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !strings.Contains(rel, "/") {
			// stray file at the root, not part of any session
			return nil
		}
		candidates[SessionDir(rel)] = true
		return nil
	})
	if err != nil {
		log.Printf("Sweep: walk failed: %v", err)
		return
	}

	dirs := make([]string, 0, len(candidates))
	for d := range candidates {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	generated := 0
	for _, dir := range dirs {
		if s.comp.ExistsArtifact(dir, models.Landscape) || s.comp.ExistsArtifact(dir, models.Portrait) {
			continue
		}
		if _, err := s.comp.Compose(ctx, dir, nil); err != nil {
			log.Printf("Sweep: compose %s failed: %v", dir, err)
			continue
		}
		generated++
	}
	log.Printf("Sweep complete: %d sessions backfilled", generated)
}

// RunAfter schedules a one-shot background sweep, giving storage
// mounts and the network time to settle after process start.
func (s *Sweeper) RunAfter(delay time.Duration) {
	time.AfterFunc(delay, func() { s.Run(context.Background()) })
}
