package services

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/wanderlog/backend/internal/models"
	"github.com/wanderlog/backend/internal/storage"
	"github.com/wanderlog/backend/pkg/logger"
	"gorm.io/gorm"
)

// Sweeper periodically reclaims uploaded files that no Post or User
// references anymore. A file is only reaped when it is unreferenced, not
// marked pending in the store, and older than the retention threshold.
// Each pass is best-effort: per-file failures are logged and skipped.
type Sweeper struct {
	DB        *gorm.DB
	Store     *storage.DiskStore
	Interval  time.Duration
	Retention time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(db *gorm.DB, store *storage.DiskStore, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		DB:        db,
		Store:     store,
		Interval:  interval,
		Retention: retention,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) sweep() {
	referenced, err := s.referencedPaths()
	if err != nil {
		logger.Error("sweep_reference_query_failed", err, nil)
		return
	}

	cutoff := time.Now().Add(-s.Retention)
	var scanned, removed int

	walkErr := filepath.WalkDir(s.Store.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Error("sweep_walk_failed", err, map[string]interface{}{"path": path})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		scanned++

		webPath, err := s.Store.WebPath(path)
		if err != nil {
			return nil
		}
		if _, ok := referenced[webPath]; ok {
			return nil
		}
		if s.Store.IsPending(webPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Error("sweep_stat_failed", err, map[string]interface{}{"path": path})
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			logger.Error("sweep_remove_failed", err, map[string]interface{}{"path": path})
			return nil
		}
		removed++
		logger.Info("sweep_removed_file", map[string]interface{}{"path": webPath})
		return nil
	})
	if walkErr != nil {
		logger.Error("sweep_failed", walkErr, nil)
		return
	}

	logger.Info("sweep_completed", map[string]interface{}{
		"scanned": scanned,
		"removed": removed,
	})
}

func (s *Sweeper) referencedPaths() (map[string]struct{}, error) {
	referenced := make(map[string]struct{})

	var postPaths []string
	if err := s.DB.Model(&models.Post{}).Where("image_path <> ''").Pluck("image_path", &postPaths).Error; err != nil {
		return nil, err
	}
	for _, p := range postPaths {
		referenced[p] = struct{}{}
	}

	var profilePaths []string
	if err := s.DB.Model(&models.User{}).Where("profile_image <> ''").Pluck("profile_image", &profilePaths).Error; err != nil {
		return nil, err
	}
	for _, p := range profilePaths {
		referenced[p] = struct{}{}
	}

	return referenced, nil
}
