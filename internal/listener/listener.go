package listener

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pointake/internal/config"
	"pointake/internal/pipeline"
	"pointake/internal/refstore"
	"pointake/internal/storage"
)

type Service struct {
	db    *storage.DB
	cfg   config.Config
	store *refstore.Store
}

func NewService(db *storage.DB, cfg config.Config, store *refstore.Store) *Service {
	return &Service{db: db, cfg: cfg, store: store}
}

func (s *Service) Run(ctx context.Context) error {
	processor := pipeline.NewProcessingService(s.db, s.cfg, s.store)
	if err := processor.RefreshSnapshot(); err != nil {
		return err
	}

	for {
		if err := s.runCycle(processor); err != nil {
			fmt.Printf("watcher cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatcherIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(processor *pipeline.ProcessingService) error {
	paths, err := s.pendingFiles()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	processed := 0
	for _, path := range paths {
		orderID, _, err := processor.ProcessFile(path)
		if err != nil {
			fmt.Printf("watcher: %s failed: %v\n", filepath.Base(path), err)
			s.moveTo(path, "failed")
			continue
		}
		processed++

		if s.cfg.WatcherAutoExport {
			outName := fmt.Sprintf("%d_%s.json", orderID, trimExt(filepath.Base(path)))
			outputPath := filepath.Join(s.cfg.OutputDir, "erp", outName)
			if err := processor.ExportERP(orderID, outputPath); err != nil {
				fmt.Printf("watcher: export order %d failed: %v\n", orderID, err)
			}
		}

		s.moveTo(path, "done")
	}

	fmt.Printf("watcher cycle done found=%d processed=%d\n", len(paths), processed)
	return nil
}

func (s *Service) pendingFiles() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.IntakeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(s.cfg.IntakeDir, entry.Name()))
		if len(paths) >= s.cfg.WatcherBatch {
			break
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Service) moveTo(path, subdir string) {
	dir := filepath.Join(s.cfg.IntakeDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("watcher: mkdir %s: %v\n", dir, err)
		return
	}
	if err := os.Rename(path, filepath.Join(dir, filepath.Base(path))); err != nil {
		fmt.Printf("watcher: move %s: %v\n", filepath.Base(path), err)
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
