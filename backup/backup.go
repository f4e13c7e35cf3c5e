// Package backup snapshots the datastore into xlsx workbooks stored on S3.
package backup

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"bawabt.com/labour/export"
	"bawabt.com/labour/infrastructure/filesystem"
)

type Service struct {
	DB     *gorm.DB
	Bucket string
	Prefix string
	Keep   int
}

// Run creates one backup and prunes old ones down to Keep. Returns the S3
// key of the new backup.
func (s *Service) Run(ctx context.Context) (string, error) {
	f, err := export.BackupWorkbook(ctx, s.DB)
	if err != nil {
		return "", fmt.Errorf("export workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("encode workbook: %w", err)
	}

	key := s.Prefix + "Backup_" + time.Now().UTC().Format("2006-01-02_15-04-05") + ".xlsx"
	if err := filesystem.WriteFile(ctx, s.Bucket, key, buf); err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}

	if s.Keep > 0 {
		if _, err := s.prune(ctx); err != nil {
			// The backup itself succeeded, pruning is best effort.
			log.Printf("prune old backups: %v", err)
		}
	}

	return key, nil
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := filesystem.ListFiles(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, err
	}
	// Newest first; keys embed a sortable timestamp.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (s *Service) prune(ctx context.Context) (int, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) <= s.Keep {
		return 0, nil
	}

	deleted := 0
	for _, key := range keys[s.Keep:] {
		if err := filesystem.DeleteFile(ctx, s.Bucket, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
