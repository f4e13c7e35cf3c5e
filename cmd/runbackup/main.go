// Command runbackup takes one backup and exits. Meant for cron-less
// environments and for verifying the S3 wiring.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"bawabt.com/labour/backup"
	"bawabt.com/labour/core"
	"bawabt.com/labour/infrastructure/devops"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if cfg.S3Bucket == "" {
		log.Fatal("s3Bucket is required")
	}

	db, err := core.Connect(cfg.DSN, cfg.MaxConnections)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	svc := &backup.Service{
		DB:     db,
		Bucket: cfg.S3Bucket,
		Prefix: cfg.BackupPrefix,
		Keep:   cfg.BackupKeep,
	}

	key, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("backup: %v", err)
	}
	log.Printf("backup created: %s", key)
}
