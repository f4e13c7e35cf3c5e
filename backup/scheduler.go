package backup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"bawabt.com/labour/core"
	"bawabt.com/labour/infrastructure/communication"
)

var schedulerActor = core.Actor{ID: "system", Name: "Automated Scheduler"}

// Scheduler owns the periodic backup task. It holds its task handle
// explicitly: Start and Stop bound its lifetime, nothing runs after Stop
// returns.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	audit    *core.AuditTrail
	notifier *communication.Slack
}

func NewScheduler(service *Service, spec string, audit *core.AuditTrail, notifier *communication.Slack) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		service:  service,
		audit:    audit,
		notifier: notifier,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("backup scheduler started")
}

// Stop halts scheduling and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Printf("backup scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	key, err := s.service.Run(ctx)
	if err != nil {
		log.Printf("scheduled backup failed: %v", err)
		s.audit.Log(ctx, schedulerActor, core.ActionBackupFailed, "backup", "failed", map[string]any{
			"error":     err.Error(),
			"scheduled": true,
		})
		if nerr := s.notifier.Error(fmt.Sprintf("Scheduled backup failed: %v", err)); nerr != nil {
			log.Printf("failed to notify backup failure: %v", nerr)
		}
		return
	}

	log.Printf("scheduled backup created: %s", key)
	s.audit.Log(ctx, schedulerActor, core.ActionAutomatedBackup, "backup", key, map[string]any{
		"scheduled": true,
	})
	if nerr := s.notifier.Info("Scheduled backup created: " + key); nerr != nil {
		log.Printf("failed to notify backup success: %v", nerr)
	}
}
