package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ResyncScheduler refreshes every dataset from the remote store on a cron
// schedule, warming the local cache so reads stay fast and the offline copy
// stays close to the remote one. One run also fires immediately at startup.
type ResyncScheduler struct {
	sync *SyncService
	cron *cron.Cron
	spec string
}

func NewResyncScheduler(sync *SyncService, spec string) *ResyncScheduler {
	return &ResyncScheduler{
		sync: sync,
		cron: cron.New(),
		spec: spec,
	}
}

// Start kicks off the startup refresh and schedules the periodic one. No-op
// when no remote backend is configured: there is nothing to refresh from.
func (s *ResyncScheduler) Start() {
	if !s.sync.RemoteConfigured() {
		logrus.Info("Resync scheduler not started, no remote backend configured")
		return
	}

	go s.RefreshAll()

	if _, err := s.cron.AddFunc(s.spec, s.RefreshAll); err != nil {
		logrus.WithFields(logrus.Fields{"spec": s.spec, "error": err.Error()}).Error("Invalid resync schedule")
		return
	}
	s.cron.Start()
	logrus.WithField("spec", s.spec).Info("Resync scheduler started")
}

// Stop halts the periodic refresh.
func (s *ResyncScheduler) Stop() {
	s.cron.Stop()
}

// RefreshAll re-runs the load path for every dataset. Failures inside each
// load already degrade to the cache, so a refresh can never make local state
// worse.
func (s *ResyncScheduler) RefreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	students := s.sync.LoadStudents(ctx)
	teachers := s.sync.LoadTeachers(ctx)
	records := s.sync.LoadAttendance(ctx)
	holidays := s.sync.LoadHolidays(ctx)
	s.sync.LoadSchoolConfig(ctx)

	logrus.WithFields(logrus.Fields{
		"students":   len(students),
		"teachers":   len(teachers),
		"attendance": len(records),
		"holidays":   len(holidays),
		"duration":   time.Since(start).String(),
	}).Info("Full dataset resync completed")
}
