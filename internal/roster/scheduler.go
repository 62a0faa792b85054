package roster

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"infcheck/internal/providers"
	"infcheck/internal/roster/interfaces"
	"infcheck/internal/services"
	"infcheck/internal/structures"
)

// Scheduler runs the two background jobs: snapshot persistence and the
// remote-change poll that reloads the working copy after a foreign edit.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	working     services.WorkingCopyServiceInterface
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	saveInterval := s.config.Persistence.SaveInterval
	pollInterval := s.config.Roster.PollInterval

	s.cron.AddFunc(gron.Every(saveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting working copy: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted working copy to file %s", s.config.Persistence.FilePath)
	})

	if pollInterval > 0 {
		s.cron.AddFunc(gron.Every(pollInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			reloaded, err := s.working.CheckRemote(ctx)
			if err != nil {
				s.logger.Warnf(providers.TypeApp, "Remote poll failed: %s", err)
				return
			}
			if reloaded {
				s.logger.Infof(providers.TypeApp, "Remote roster change detected by poll")
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting working copy to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting working copy: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, working services.WorkingCopyServiceInterface, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		working:     working,
		fileManager: fileManager,
	}
}
