package jobs

import (
	"sync"

	"github.com/roylee0704/gron"

	"heatmapd/internal/cache"
	"heatmapd/internal/jobs/interfaces"
	"heatmapd/internal/providers"
	"heatmapd/internal/structures"
)

// Scheduler runs the periodic disk-cache sweep so expired records are
// reclaimed even when no request ever touches them again.
type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	disk   *cache.DiskCache
	cron   *gron.Cron
	opsMu  sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.DiskCache.SweepInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		removed, err := s.disk.Sweep()
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Cache sweep error: %s", err)
			return
		}
		if removed > 0 {
			s.logger.Infof(providers.TypeApp, "Cache sweep removed %d expired records", removed)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, disk *cache.DiskCache) interfaces.SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		disk:   disk,
	}
}
