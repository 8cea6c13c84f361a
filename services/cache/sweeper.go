package cache

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/labstack/gommon/log"
)

// StartSweeper re-checks the size budget periodically, which catches entries
// written by other processes sharing the directory. Stop the returned
// scheduler on shutdown.
func (c *DiskCache) StartSweeper(everyMinutes int) *gocron.Scheduler {
	if c == nil || everyMinutes < 1 {
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(everyMinutes).Minutes().Do(func() {
		log.Debugf("[%s] - running cache sweep", time.Now().Format(time.RFC3339))
		c.EnsureSize()
	})
	if err != nil {
		log.Errorf("cannot schedule cache sweep: %v", err)
		return nil
	}

	s.StartAsync()
	log.Infof("cache sweeper running every %d minutes", everyMinutes)
	return s
}
