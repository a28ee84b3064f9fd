package view

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistryConfig bounds the session registry.
type RegistryConfig struct {
	SessionTTL      time.Duration
	MaxSessions     int
	CleanupInterval time.Duration
	BannerTTL       time.Duration
}

// Registry maps session ids to their ReportView. Idle views expire after
// SessionTTL and the registry never holds more than MaxSessions views.
type Registry struct {
	mu      sync.RWMutex
	views   map[string]*ReportView
	cfg     RegistryConfig
	tracker Tracker
	logger  *zap.Logger
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(cfg RegistryConfig, tracker Tracker, logger *zap.Logger) *Registry {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		views:   make(map[string]*ReportView),
		cfg:     cfg,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Start runs the periodic cleanup until Stop is called.
func (r *Registry) Start() {
	go r.periodicCleanup()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) periodicCleanup() {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Cleanup()
		case <-r.stop:
			return
		}
	}
}

// Get returns the view for id, creating one (with a fresh id when id is
// unknown or empty). created reports whether a new view was made.
func (r *Registry) Get(id string) (v *ReportView, created bool) {
	now := r.now()

	if id != "" {
		r.mu.RLock()
		v, ok := r.views[id]
		r.mu.RUnlock()
		if ok {
			v.touch(now)
			return v, false
		}
	}

	v = NewReportView(uuid.NewString(), r.cfg.BannerTTL)
	v.touch(now)

	r.mu.Lock()
	r.views[v.ID()] = v
	over := len(r.views) > r.cfg.MaxSessions
	r.mu.Unlock()

	if over {
		r.Cleanup()
	}
	return v, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Cleanup removes idle sessions, then the oldest ones while over the size limit.
func (r *Registry) Cleanup() {
	now := r.now()
	var evicted []*ReportView

	r.mu.Lock()
	for id, v := range r.views {
		if now.Sub(v.idleSince()) > r.cfg.SessionTTL {
			evicted = append(evicted, v)
			delete(r.views, id)
		}
	}

	if len(r.views) > r.cfg.MaxSessions {
		entries := make([]struct {
			id       string
			lastSeen time.Time
		}, 0, len(r.views))
		for id, v := range r.views {
			entries = append(entries, struct {
				id       string
				lastSeen time.Time
			}{id, v.idleSince()})
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].lastSeen.Before(entries[j].lastSeen)
		})

		for i := 0; i < len(entries)-r.cfg.MaxSessions; i++ {
			evicted = append(evicted, r.views[entries[i].id])
			delete(r.views, entries[i].id)
		}
	}
	r.mu.Unlock()

	for _, v := range evicted {
		v.abort()
		if r.tracker != nil {
			if err := r.tracker.Forget(context.Background(), v.ID()); err != nil {
				r.logger.Warn("failed to forget session", zap.String("session", v.ID()), zap.Error(err))
			}
		}
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted sessions", zap.Int("count", len(evicted)))
	}
}
