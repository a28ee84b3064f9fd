package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const monthLayout = "2006-01"

// MonthlyStats represents submission outcomes for a specific month
type MonthlyStats struct {
	Submissions   int            `json:"submissions"`
	Successes     int            `json:"successes"`
	AppErrors     int            `json:"app_errors"`
	Failures      int            `json:"failures"`
	Superseded    int            `json:"superseded"`
	InvalidInput  int            `json:"invalid_input"`
	SectionErrors map[string]int `json:"section_errors,omitempty"`
	TotalSeconds  float64        `json:"total_seconds"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// AverageSeconds is the mean time a timed submission took.
func (m MonthlyStats) AverageSeconds() float64 {
	timed := m.Submissions - m.InvalidInput
	if timed <= 0 {
		return 0
	}
	return m.TotalSeconds / float64(timed)
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string, logger *zap.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logger,
		now:         time.Now,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes statistics to file through a temporary file and rename.
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.saveAndLog()
		case <-ticker.C:
			s.saveAndLog()
		case <-s.done:
			s.saveAndLog()
			return
		}
	}
}

func (s *Storage) saveAndLog() {
	if err := s.save(); err != nil {
		s.logger.Error("failed to persist statistics", zap.String("path", s.filePath), zap.Error(err))
	}
}

// Close stops the background writer after a final save.
func (s *Storage) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
	})
}

// Flush writes the statistics to disk now.
func (s *Storage) Flush() error {
	return s.save()
}

func (s *Storage) currentMonth() string {
	return s.now().Format(monthLayout)
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// month returns the current month's counters. Callers hold the write lock.
func (s *Storage) month() *MonthlyStats {
	key := s.currentMonth()
	stats, exists := s.stats[key]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[key] = stats
	}
	return stats
}

func (s *Storage) touched(stats *MonthlyStats) {
	now := s.now()
	stats.LastUpdated = now
	if now.Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = now
	}
}

// RecordOutcome counts one finished submission.
func (s *Storage) RecordOutcome(outcome string, elapsed time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats := s.month()
	stats.Submissions++
	switch outcome {
	case "success":
		stats.Successes++
	case "app_error":
		stats.AppErrors++
	case "superseded", "cancelled":
		stats.Superseded++
	case "invalid_input":
		stats.InvalidInput++
	default:
		stats.Failures++
	}
	if outcome != "invalid_input" {
		stats.TotalSeconds += elapsed.Seconds()
	}
	s.touched(stats)
}

// RecordSectionError counts a report section the analyzer could not produce.
func (s *Storage) RecordSectionError(section string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats := s.month()
	if stats.SectionErrors == nil {
		stats.SectionErrors = make(map[string]int)
	}
	stats.SectionErrors[section]++
	s.touched(stats)
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.currentMonth())
	return stats
}

// Cleanup removes statistics older than retainMonths months before the
// current one. The current month is always kept.
func (s *Storage) Cleanup(retainMonths int) {
	now := s.now()
	keep := make(map[string]bool, retainMonths+1)
	for i := 0; i <= retainMonths; i++ {
		keep[now.AddDate(0, -i, 0).Format(monthLayout)] = true
	}

	s.mutex.Lock()
	removed := 0
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.logger.Debug("cleaned up statistics", zap.Int("retain_months", retainMonths), zap.Int("removed", removed))
}

// GetMonthlyStats returns a copy of the statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats, exists := s.stats[yearMonth]
	if !exists {
		return MonthlyStats{}, false
	}
	out := *stats
	if stats.SectionErrors != nil {
		out.SectionErrors = make(map[string]int, len(stats.SectionErrors))
		for k, v := range stats.SectionErrors {
			out.SectionErrors[k] = v
		}
	}
	return out, true
}

// GetAllMonths returns all months that have statistics, newest first
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}
