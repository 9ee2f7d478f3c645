package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Record 玩家战绩
type Record struct {
	UserID string
	Wins   int64
	Losses int64
}

// Stats 战绩存储
type Stats interface {
	IncrementWins(ctx context.Context, userID string) error
	IncrementLosses(ctx context.Context, userID string) error
	List(ctx context.Context) ([]Record, error)
}

func sortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
}

// MemoryStats 进程内战绩，重启即丢失
type MemoryStats struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStats 创建进程内战绩存储
func NewMemoryStats() *MemoryStats {
	return &MemoryStats{records: make(map[string]*Record)}
}

func (s *MemoryStats) record(userID string) *Record {
	r, ok := s.records[userID]
	if !ok {
		r = &Record{UserID: userID}
		s.records[userID] = r
	}
	return r
}

// IncrementWins 胜场 +1
func (s *MemoryStats) IncrementWins(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(userID).Wins++
	return nil
}

// IncrementLosses 负场 +1
func (s *MemoryStats) IncrementLosses(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(userID).Losses++
	return nil
}

// List 按用户 ID 排序返回全部战绩
func (s *MemoryStats) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, *r)
	}
	sortRecords(records)
	return records, nil
}
