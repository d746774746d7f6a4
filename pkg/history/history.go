package history

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/motivateai/rag/internal/models"
)

// DefaultLimit caps stored history; the oldest entries are pruned past it.
const DefaultLimit = 50

// Entry is one recorded query with the parameters and result it produced.
type Entry struct {
	ID        string `badgerhold:"key"`
	Query     string
	K         int
	Threshold float64
	Filter    string
	Answer    string
	Sources   []models.Source
	CreatedAt time.Time `badgerhold:"index"`
}

// Store persists query history in a local Badger directory.
type Store struct {
	db    *badgerhold.Store
	limit int
}

// Open opens (creating if needed) the history database under dir.
func Open(dir string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return &Store{db: db, limit: limit}, nil
}

// Add records an entry, assigning its ID and timestamp, and prunes the
// oldest entries beyond the store limit.
func (s *Store) Add(entry Entry) (Entry, error) {
	entry.ID = uuid.New().String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.db.Insert(entry.ID, entry); err != nil {
		return Entry{}, fmt.Errorf("failed to store history entry: %w", err)
	}

	if err := s.prune(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Recent returns the latest n entries, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]Entry, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if n > 0 {
		query = query.Limit(n)
	}

	var entries []Entry
	if err := s.db.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

// Count reports the number of stored entries.
func (s *Store) Count() (int, error) {
	count, err := s.db.Count(&Entry{}, badgerhold.Where("ID").Ne(""))
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return int(count), nil
}

// Clear deletes all history entries.
func (s *Store) Clear() error {
	if err := s.db.DeleteMatching(&Entry{}, badgerhold.Where("ID").Ne("")); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) prune() error {
	count, err := s.Count()
	if err != nil {
		return err
	}
	if count <= s.limit {
		return nil
	}

	var oldest []Entry
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Limit(count - s.limit)
	if err := s.db.Find(&oldest, query); err != nil {
		return fmt.Errorf("failed to find entries to prune: %w", err)
	}
	for _, entry := range oldest {
		if err := s.db.Delete(entry.ID, &Entry{}); err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to prune history entry: %w", err)
		}
	}
	return nil
}
