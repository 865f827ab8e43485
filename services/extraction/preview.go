package extraction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dabhanushali/enacton-training/utils/cache"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// PreviewTTL is how long an unsaved extraction stays available for editing
const PreviewTTL = time.Hour

const previewKeyPrefix = "extraction:preview:"

// Preview is an extraction result awaiting review
type Preview struct {
	ID        string            `json:"preview_id"`
	CourseID  uint              `json:"course_id"`
	CreatedBy uint              `json:"created_by"`
	Source    Source            `json:"source"`
	Modules   []ExtractedModule `json:"modules"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// PreviewStore keeps previews in Redis, or in process memory when Redis is
// absent or failing
type PreviewStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	memory map[string]Preview
}

// NewPreviewStore creates a store; redisCache may be nil
func NewPreviewStore(redisCache *cache.RedisCache, ttl time.Duration) *PreviewStore {
	if ttl <= 0 {
		ttl = PreviewTTL
	}
	return &PreviewStore{
		cache:  redisCache,
		ttl:    ttl,
		now:    time.Now,
		memory: make(map[string]Preview),
	}
}

// Put assigns an id and expiry to p and stores it
func (s *PreviewStore) Put(ctx context.Context, p *Preview) error {
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.ttl)

	if s.cache != nil {
		err := s.cache.SetJSON(ctx, previewKeyPrefix+p.ID, p, s.ttl)
		if err == nil {
			return nil
		}
		log.Warnf("[EXTRACTION] redis unavailable, keeping preview %s in memory: %v", p.ID, err)
	}

	s.mu.Lock()
	s.memory[p.ID] = *p
	s.mu.Unlock()
	return nil
}

// Get returns an unexpired preview
func (s *PreviewStore) Get(ctx context.Context, id string) (*Preview, error) {
	s.mu.Lock()
	p, ok := s.memory[id]
	s.mu.Unlock()
	if ok {
		if s.now().After(p.ExpiresAt) {
			s.forget(id)
			return nil, ErrPreviewNotFound
		}
		return &p, nil
	}

	if s.cache == nil {
		return nil, ErrPreviewNotFound
	}
	var stored Preview
	if err := s.cache.GetJSON(ctx, previewKeyPrefix+id, &stored); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrPreviewNotFound
		}
		return nil, err
	}
	return &stored, nil
}

// Delete removes a preview wherever it is stored
func (s *PreviewStore) Delete(ctx context.Context, id string) error {
	s.forget(id)
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, previewKeyPrefix+id)
}

func (s *PreviewStore) forget(id string) {
	s.mu.Lock()
	delete(s.memory, id)
	s.mu.Unlock()
}

// Sweep drops expired in-memory previews and returns how many were removed.
// Redis entries expire on their own.
func (s *PreviewStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.memory {
		if now.After(p.ExpiresAt) {
			delete(s.memory, id)
			removed++
		}
	}
	return removed
}
