package memory

import (
	"sync"

	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/interfaces"
)

// PointEventRepository хранит последние capacity событий в кольцевом буфере.
type PointEventRepository struct {
	mu     sync.RWMutex
	events []entities.PointEvent
	next   int
	full   bool
}

func NewPointEventRepository(capacity int) interfaces.PointEventRepository {
	if capacity <= 0 {
		capacity = 1
	}
	return &PointEventRepository{events: make([]entities.PointEvent, capacity)}
}

func (r *PointEventRepository) Create(event *entities.PointEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = *event
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *PointEventRepository) Recent(limit int) ([]entities.PointEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]entities.PointEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out, nil
}
