package battery

import (
	"context"
	"sync"
)

// Sim is a battery whose level is set by hand, for simulators and
// tests.
type Sim struct {
	mu      sync.Mutex
	r       Report
	changed chan struct{}
}

func NewSim(r Report) *Sim {
	r.Percent = clampPercent(r.Percent)
	return &Sim{r: r, changed: make(chan struct{}, 1)}
}

func (s *Sim) Peek() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r, nil
}

// Set replaces the charge state.
func (s *Sim) Set(r Report) {
	s.update(func(old Report) Report { return r })
}

// Adjust changes the charge level by delta percent.
func (s *Sim) Adjust(delta int) {
	s.update(func(r Report) Report {
		r.Percent += delta
		return r
	})
}

func (s *Sim) update(f func(Report) Report) {
	s.mu.Lock()
	r := f(s.r)
	r.Percent = clampPercent(r.Percent)
	s.r = r
	s.mu.Unlock()
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Sim) Watch(ctx context.Context, reports chan<- Report) error {
	// The first report carries any earlier change.
	select {
	case <-s.changed:
	default:
	}
	for {
		r, _ := s.Peek()
		select {
		case reports <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-s.changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
