package sale

import "time"

// CompletedEvent is emitted after a checkout has been committed. It is
// handled by background subscribers (e.g. the low-stock watcher).
type CompletedEvent struct {
	SaleID     string
	Lines      []Line
	Total      int64
	OccurredAt time.Time
}

func (CompletedEvent) EventName() string { return "sale.completed" }

func NewCompletedEvent(s *Sale) CompletedEvent {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return CompletedEvent{
		SaleID:     s.ID,
		Lines:      lines,
		Total:      s.Total,
		OccurredAt: time.Now().UTC(),
	}
}
