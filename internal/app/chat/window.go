package chat

import "github.com/madhukiran/stylist-agent/internal/domain"

// WindowPolicy decides which part of the stored transcript is submitted to
// the model. Storage always keeps the full history; only the prompt context
// shrinks. Implementations must preserve turn order.
type WindowPolicy interface {
	Apply(turns []domain.Turn) []domain.Turn
}

type fullWindow struct{}

func (fullWindow) Apply(turns []domain.Turn) []domain.Turn { return turns }

// FullWindow submits the entire transcript, matching the historical
// behavior of the service.
func FullWindow() WindowPolicy { return fullWindow{} }

type recentWindow struct {
	exchanges int
}

// RecentWindow keeps the persona seed plus the last n user/model exchanges.
// n <= 0 degrades to the full window.
func RecentWindow(n int) WindowPolicy {
	if n <= 0 {
		return fullWindow{}
	}
	return recentWindow{exchanges: n}
}

func (w recentWindow) Apply(turns []domain.Turn) []domain.Turn {
	// turns[0] is the persona seed; the rest alternate user/model.
	keep := w.exchanges * 2
	if len(turns) <= keep+1 {
		return turns
	}

	out := make([]domain.Turn, 0, keep+1)
	out = append(out, turns[0])
	out = append(out, turns[len(turns)-keep:]...)
	return out
}
