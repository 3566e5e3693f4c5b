package chat

import (
	"context"
	"time"

	"github.com/madhukiran/stylist-agent/internal/domain"
	"github.com/madhukiran/stylist-agent/internal/observability"
)

type Service struct {
	store  domain.HistoryStore
	llm    domain.Generator
	window WindowPolicy
	locks  *userLocks
	now    func() time.Time

	maxMediaBytes int64
}

func NewService(store domain.HistoryStore, llm domain.Generator, window WindowPolicy, maxMediaBytes int64) *Service {
	if window == nil {
		window = FullWindow()
	}
	return &Service{
		store:         store,
		llm:           llm,
		window:        window,
		locks:         newUserLocks(),
		now:           time.Now,
		maxMediaBytes: maxMediaBytes,
	}
}

type ExchangeInput struct {
	UserID  domain.UserID
	Message string
	Media   *domain.Media
}

type ExchangeOutput struct {
	Reply     string
	UserTurn  domain.Turn
	ModelTurn domain.Turn
	History   *domain.History
}

// Exchange runs one full interaction: load/seed the context, compose the
// user turn, generate the reply, then commit both turns. Input validation
// happens before any store or model call; a generation failure aborts with
// the persisted history untouched.
func (s *Service) Exchange(ctx context.Context, in ExchangeInput) (*ExchangeOutput, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}

	userTurn, err := ComposeUserTurn(in.Message, in.Media, s.maxMediaBytes)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithUserID(ctx, string(in.UserID))
	log := observability.LoggerFromContext(ctx)

	release := s.locks.acquire(in.UserID)
	defer release()

	history := s.BuildContext(ctx, in.UserID)

	windowed := s.window.Apply(history.Turns)
	prompt := make([]domain.Turn, 0, len(windowed)+1)
	prompt = append(prompt, windowed...)
	prompt = append(prompt, userTurn)

	modelTurn, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.Error("generation failed", "error", err)
		return nil, err
	}

	s.commit(ctx, history, userTurn, modelTurn)

	return &ExchangeOutput{
		Reply:     replyText(modelTurn),
		UserTurn:  userTurn,
		ModelTurn: modelTurn,
		History:   history,
	}, nil
}

// BuildContext loads the user's history, seeding a fresh one with the
// persona turn when none exists. A store failure degrades to absent: the
// user gets a new conversation rather than an error. The seed is not
// persisted until the first committed exchange.
func (s *Service) BuildContext(ctx context.Context, userID domain.UserID) *domain.History {
	history, err := s.store.Load(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to load conversation history",
			"error", err)
		history = nil
	}

	if history.Empty() {
		return &domain.History{
			UserID: userID,
			Turns:  []domain.Turn{domain.TextTurn(domain.RoleUser, PersonaPolicy)},
		}
	}
	return history
}

// commit appends the exchange (user turn always before the model turn it
// elicited) and persists. Persistence failure is logged but never gates
// the reply already generated for the user.
func (s *Service) commit(ctx context.Context, history *domain.History, userTurn, modelTurn domain.Turn) {
	history.Append(userTurn, modelTurn)
	history.UpdatedAt = s.now()

	if err := s.store.Save(ctx, history); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to persist conversation",
			"turns", len(history.Turns),
			"error", err)
	}
}

func replyText(turn domain.Turn) string {
	for _, p := range turn.Parts {
		if !p.IsMedia() {
			return p.Text
		}
	}
	return ""
}
