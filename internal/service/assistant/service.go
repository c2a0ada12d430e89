package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vacationplanner/internal/logging"
	"vacationplanner/internal/models"
)

// ErrPasskeyRequired is returned when a chat turn carries no passkey.
var ErrPasskeyRequired = errors.New("passkeyId required")

// Generator is the model capability used for each turn. An empty reply is
// not an error.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message, maxTokens int, temperature float32) (string, error)
}

type PasskeyRegistry interface {
	Register(ctx context.Context, passkeyID string) error
	Verify(ctx context.Context, passkeyID string) bool
}

type HistoryStore interface {
	Load(ctx context.Context, passkeyID string) []models.Message
	Save(ctx context.Context, passkeyID string, messages []models.Message)
}

// Options tune the model call.
type Options struct {
	MaxTokens    int
	Temperature  float32
	ModelTimeout time.Duration
}

// TurnResult is what a chat turn returns to the client.
type TurnResult struct {
	Response string `json:"response"`
	Complete bool   `json:"complete"`
}

// Service runs chat turns. It keeps no state between requests; concurrent
// turns for one passkey race and the last save wins.
type Service struct {
	registry  PasskeyRegistry
	history   HistoryStore
	generator Generator
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// NewService builds a new assistant service.
func NewService(registry PasskeyRegistry, history HistoryStore, generator Generator, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		history:   history,
		generator: generator,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// History returns the stored transcript for a passkey (empty when unknown).
func (s *Service) History(ctx context.Context, passkeyID string) []models.Message {
	return s.history.Load(ctx, passkeyID)
}

// Chat runs one turn: admit the passkey, merge the submitted messages into
// history, call the model, persist the transcript plus the reply.
func (s *Service) Chat(ctx context.Context, passkeyID string, submitted []models.Message) (*TurnResult, error) {
	if passkeyID == "" {
		return nil, ErrPasskeyRequired
	}
	incoming, err := sanitizeSubmitted(submitted)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(logging.Passkey(passkeyID))

	// Unknown passkeys are admitted: any client-chosen string becomes an identity.
	if !s.registry.Verify(ctx, passkeyID) {
		if err := s.registry.Register(ctx, passkeyID); err != nil {
			log.Warn("auto-register passkey failed", zap.Error(err))
		} else {
			log.Info("passkey auto-registered", zap.String("state", "registering"))
		}
	}

	existing := s.history.Load(ctx, passkeyID)
	log.Info("chat history loaded",
		zap.String("state", "history-loaded"),
		zap.Int("existing", len(existing)),
		zap.Int("submitted", len(incoming)),
	)

	merged, err := Merge(existing, incoming)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(merged, s.now())
	log.Debug("user messages", zap.Strings("content", userContents(prompt)))

	genCtx := ctx
	if s.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.ModelTimeout)
		defer cancel()
	}
	reply, err := s.generator.Generate(genCtx, prompt, s.opts.MaxTokens, s.opts.Temperature)
	if err != nil {
		log.Error("model call failed", zap.Int("prompt_messages", len(prompt)), zap.Error(err))
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	log.Info("model invoked",
		zap.String("state", "model-invoked"),
		zap.Int("prompt_messages", len(prompt)),
		zap.Int("response_length", len(reply)),
	)
	if reply == "" {
		reply = DefaultResponse
	}

	complete := IsFinalItinerary(reply)
	updated := append(merged, models.Message{Role: models.RoleAssistant, Content: reply})
	s.history.Save(ctx, passkeyID, updated)
	log.Info("chat history persisted",
		zap.String("state", "persisted"),
		zap.Int("messages", len(updated)),
		zap.Bool("complete", complete),
	)

	return &TurnResult{Response: reply, Complete: complete}, nil
}
