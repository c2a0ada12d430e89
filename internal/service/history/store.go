package history

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"vacationplanner/internal/kv"
	"vacationplanner/internal/logging"
	"vacationplanner/internal/models"
)

const chatHistoryPrefix = "chat:"

// Store loads and saves the transcript for a passkey. It never reports
// failures to callers: reads degrade to an empty history and failed writes
// are logged and dropped.
type Store struct {
	kv     kv.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: store, logger: logger, now: time.Now}
}

// Load returns the stored messages, or an empty slice.
func (s *Store) Load(ctx context.Context, passkeyID string) []models.Message {
	raw, found, err := s.kv.Get(ctx, chatHistoryPrefix+passkeyID)
	if err != nil {
		s.logger.Error("load chat history failed", logging.Passkey(passkeyID), zap.Error(err))
		return []models.Message{}
	}
	if !found {
		return []models.Message{}
	}
	var record models.ChatHistory
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Error("decode chat history failed", logging.Passkey(passkeyID), zap.Error(err))
		return []models.Message{}
	}
	if record.Messages == nil {
		return []models.Message{}
	}
	return record.Messages
}

// Save overwrites the stored transcript. Both timestamps are set to now on
// every save; the original creation time is not carried over.
func (s *Store) Save(ctx context.Context, passkeyID string, messages []models.Message) {
	if messages == nil {
		messages = []models.Message{}
	}
	now := s.now().UTC()
	record := models.ChatHistory{
		PasskeyID: passkeyID,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("encode chat history failed", logging.Passkey(passkeyID), zap.Error(err))
		return
	}
	if err := s.kv.Put(ctx, chatHistoryPrefix+passkeyID, string(data), 0); err != nil {
		s.logger.Error("save chat history failed", logging.Passkey(passkeyID), zap.Error(err))
	}
}
