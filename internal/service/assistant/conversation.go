package assistant

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"vacationplanner/internal/models"
)

var (
	// ErrNoMessages means neither history nor the request carried any message.
	ErrNoMessages = errors.New("no messages provided")
	// ErrInvalidRole rejects submitted messages that are neither user nor assistant turns.
	ErrInvalidRole = errors.New("invalid message role")
)

// Merge appends submitted to history. The result never shares a backing
// array with history.
func Merge(history, submitted []models.Message) ([]models.Message, error) {
	merged := make([]models.Message, 0, len(history)+len(submitted)+1)
	merged = append(merged, history...)
	if len(submitted) > 0 {
		merged = append(merged, submitted...)
	}
	if len(merged) == 0 {
		return nil, ErrNoMessages
	}
	return merged, nil
}

// BuildPrompt prepends the system instruction and normalizes roles for the
// model call: assistant stays assistant, everything else becomes user.
func BuildPrompt(merged []models.Message, now time.Time) []models.Message {
	prompt := make([]models.Message, 0, len(merged)+1)
	prompt = append(prompt, models.Message{Role: models.RoleSystem, Content: SystemPrompt(now)})
	return append(prompt, lo.Map(merged, func(msg models.Message, _ int) models.Message {
		return normalize(msg)
	})...)
}

func normalize(msg models.Message) models.Message {
	role := models.RoleUser
	if msg.Role == models.RoleAssistant {
		role = models.RoleAssistant
	}
	return models.Message{Role: role, Content: msg.Content}
}

// sanitizeSubmitted defaults a missing role to user and rejects anything that
// is not a user or assistant turn, so stored history never holds a system message.
func sanitizeSubmitted(submitted []models.Message) ([]models.Message, error) {
	out := make([]models.Message, 0, len(submitted))
	for i, msg := range submitted {
		switch msg.Role {
		case "":
			msg.Role = models.RoleUser
		case models.RoleUser, models.RoleAssistant:
		default:
			return nil, fmt.Errorf("%w %q at index %d", ErrInvalidRole, msg.Role, i)
		}
		out = append(out, msg)
	}
	return out, nil
}

func userContents(messages []models.Message) []string {
	return lo.FilterMap(messages, func(msg models.Message, _ int) (string, bool) {
		return msg.Content, msg.Role == models.RoleUser
	})
}
