package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"kaamgarau/internal/core"
)

// Reasons attached to a recalculation request.
const (
	ReasonJobCompleted = "job_completed"
	ReasonJobPosted    = "job_posted"
	ReasonStartup      = "startup_check"
	ReasonManual       = "manual"
)

var ErrInvalidMessage = errors.New("invalid level recalc message")

// LevelRecalcMessage asks the worker to recompute one user's level.
// It carries only the identity; the worker reads the history from storage.
type LevelRecalcMessage struct {
	UserID    string    `json:"userId"`
	Role      core.Role `json:"role"`
	Reason    string    `json:"reason"`
	Ref       string    `json:"ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLevelRecalcMessage(userID string, role core.Role, reason, ref string) *LevelRecalcMessage {
	return &LevelRecalcMessage{
		UserID:    userID,
		Role:      role,
		Reason:    reason,
		Ref:       ref,
		Timestamp: time.Now(),
	}
}

// Validate reports whether the message identifies a user and a known role.
func (m *LevelRecalcMessage) Validate() error {
	if m.UserID == "" || !m.Role.Valid() {
		return ErrInvalidMessage
	}
	return nil
}

func (m *LevelRecalcMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LevelRecalcMessageFromJSON decodes and validates a message body.
func LevelRecalcMessageFromJSON(data []byte) (*LevelRecalcMessage, error) {
	var msg LevelRecalcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
