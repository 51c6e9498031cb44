package session

import (
	"encoding/json"
	"time"
)

// MaxTranscriptTurns is how many turns a session keeps; older turns are dropped.
const MaxTranscriptTurns = 10

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is everything kept between requests for one user id.
type Session struct {
	UserID     string
	State      State
	Transcript []Turn
	UpdatedAt  time.Time
}

func New(userID string) *Session {
	return &Session{UserID: userID, State: Idle{}, Transcript: []Turn{}}
}

// Append records a turn and keeps only the most recent MaxTranscriptTurns.
func (s *Session) Append(role, text string, at time.Time) {
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text, At: at})
	if n := len(s.Transcript); n > MaxTranscriptTurns {
		s.Transcript = append([]Turn(nil), s.Transcript[n-MaxTranscriptTurns:]...)
	}
	s.UpdatedAt = at
}

func (s *Session) Reset() {
	s.State = Idle{}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Transcript = append([]Turn{}, s.Transcript...)
	if c.State == nil {
		c.State = Idle{}
	}
	return &c
}

type sessionJSON struct {
	UserID     string        `json:"user_id"`
	State      stateEnvelope `json:"state"`
	Transcript []Turn        `json:"transcript"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	env, err := encodeState(s.State)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sessionJSON{
		UserID:     s.UserID,
		State:      env,
		Transcript: s.Transcript,
		UpdatedAt:  s.UpdatedAt,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	state, err := decodeState(raw.State)
	if err != nil {
		return err
	}
	s.UserID = raw.UserID
	s.State = state
	s.Transcript = raw.Transcript
	if s.Transcript == nil {
		s.Transcript = []Turn{}
	}
	s.UpdatedAt = raw.UpdatedAt
	return nil
}
