package session

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AppendKeepsLastTurns(t *testing.T) {
	s := New("u1")
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 13 {
		s.Append(RoleUser, fmt.Sprintf("msg %d", i), at.Add(time.Duration(i)*time.Second))
	}
	require.Len(t, s.Transcript, MaxTranscriptTurns)
	assert.Equal(t, "msg 3", s.Transcript[0].Text)
	assert.Equal(t, "msg 12", s.Transcript[9].Text)
	assert.Equal(t, at.Add(12*time.Second), s.UpdatedAt)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := New("u1")
	s.Append(RoleUser, "hello", time.Now())
	c := s.Clone()
	c.Append(RoleAssistant, "hi", time.Now())
	c.State = AwaitingPNR{}

	assert.Len(t, s.Transcript, 1)
	assert.Equal(t, KindIdle, s.State.Kind())
}

func TestSession_JSONRoundTripKeepsStateSlots(t *testing.T) {
	states := []State{
		Idle{},
		AwaitingPNR{},
		AwaitingCancelConfirmation{PNR: "PNR12345"},
		AwaitingBookingSource{},
		AwaitingBookingDestination{Source: "DEL"},
		AwaitingBookingConfirmation{BookingSlots{FlightID: 1, FlightNumber: "AI202", Seat: "1B", Fare: 5160}},
		AwaitingCustomerID{BookingSlots{FlightID: 1, FlightNumber: "AI202", Seat: "1B", Fare: 5160}},
		AwaitingSearchSource{},
		AwaitingSearchDestination{Source: "BOM"},
	}
	for _, st := range states {
		s := New("u1")
		s.State = st
		s.Append(RoleUser, "x", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

		data, err := json.Marshal(s)
		require.NoError(t, err)

		var back Session
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, st, back.State, string(st.Kind()))
		assert.Equal(t, s.Transcript, back.Transcript)
	}
}

func TestSession_UnknownKindFails(t *testing.T) {
	var s Session
	err := json.Unmarshal([]byte(`{"user_id":"u","state":{"kind":"flying"}}`), &s)
	assert.ErrorContains(t, err, "unknown state kind")
}
