package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/tripassist/internal/composer"
	"github.com/Domenick1991/tripassist/internal/db"
	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/nlp"
	"github.com/Domenick1991/tripassist/internal/repository"
	"github.com/Domenick1991/tripassist/internal/seed"
	"github.com/Domenick1991/tripassist/internal/service/booking"
	"github.com/Domenick1991/tripassist/internal/service/flights"
	"github.com/Domenick1991/tripassist/internal/session"
)

var seedBase = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetFlightInfo(ctx context.Context, flightNumber string) (*domain.LiveFlight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LiveFlight), args.Error(1)
}

func (m *MockGateway) SearchRoute(ctx context.Context, source, destination string) ([]domain.LiveFlight, error) {
	args := m.Called(ctx, source, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LiveFlight), args.Error(1)
}

type fixture struct {
	assistant *Assistant
	store     *session.MemoryStore
	live      *MockGateway
	bookings  booking.BookingUseCase
	flights   flights.FlightUseCase
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenGorm(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	_, err = seed.Load(context.Background(), gdb, seedBase)
	require.NoError(t, err)

	log := quietLogger()
	repo := repository.NewGormInventoryRepository(gdb, log)
	f := &fixture{
		store:    session.NewMemoryStore(time.Hour, 100),
		live:     new(MockGateway),
		bookings: booking.NewBookingService(repo, log),
		flights:  flights.NewFlightService(repo, repo, log),
	}
	f.assistant = New(f.store, nlp.NewKeywordExtractor(), f.flights, f.bookings, composer.New(nil, log), log, WithLiveGateway(f.live))
	return f
}

func (f *fixture) state(t *testing.T, userID string) session.State {
	t.Helper()
	sess, err := f.store.Get(context.Background(), userID)
	require.NoError(t, err)
	return sess.State
}

func TestBookingDialog_DelhiToMumbai(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, replyAskBookingSource, f.assistant.Handle(ctx, "u1", "I want to book a flight"))
	assert.Equal(t, session.AwaitingBookingSource{}, f.state(t, "u1"))

	assert.Equal(t, replyAskBookingDestination, f.assistant.Handle(ctx, "u1", "DEL"))
	assert.Equal(t, session.AwaitingBookingDestination{Source: "DEL"}, f.state(t, "u1"))

	proposal := f.assistant.Handle(ctx, "u1", "BOM")
	assert.Contains(t, proposal, "flight AI202 from DEL to BOM")
	assert.Contains(t, proposal, "seat 1B priced ₹5160.00")
	assert.Contains(t, proposal, "Confirm booking? (yes/no)")
	assert.Equal(t, session.AwaitingBookingConfirmation{BookingSlots: session.BookingSlots{
		FlightID: 1, FlightNumber: "AI202", Seat: "1B", Fare: 5160,
	}}, f.state(t, "u1"))

	assert.Equal(t, replyAskCustomerID, f.assistant.Handle(ctx, "u1", "Yes"))
	assert.IsType(t, session.AwaitingCustomerID{}, f.state(t, "u1"))

	done := f.assistant.Handle(ctx, "u1", "1")
	assert.Regexp(t, `^Booking confirmed! Your PNR is PNR\d{5}\. Seat 1B on flight AI202\.$`, done)
	assert.Equal(t, session.Idle{}, f.state(t, "u1"))

	counts, err := f.flights.SeatCounts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 23, counts.Available)
}

func TestBookingDialog_ValidationKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assistant.Handle(ctx, "u1", "book a flight please")
	assert.Equal(t, replyInvalidAirport("from"), f.assistant.Handle(ctx, "u1", "D3L"))
	assert.Equal(t, session.AwaitingBookingSource{}, f.state(t, "u1"))

	assert.Equal(t, replyAskBookingDestination, f.assistant.Handle(ctx, "u1", "new delhi"))
	assert.Equal(t, replySameAirport("DEL"), f.assistant.Handle(ctx, "u1", "del"))
	assert.Contains(t, f.assistant.Handle(ctx, "u1", "Mumbai"), "AI202")

	f.assistant.Handle(ctx, "u1", "y")
	assert.Equal(t, replyCustomerIDNotNumeric, f.assistant.Handle(ctx, "u1", "me"))
	assert.Equal(t, replyCustomerUnknown(99), f.assistant.Handle(ctx, "u1", "99"))
	assert.IsType(t, session.AwaitingCustomerID{}, f.state(t, "u1"))

	assert.Contains(t, f.assistant.Handle(ctx, "u1", "2"), "Booking confirmed!")
}

func TestBookingDialog_NoFlightsAndDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assistant.Handle(ctx, "u1", "I want to book a flight")
	f.assistant.Handle(ctx, "u1", "BLR")
	assert.Equal(t, replyNoRouteFlights("BLR", "DXB"), f.assistant.Handle(ctx, "u1", "DXB"))
	assert.Equal(t, session.Idle{}, f.state(t, "u1"))

	f.assistant.Handle(ctx, "u1", "I want to book a flight")
	f.assistant.Handle(ctx, "u1", "DEL")
	f.assistant.Handle(ctx, "u1", "BLR")
	assert.Equal(t, replyBookingDeclined, f.assistant.Handle(ctx, "u1", "no"))
	assert.Equal(t, session.Idle{}, f.state(t, "u1"))
}

func TestBookingDialog_SeatTakenResetsToIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assistant.Handle(ctx, "u1", "I want to book a flight")
	f.assistant.Handle(ctx, "u1", "DEL")
	f.assistant.Handle(ctx, "u1", "BOM")
	f.assistant.Handle(ctx, "u1", "yes")

	_, err := f.bookings.CreateBooking(ctx, booking.CreateBookingInput{CustomerID: 3, FlightID: 1, SeatLabel: "1B"})
	require.NoError(t, err)

	reply := f.assistant.Handle(ctx, "u1", "1")
	assert.Equal(t, replyBookingFailed(domain.ErrSeatAlreadyBooked, "1B"), reply)
	assert.Equal(t, session.Idle{}, f.state(t, "u1"))
}

func TestCancelDialog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, replyAskPNR, f.assistant.Handle(ctx, "u2", "cancel my ticket"))
	assert.Equal(t, replyPNRNotFound, f.assistant.Handle(ctx, "u2", "PNR00000"))
	assert.Equal(t, session.AwaitingPNR{}, f.state(t, "u2"))

	prompt := f.assistant.Handle(ctx, "u2", " pnr12345 ")
	assert.Equal(t, "I found booking PNR12345 for customer id 1 on flight AI202 (DEL to BOM), seat 1A. Do you want to cancel it? (yes/no)", prompt)
	assert.Equal(t, session.AwaitingCancelConfirmation{PNR: "PNR12345"}, f.state(t, "u2"))

	done := f.assistant.Handle(ctx, "u2", "yes")
	assert.Equal(t, fmt.Sprintf("Booking with PNR PNR12345 has been cancelled. Refund: ₹%.2f.", domain.RefundFor(5500)), done)
	assert.Equal(t, session.Idle{}, f.state(t, "u2"))

	f.assistant.Handle(ctx, "u2", "cancel my ticket")
	f.assistant.Handle(ctx, "u2", "PNR12345")
	assert.Equal(t, "Booking PNR12345 is already cancelled.", f.assistant.Handle(ctx, "u2", "confirm"))
}

func TestCancelDialog_Determinism(t *testing.T) {
	for i := 0; i < 3; i++ {
		f := newFixture(t)
		ctx := context.Background()
		var last string
		for _, msg := range []string{"cancel my ticket", "PNR67890", "yes"} {
			last = f.assistant.Handle(ctx, "fresh", msg)
		}
		assert.Contains(t, last, "PNR67890")
		assert.Contains(t, last, "has been cancelled")
		assert.Equal(t, session.Idle{}, f.state(t, "fresh"))
	}
}

func TestCancelDialog_Decline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assistant.Handle(ctx, "u2", "cancel my booking")
	f.assistant.Handle(ctx, "u2", "PNR54321")
	assert.Equal(t, replyCancelDecline, f.assistant.Handle(ctx, "u2", "nope"))

	b, err := f.bookings.GetBooking(ctx, "PNR54321")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
}

func TestFlightInfo_FallsBackToInventory(t *testing.T) {
	f := newFixture(t)
	f.live.On("GetFlightInfo", mock.Anything, "AI450").Return(nil, nil).Once()
	f.live.On("GetFlightInfo", mock.Anything, "AI450").Return(nil, errors.New("timeout")).Once()

	first := f.assistant.Handle(context.Background(), "u3", "What is the status of AI450?")
	assert.Contains(t, first, "*Delayed*")
	assert.NotContains(t, first, replyNoFlightInfo)

	second := f.assistant.Handle(context.Background(), "u3", "status of AI450")
	assert.Contains(t, second, "*Delayed*")
	f.live.AssertExpectations(t)
}

func TestFlightInfo_LiveDataWins(t *testing.T) {
	f := newFixture(t)
	f.live.On("GetFlightInfo", mock.Anything, "AI202").Return(&domain.LiveFlight{
		FlightNumber: "AI202", Airline: "Air India", Status: "active", DepartureGate: "22",
	}, nil)

	assert.Equal(t, "Flight AI202 (Air India) departs from gate 22.", f.assistant.Handle(context.Background(), "u3", "which gate does AI202 leave from?"))
}

func TestFlightInfo_NoData(t *testing.T) {
	f := newFixture(t)
	f.live.On("GetFlightInfo", mock.Anything, "ZZ999").Return(nil, nil)

	assert.Equal(t, replyNoFlightInfo, f.assistant.Handle(context.Background(), "u3", "status of ZZ999"))
	assert.Equal(t, replyNeedFlightNumber, f.assistant.Handle(context.Background(), "u3", "is my flight delayed?"))
}

func TestSeatAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "There are 24 seats available on flight AI202 (out of 25).", f.assistant.Handle(ctx, "u4", "How many seats are available on AI202?"))
	assert.Equal(t, replyNeedSeatFlightNumber, f.assistant.Handle(ctx, "u4", "are there seats available?"))
	assert.Equal(t, replyFlightUnknown("ZZ999"), f.assistant.Handle(ctx, "u4", "seats available on ZZ999"))
}

func TestReplySeatCounts_Phrasing(t *testing.T) {
	assert.Equal(t, "Sorry, there are no seats available on flight AI202.", replySeatCounts("AI202", domain.SeatCounts{Available: 0, Total: 25}))
	assert.Equal(t, "There is 1 seat available on flight AI202 (out of 25).", replySeatCounts("AI202", domain.SeatCounts{Available: 1, Total: 25}))
}

func TestSearchDialog_EmptyVersusError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.live.On("SearchRoute", mock.Anything, "DEL", "BOM").Return([]domain.LiveFlight{}, nil).Once()
	f.live.On("SearchRoute", mock.Anything, "DEL", "BOM").Return(nil, errors.New("connection reset")).Once()

	assert.Equal(t, replyAskSearchSource, f.assistant.Handle(ctx, "u5", "search flights"))
	assert.Equal(t, replyAskSearchDestination, f.assistant.Handle(ctx, "u5", "DEL"))
	empty := f.assistant.Handle(ctx, "u5", "BOM")
	assert.Equal(t, replyNoSearchResults("DEL", "BOM"), empty)

	f.assistant.Handle(ctx, "u5", "search flights")
	f.assistant.Handle(ctx, "u5", "DEL")
	failed := f.assistant.Handle(ctx, "u5", "BOM")
	assert.Equal(t, replySearchError, failed)

	assert.NotEqual(t, empty, failed)
	assert.Equal(t, session.Idle{}, f.state(t, "u5"))
}

func TestSearchDialog_IdleStoredBeforeGatewayCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var during session.State
	f.live.On("SearchRoute", mock.Anything, "DEL", "BOM").Run(func(mock.Arguments) {
		during = f.state(t, "u5")
	}).Return([]domain.LiveFlight{}, nil)

	f.assistant.Handle(ctx, "u5", "search flights")
	f.assistant.Handle(ctx, "u5", "DEL")
	f.assistant.Handle(ctx, "u5", "BOM")

	assert.Equal(t, session.Idle{}, during)
}

func TestSearch_DirectWithTwoLocations(t *testing.T) {
	f := newFixture(t)
	f.live.On("SearchRoute", mock.Anything, "DEL", "BOM").Return([]domain.LiveFlight{
		{FlightNumber: "AI202", Airline: "Air India", Status: "scheduled", DepartureScheduled: "2026-05-11T09:30:00+00:00", ArrivalScheduled: "2026-05-11T11:45:00+00:00"},
		{FlightNumber: "6E2134", Status: "active", DepartureEstimated: "garbled"},
	}, nil)

	reply := f.assistant.Handle(context.Background(), "u5", "find flights from DEL to BOM")
	assert.Equal(t, "Here are the flights from DEL to BOM:\n"+
		"1. AI202 (Air India): departs 09:30, arrives 11:45, status: scheduled\n"+
		"2. 6E2134 (unknown airline): departs N/A, arrives N/A, status: active", reply)
}

func TestPolicyQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pet := f.assistant.Handle(ctx, "u6", "Can I travel with my pet on Emirates?")
	assert.Contains(t, pet, "Pet Travel policy (EK):")

	refund := f.assistant.Handle(ctx, "u6", "What is United's refund policy?")
	assert.Contains(t, refund, "Refund policy (AI):")

	baggage := f.assistant.Handle(ctx, "u6", "baggage allowance")
	assert.Contains(t, baggage, "Baggage policy (AI):")
}

func TestPolicyTarget(t *testing.T) {
	x := nlp.NewKeywordExtractor()
	tests := []struct {
		text, wantType, wantAirline string
	}{
		{"what is the baggage policy", domain.PolicyTypeBaggage, "AI"},
		{"can my dog fly with Delta", domain.PolicyTypePetTravel, "DL"},
		{"check-in rules for EK510", domain.PolicyTypeCheckIn, "EK"},
		{"cancellation policy", domain.PolicyTypeCancellation, "AI"},
		{"policies", "", "AI"},
		{"EK baggage policy", domain.PolicyTypeBaggage, "EK"},
		{"pet policy for LH", domain.PolicyTypePetTravel, "LH"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gotType, gotAirline := policyTarget(x.Extract(tt.text), tt.text)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantAirline, gotAirline)
		})
	}
}

func TestUnknownFallsBackToComposer(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, composer.FallbackText, f.assistant.Handle(context.Background(), "u7", "tell me a joke"))
}

func TestEscapeWordResets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assistant.Handle(ctx, "u8", "I want to book a flight")
	assert.Equal(t, replyEscaped, f.assistant.Handle(ctx, "u8", "never mind"))
	assert.Equal(t, session.Idle{}, f.state(t, "u8"))
}

func TestDefaultUserID(t *testing.T) {
	f := newFixture(t)
	f.assistant.Handle(context.Background(), "", "cancel my ticket")
	assert.Equal(t, session.AwaitingPNR{}, f.state(t, DefaultUserID))
}

func TestTranscriptBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.assistant.Handle(ctx, "u9", fmt.Sprintf("hello %d", i))
	}

	turns, err := f.assistant.Transcript(ctx, "u9")
	require.NoError(t, err)
	require.Len(t, turns, session.MaxTranscriptTurns)
	assert.Equal(t, session.RoleUser, turns[0].Role)
	assert.Equal(t, "hello 2", turns[0].Text)
	assert.Equal(t, session.RoleAssistant, turns[len(turns)-1].Role)
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(string) nlp.Entities {
	panic("extractor exploded")
}

func TestFailureBoundary_Panic(t *testing.T) {
	log := quietLogger()
	store := session.NewMemoryStore(time.Hour, 10)
	a := New(store, panickingExtractor{}, nil, nil, composer.New(nil, log), log)

	assert.Equal(t, replyUnexpected, a.Handle(context.Background(), "u10", "anything"))

	sess, err := store.Get(context.Background(), "u10")
	require.NoError(t, err)
	assert.Equal(t, session.Idle{}, sess.State)
	assert.Len(t, sess.Transcript, 2)
}

type failingBookings struct {
	booking.BookingUseCase
}

func (failingBookings) Customer(context.Context, int64) (*domain.Customer, error) {
	return nil, errors.New("connection refused")
}

func TestFailureBoundary_ErrorResetsButKeepsTranscript(t *testing.T) {
	log := quietLogger()
	store := session.NewMemoryStore(time.Hour, 10)
	ctx := context.Background()

	sess := session.New("u11")
	sess.State = session.AwaitingCustomerID{BookingSlots: session.BookingSlots{FlightID: 1, FlightNumber: "AI202", Seat: "1B", Fare: 5160}}
	sess.Append(session.RoleUser, "yes", time.Now())
	require.NoError(t, store.Put(ctx, "u11", sess))

	a := New(store, nlp.NewKeywordExtractor(), nil, failingBookings{}, composer.New(nil, log), log)
	assert.Equal(t, replyUnexpected, a.Handle(ctx, "u11", "1"))

	got, err := store.Get(ctx, "u11")
	require.NoError(t, err)
	assert.Equal(t, session.Idle{}, got.State)
	assert.Len(t, got.Transcript, 3)
}

func TestConcurrentMessagesFromOneUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.assistant.Handle(ctx, "busy", fmt.Sprintf("hello %d", i))
		}(i)
	}
	wg.Wait()

	turns, err := f.assistant.Transcript(ctx, "busy")
	require.NoError(t, err)
	require.Len(t, turns, session.MaxTranscriptTurns)
	for i, turn := range turns {
		if i%2 == 0 {
			assert.Equal(t, session.RoleUser, turn.Role)
		} else {
			assert.Equal(t, session.RoleAssistant, turn.Role)
		}
	}
}

// slowStore delays loads so two handlers for the same user overlap.
type slowStore struct {
	session.Store
	delay time.Duration
}

func (s slowStore) Get(ctx context.Context, userID string) (*session.Session, error) {
	time.Sleep(s.delay)
	return s.Store.Get(ctx, userID)
}

func TestConcurrentMessagesAcrossInstances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := quietLogger()
	shared := slowStore{Store: f.store, delay: 50 * time.Millisecond}

	mr := miniredis.RunT(t)
	newInstance := func() *Assistant {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return New(shared, nlp.NewKeywordExtractor(), f.flights, f.bookings, composer.New(nil, log), log,
			WithLocker(session.NewRedisLocker(client, 10*time.Second)))
	}
	first, second := newInstance(), newInstance()

	var wg sync.WaitGroup
	replies := make([]string, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		replies[0] = first.Handle(ctx, "u1", "cancel my ticket")
	}()
	go func() {
		defer wg.Done()
		replies[1] = second.Handle(ctx, "u1", "I want to book a flight")
	}()
	wg.Wait()

	assert.NotEqual(t, replyBusy, replies[0])
	assert.NotEqual(t, replyBusy, replies[1])

	turns, err := first.Transcript(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	var users []string
	for _, turn := range turns {
		if turn.Role == session.RoleUser {
			users = append(users, turn.Text)
		}
	}
	assert.ElementsMatch(t, []string{"cancel my ticket", "I want to book a flight"}, users)
	assert.False(t, mr.Exists("lock:session:u1"))
}

func TestHandle_BusyWhenLockUnavailable(t *testing.T) {
	f := newFixture(t)
	locks := session.NewLocker()
	unlock, err := locks.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	log := quietLogger()
	a := New(f.store, nlp.NewKeywordExtractor(), f.flights, f.bookings, composer.New(nil, log), log, WithLocker(locks))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, replyBusy, a.Handle(ctx, "u1", "I want to book a flight"))
	assert.Equal(t, session.Idle{}, f.state(t, "u1"))
}
