package assistant

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/composer"
	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/nlp"
	"github.com/Domenick1991/tripassist/internal/service/booking"
	"github.com/Domenick1991/tripassist/internal/session"
)

func (a *Assistant) handleIdle(ctx context.Context, sess *session.Session, text string) (string, error) {
	e := a.extractor.Extract(text)
	a.log.WithFields(logrus.Fields{"user_id": sess.UserID, "intent": e.Intent, "flight_number": e.Flight()}).Debug("classified message")

	switch e.Intent {
	case nlp.IntentSeatAvailability:
		return a.seatAvailability(ctx, e)
	case nlp.IntentFlightInfo:
		return a.flightInfo(ctx, e, text), nil
	case nlp.IntentSearchRoute:
		if len(e.Locations) >= 2 {
			return a.searchRoute(ctx, e.Locations[0], e.Locations[1]), nil
		}
		sess.State = session.AwaitingSearchSource{}
		return replyAskSearchSource, nil
	case nlp.IntentCancelBooking:
		sess.State = session.AwaitingPNR{}
		return replyAskPNR, nil
	case nlp.IntentCreateBooking:
		sess.State = session.AwaitingBookingSource{}
		return replyAskBookingSource, nil
	case nlp.IntentPolicy:
		return a.policy(ctx, e, text), nil
	case nlp.IntentUnknown:
		return a.composer.Fallback(ctx, text), nil
	default:
		return "", errors.New("unhandled intent " + string(e.Intent))
	}
}

func (a *Assistant) seatAvailability(ctx context.Context, e nlp.Entities) (string, error) {
	number := e.Flight()
	if number == "" {
		return replyNeedSeatFlightNumber, nil
	}
	flight, err := a.flights.FlightByNumber(ctx, number)
	if errors.Is(err, domain.ErrFlightNotFound) {
		return replyFlightUnknown(number), nil
	}
	if err != nil {
		return "", err
	}
	counts, err := a.flights.SeatCounts(ctx, flight.ID)
	if err != nil {
		return "", err
	}
	return replySeatCounts(flight.FlightNumber, counts), nil
}

// flightInfo prefers live data, then the inventory record. Gateway failures
// count as "no data".
func (a *Assistant) flightInfo(ctx context.Context, e nlp.Entities, question string) string {
	number := e.Flight()
	if number == "" {
		return replyNeedFlightNumber
	}
	log := a.log.WithField("flight_number", number)

	if a.live != nil {
		live, err := a.live.GetFlightInfo(ctx, number)
		if err != nil {
			log.WithError(err).Warn("live flight lookup failed, falling back to inventory")
		} else if live != nil {
			return a.composer.FlightInfo(ctx, *live, question)
		}
	}

	flight, err := a.flights.FlightByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, domain.ErrFlightNotFound) {
			log.WithError(err).Warn("inventory flight lookup failed")
		}
		return replyNoFlightInfo
	}
	return a.composer.FlightInfo(ctx, flight.LiveRecord(), question)
}

var policyKeywordTypes = []struct {
	keyword    string
	policyType string
}{
	{nlp.KeywordBaggage, domain.PolicyTypeBaggage},
	{nlp.KeywordPet, domain.PolicyTypePetTravel},
	{nlp.KeywordAnimal, domain.PolicyTypePetTravel},
	{nlp.KeywordRefund, domain.PolicyTypeRefund},
	{nlp.KeywordCheckIn, domain.PolicyTypeCheckIn},
	{nlp.KeywordCancel, domain.PolicyTypeCancellation},
}

// policyTarget maps extracted keywords to a policy type and an airline. An
// empty type asks for every policy of the airline.
func policyTarget(e nlp.Entities, text string) (policyType, airline string) {
	for _, kt := range policyKeywordTypes {
		if e.HasKeyword(kt.keyword) {
			policyType = kt.policyType
			break
		}
	}
	switch {
	case domain.IsAirlineCode(e.AirlineCode):
		airline = e.AirlineCode
	default:
		if code, ok := domain.AirlineCodeForName(text); ok {
			airline = code
		} else {
			airline = domain.DefaultAirlineCode
		}
	}
	return policyType, airline
}

func (a *Assistant) policy(ctx context.Context, e nlp.Entities, question string) (reply string) {
	policyType, airline := policyTarget(e, question)
	log := a.log.WithFields(logrus.Fields{"policy_type": policyType, "airline_code": airline})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("policy answer panicked")
			reply = composer.PolicyErrorText
		}
	}()

	lookup, err := a.flights.Policy(ctx, policyType, airline)
	if err != nil {
		log.WithError(err).Error("policy lookup failed")
		return composer.PolicyErrorText
	}
	return a.composer.PolicyAnswer(ctx, question, *lookup)
}

func (a *Assistant) handlePNR(ctx context.Context, sess *session.Session, text string) (string, error) {
	pnr := strings.ToUpper(strings.TrimSpace(text))
	b, err := a.bookings.GetBooking(ctx, pnr)
	if errors.Is(err, domain.ErrBookingNotFound) {
		return replyPNRNotFound, nil
	}
	if err != nil {
		return "", err
	}

	flight, err := a.flights.FlightByID(ctx, b.FlightID)
	if err != nil {
		a.log.WithError(err).WithField("pnr", b.PNR).Warn("flight for booking not found")
	}
	sess.State = session.AwaitingCancelConfirmation{PNR: b.PNR}
	return replyConfirmCancel(b, flight), nil
}

func (a *Assistant) handleCancelConfirmation(ctx context.Context, sess *session.Session, st session.AwaitingCancelConfirmation, text string) (string, error) {
	sess.Reset()
	if !isAffirmative(text) {
		return replyCancelDecline, nil
	}
	outcome, err := a.bookings.CancelBooking(ctx, st.PNR)
	if errors.Is(err, domain.ErrBookingNotFound) {
		return replyBookingVanished(st.PNR), nil
	}
	if err != nil {
		return "", err
	}
	return outcome.Message(), nil
}

// airportCode accepts a city name or a 3-letter alphabetic code.
func (a *Assistant) airportCode(text string) (string, bool) {
	if code, ok := nlp.AirportCode(text); ok {
		return code, true
	}
	code := strings.ToUpper(strings.TrimSpace(text))
	if err := a.validate.Var(code, "len=3,alpha"); err != nil {
		return "", false
	}
	return code, true
}

func (a *Assistant) handleBookingSource(sess *session.Session, text string) string {
	code, ok := a.airportCode(text)
	if !ok {
		return replyInvalidAirport("from")
	}
	sess.State = session.AwaitingBookingDestination{Source: code}
	return replyAskBookingDestination
}

func (a *Assistant) handleBookingDestination(ctx context.Context, sess *session.Session, st session.AwaitingBookingDestination, text string) (string, error) {
	code, ok := a.airportCode(text)
	if !ok {
		return replyInvalidAirport("to"), nil
	}
	if code == st.Source {
		return replySameAirport(code), nil
	}

	candidates, err := a.flights.FlightsByRoute(ctx, st.Source, code)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		sess.Reset()
		return replyNoRouteFlights(st.Source, code), nil
	}

	flight := candidates[0]
	seat, err := a.flights.FirstAvailableSeat(ctx, flight.ID)
	if errors.Is(err, domain.ErrNoSeatsAvailable) {
		sess.Reset()
		return replyFlightFull(flight.FlightNumber), nil
	}
	if err != nil {
		return "", err
	}

	sess.State = session.AwaitingBookingConfirmation{BookingSlots: session.BookingSlots{
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		Seat:         seat.Label(),
		Fare:         seat.Price,
	}}
	return replyProposeBooking(flight, *seat), nil
}

func (a *Assistant) handleBookingConfirmation(sess *session.Session, st session.AwaitingBookingConfirmation, text string) string {
	if !isAffirmative(text) {
		sess.Reset()
		return replyBookingDeclined
	}
	sess.State = session.AwaitingCustomerID{BookingSlots: st.BookingSlots}
	return replyAskCustomerID
}

func (a *Assistant) handleCustomerID(ctx context.Context, sess *session.Session, st session.AwaitingCustomerID, text string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return replyCustomerIDNotNumeric, nil
	}

	if _, err := a.bookings.Customer(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return replyCustomerUnknown(id), nil
		}
		return "", err
	}

	b, err := a.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		CustomerID: id,
		FlightID:   st.FlightID,
		SeatLabel:  st.Seat,
	})
	sess.Reset()
	if err != nil {
		if domain.IsBookingFailure(err) || errors.Is(err, domain.ErrNoSeatsAvailable) {
			return replyBookingFailed(err, st.Seat), nil
		}
		return "", err
	}
	return replyBooked(b, st.FlightNumber), nil
}

func (a *Assistant) handleSearchSource(sess *session.Session, text string) string {
	code, ok := a.airportCode(text)
	if !ok {
		return replyInvalidAirport("from")
	}
	sess.State = session.AwaitingSearchDestination{Source: code}
	return replyAskSearchDestination
}

// handleSearchDestination stores the Idle state before calling the gateway
// so a slow or interrupted search never leaves the user mid-dialog.
func (a *Assistant) handleSearchDestination(ctx context.Context, sess *session.Session, st session.AwaitingSearchDestination, text string) (string, error) {
	code, ok := a.airportCode(text)
	if !ok {
		return replyInvalidAirport("to"), nil
	}
	sess.Reset()
	if err := a.persist(ctx, sess); err != nil {
		return "", err
	}
	return a.searchRoute(ctx, st.Source, code), nil
}

func (a *Assistant) searchRoute(ctx context.Context, source, destination string) string {
	if a.live == nil {
		return replySearchError
	}
	results, err := a.live.SearchRoute(ctx, source, destination)
	if err != nil || results == nil {
		a.log.WithError(err).WithFields(logrus.Fields{"source": source, "destination": destination}).Warn("route search failed")
		return replySearchError
	}
	if len(results) == 0 {
		return replyNoSearchResults(source, destination)
	}
	return replySearchResults(source, destination, results)
}
