package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/tripassist/internal/domain"
)

const (
	replyUnexpected = "Sorry, something unexpected went wrong on our side. Let's start over: how can I help you?"
	replyEscaped    = "Okay, I've stopped that. How else can I help?"
	replyBusy       = "I'm still working on your previous message. Please try again in a moment."

	replyNeedFlightNumber     = "Please provide a flight number (e.g., AI202 or UA2402)."
	replyNeedSeatFlightNumber = "Please tell me which flight you want to check seats for (e.g., AI202)."
	replyNoFlightInfo         = "I couldn't find any information for that flight in live data or our records."

	replyAskPNR        = "Sure, please share the PNR of the booking you want to cancel."
	replyPNRNotFound   = "I couldn't find that PNR in our system. Please check and send the PNR again."
	replyCancelDecline = "Okay, I will not cancel the booking."

	replyAskBookingSource      = "Sure, let's book a flight. Which airport are you flying from? (3-letter code, e.g., DEL)"
	replyAskBookingDestination = "Great. Where are you flying to? (3-letter code, e.g., BOM)"
	replyBookingDeclined       = "Okay, booking cancelled."
	replyAskCustomerID         = "Please provide your customer ID to complete the booking."
	replyCustomerIDNotNumeric  = "The customer ID should be a number. Please enter your customer ID."

	replyAskSearchSource      = "Sure, let's find flights. Which airport are you flying from? (3-letter code, e.g., DEL)"
	replyAskSearchDestination = "And where are you flying to? (3-letter code, e.g., BOM)"
	replySearchError          = "Sorry, I couldn't search for flights right now. Please try again later."
)

func replyInvalidAirport(leg string) string {
	return fmt.Sprintf("That doesn't look like a valid airport. Please enter the 3-letter code of the airport you are flying %s (e.g., DEL).", leg)
}

func replySameAirport(code string) string {
	return fmt.Sprintf("Your destination can't be the same as your departure airport (%s). Where are you flying to?", code)
}

func replySeatCounts(flightNumber string, counts domain.SeatCounts) string {
	switch counts.Available {
	case 0:
		return fmt.Sprintf("Sorry, there are no seats available on flight %s.", flightNumber)
	case 1:
		return fmt.Sprintf("There is 1 seat available on flight %s (out of %d).", flightNumber, counts.Total)
	default:
		return fmt.Sprintf("There are %d seats available on flight %s (out of %d).", counts.Available, flightNumber, counts.Total)
	}
}

func replyFlightUnknown(flightNumber string) string {
	return fmt.Sprintf("I couldn't find flight %s in our records.", flightNumber)
}

func replyConfirmCancel(b *domain.Booking, flight *domain.Flight) string {
	if flight == nil {
		return fmt.Sprintf("I found booking %s for customer id %d. Do you want to cancel it? (yes/no)", b.PNR, b.CustomerID)
	}
	return fmt.Sprintf("I found booking %s for customer id %d on flight %s (%s to %s), seat %s. Do you want to cancel it? (yes/no)",
		b.PNR, b.CustomerID, flight.FlightNumber, flight.Origin, flight.Destination, b.AssignedSeat)
}

func replyBookingVanished(pnr string) string {
	return fmt.Sprintf("I couldn't find booking %s anymore, so nothing was cancelled.", pnr)
}

func replyNoRouteFlights(source, destination string) string {
	return fmt.Sprintf("Sorry, I couldn't find any bookable flights from %s to %s.", source, destination)
}

func replyFlightFull(flightNumber string) string {
	return fmt.Sprintf("Sorry, flight %s has no seats available.", flightNumber)
}

func replyProposeBooking(f domain.Flight, seat domain.Seat) string {
	return fmt.Sprintf("I found flight %s from %s to %s departing %s with seat %s priced ₹%.2f. Confirm booking? (yes/no)",
		f.FlightNumber, f.Origin, f.Destination, f.ScheduledDeparture.UTC().Format("2006-01-02 15:04 UTC"), seat.Label(), seat.Price)
}

func replyCustomerUnknown(id int64) string {
	return fmt.Sprintf("I couldn't find a customer with ID %d. Please check and enter your customer ID again.", id)
}

func replyBooked(b *domain.Booking, flightNumber string) string {
	return fmt.Sprintf("Booking confirmed! Your PNR is %s. Seat %s on flight %s.", b.PNR, b.AssignedSeat, flightNumber)
}

func replyBookingFailed(err error, slots string) string {
	reason := "the booking could not be completed"
	switch {
	case errors.Is(err, domain.ErrSeatAlreadyBooked):
		reason = fmt.Sprintf("seat %s was just taken by someone else", slots)
	case errors.Is(err, domain.ErrFlightNotBookable):
		reason = "the flight is no longer open for booking"
	case errors.Is(err, domain.ErrFlightNotFound), errors.Is(err, domain.ErrSeatNotFound):
		reason = "the flight or seat no longer exists"
	case errors.Is(err, domain.ErrReferenceSpaceExhausted):
		reason = "we could not allocate a booking reference"
	}
	return fmt.Sprintf("Sorry, %s. Please start a new booking.", reason)
}

func replyNoSearchResults(source, destination string) string {
	return fmt.Sprintf("No flights found from %s to %s.", source, destination)
}

func replySearchResults(source, destination string, flights []domain.LiveFlight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the flights from %s to %s:", source, destination)
	for i, f := range flights {
		airline := f.Airline
		if airline == "" {
			airline = "unknown airline"
		}
		status := f.Status
		if status == "" {
			status = "unknown"
		}
		fmt.Fprintf(&b, "\n%d. %s (%s): departs %s, arrives %s, status: %s",
			i+1, f.FlightNumber, airline, domain.ClockTime(f.DepartureTime()), domain.ClockTime(f.ArrivalTime()), status)
	}
	return b.String()
}

var affirmatives = map[string]bool{"yes": true, "y": true, "confirm": true}

func isAffirmative(text string) bool {
	return affirmatives[normalizeAnswer(text)]
}

var escapes = map[string]bool{
	"stop": true, "quit": true, "exit": true, "abort": true, "reset": true,
	"start over": true, "never mind": true, "nevermind": true,
}

func isEscape(text string) bool {
	return escapes[normalizeAnswer(text)]
}

func normalizeAnswer(text string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), ".!")
}
