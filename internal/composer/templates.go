package composer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/tripassist/internal/domain"
)

type subQuestion int

const (
	askGeneric subQuestion = iota
	askArrival
	askDeparture
	askGate
	askTerminal
)

var subQuestionPatterns = []struct {
	kind subQuestion
	re   *regexp.Regexp
}{
	{askGate, regexp.MustCompile(`\bgates?\b`)},
	{askTerminal, regexp.MustCompile(`\bterminals?\b`)},
	{askArrival, regexp.MustCompile(`\b(arriv\w*|land(s|ing)?|eta|reach\w*)\b`)},
	{askDeparture, regexp.MustCompile(`\b(depart\w*|leav\w*|take\s?off|takes\s?off|boarding)\b`)},
}

func detectSubQuestion(question string) subQuestion {
	q := strings.ToLower(question)
	for _, sq := range subQuestionPatterns {
		if sq.re.MatchString(q) {
			return sq.kind
		}
	}
	return askGeneric
}

func flightLabel(f domain.LiveFlight) string {
	if f.Airline == "" {
		return "Flight " + f.FlightNumber
	}
	return fmt.Sprintf("Flight %s (%s)", f.FlightNumber, f.Airline)
}

func flightTemplate(f domain.LiveFlight, question string) string {
	label := flightLabel(f)
	switch detectSubQuestion(question) {
	case askArrival:
		if t := f.ArrivalTime(); t != "" {
			return fmt.Sprintf("%s is expected to arrive%s at %s.", label, airportSuffix(f.ArrivalAirport), t)
		}
	case askDeparture:
		if t := f.DepartureTime(); t != "" {
			return fmt.Sprintf("%s is expected to depart%s at %s.", label, airportSuffix(f.DepartureAirport), t)
		}
	case askGate:
		if f.DepartureGate != "" {
			return fmt.Sprintf("%s departs from gate %s.", label, f.DepartureGate)
		}
		if f.ArrivalGate != "" {
			return fmt.Sprintf("%s arrives at gate %s.", label, f.ArrivalGate)
		}
	case askTerminal:
		if f.DepartureTerminal != "" {
			return fmt.Sprintf("%s departs from terminal %s.", label, f.DepartureTerminal)
		}
		if f.ArrivalTerminal != "" {
			return fmt.Sprintf("%s arrives at terminal %s.", label, f.ArrivalTerminal)
		}
	}
	return statusSentence(f)
}

func statusSentence(f domain.LiveFlight) string {
	status := f.Status
	if status == "" {
		status = "unknown"
	}
	parts := []string{fmt.Sprintf("%s is currently *%s*.", flightLabel(f), status)}
	if f.DepartureAirport != "" && f.ArrivalAirport != "" {
		parts = append(parts, fmt.Sprintf("It operates from %s to %s.", f.DepartureAirport, f.ArrivalAirport))
	}
	if t := f.DepartureTime(); t != "" {
		parts = append(parts, fmt.Sprintf("Estimated departure: %s.", t))
	}
	if t := f.ArrivalTime(); t != "" {
		parts = append(parts, fmt.Sprintf("Estimated arrival: %s.", t))
	}
	return strings.Join(parts, " ")
}

func airportSuffix(code string) string {
	if code == "" {
		return ""
	}
	return " at " + code
}

func policyTemplate(lookup domain.PolicyLookup) string {
	header := fmt.Sprintf("%s policy (%s):", lookup.PolicyType, lookup.AirlineCode)
	if lookup.PolicyType == "" {
		header = fmt.Sprintf("Policies (%s):", lookup.AirlineCode)
	}
	if len(lookup.Documents) == 1 {
		return header + " " + lookup.Documents[0]
	}
	var b strings.Builder
	b.WriteString(header)
	for _, doc := range lookup.Documents {
		b.WriteString("\n- ")
		b.WriteString(doc)
	}
	return b.String()
}

func describeFlight(f domain.LiveFlight) string {
	fields := []struct{ name, value string }{
		{"flight_number", f.FlightNumber},
		{"airline", f.Airline},
		{"status", f.Status},
		{"departure_airport", f.DepartureAirport},
		{"arrival_airport", f.ArrivalAirport},
		{"departure_time", f.DepartureTime()},
		{"arrival_time", f.ArrivalTime()},
		{"departure_gate", f.DepartureGate},
		{"departure_terminal", f.DepartureTerminal},
		{"arrival_gate", f.ArrivalGate},
		{"arrival_terminal", f.ArrivalTerminal},
	}
	var parts []string
	for _, kv := range fields {
		if kv.value != "" {
			parts = append(parts, kv.name+"="+kv.value)
		}
	}
	return strings.Join(parts, ", ")
}
