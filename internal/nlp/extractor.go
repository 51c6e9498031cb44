package nlp

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Domenick1991/tripassist/internal/domain"
)

// Keywords reported in Entities.Keywords.
const (
	KeywordStatus    = "status"
	KeywordArrival   = "arrival"
	KeywordDeparture = "departure"
	KeywordETA       = "eta"
	KeywordDelay     = "delay"
	KeywordGate      = "gate"
	KeywordTerminal  = "terminal"
	KeywordOnTime    = "on time"
	KeywordCancel    = "cancel"
	KeywordBook      = "book"
	KeywordPNR       = "pnr"
	KeywordSeat      = "seat"
	KeywordAvailable = "available"
	KeywordSearch    = "search"
	KeywordFlight    = "flight"
	KeywordPolicy    = "policy"
	KeywordBaggage   = "baggage"
	KeywordPet       = "pet"
	KeywordAnimal    = "animal"
	KeywordRefund    = "refund"
	KeywordCheckIn   = "check-in"
)

var keywordPatterns = []struct {
	keyword string
	re      *regexp.Regexp
}{
	{KeywordStatus, regexp.MustCompile(`(?i)\bstatus\b`)},
	{KeywordArrival, regexp.MustCompile(`(?i)\b(arriv\w*|land(s|ing|ed)?)\b`)},
	{KeywordDeparture, regexp.MustCompile(`(?i)\b(depart\w*|leav(e|es|ing))\b`)},
	{KeywordETA, regexp.MustCompile(`(?i)\beta\b`)},
	{KeywordDelay, regexp.MustCompile(`(?i)\bdelay(s|ed)?\b`)},
	{KeywordGate, regexp.MustCompile(`(?i)\bgates?\b`)},
	{KeywordTerminal, regexp.MustCompile(`(?i)\bterminals?\b`)},
	{KeywordOnTime, regexp.MustCompile(`(?i)\bon[\s-]time\b`)},
	{KeywordCancel, regexp.MustCompile(`(?i)\bcancel\w*`)},
	{KeywordBook, regexp.MustCompile(`(?i)\b(book(ing)?|reserve|reservation)\b`)},
	{KeywordPNR, regexp.MustCompile(`(?i)\bpnr\b`)},
	{KeywordSeat, regexp.MustCompile(`(?i)\bseats?\b`)},
	{KeywordAvailable, regexp.MustCompile(`(?i)\b(availab\w*|free|left|open|remaining|how many)\b`)},
	{KeywordSearch, regexp.MustCompile(`(?i)\b(search|find|show|list|any flights|flights from)\b`)},
	{KeywordFlight, regexp.MustCompile(`(?i)\bflights?\b`)},
	{KeywordPolicy, regexp.MustCompile(`(?i)\b(polic(y|ies)|rules?|allowance)\b`)},
	{KeywordBaggage, regexp.MustCompile(`(?i)\b(baggage|luggage|bags?|suitcases?)\b`)},
	{KeywordPet, regexp.MustCompile(`(?i)\b(pets?|dogs?|cats?)\b`)},
	{KeywordAnimal, regexp.MustCompile(`(?i)\banimals?\b`)},
	{KeywordRefund, regexp.MustCompile(`(?i)\brefund\w*`)},
	{KeywordCheckIn, regexp.MustCompile(`(?i)\bcheck[\s-]?in\b`)},
}

var (
	flightNumberRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]|[0-9][A-Z])(\d{3,4})\b`)
	spacedFlightRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]|[0-9][A-Z])\s+(\d{1,4})\b`)
	bareDigitsRe   = regexp.MustCompile(`\b(\d{3,4})\b`)
	airlineCodeRe  = regexp.MustCompile(`\b([A-Z0-9]{2})\b`)
	upperCodeRe    = regexp.MustCompile(`\b[A-Z]{3}\b`)
	routeCodeRe    = regexp.MustCompile(`(?i)\b(?:from|to)\s+([a-z]{3})\b`)
	dateRe         = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}(/\d{2,4})?|today|tonight|tomorrow|yesterday|(mon|tues|wednes|thurs|fri|satur|sun)day|\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*|(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2}(st|nd|rd|th)?|\d{1,2}:\d{2}\s*(am|pm)?)\b`)
)

// uppercase three letter words that are not airports
var codeStopwords = map[string]bool{
	"PNR": true, "ETA": true, "THE": true, "AND": true, "FOR": true, "YES": true,
	"WHO": true, "HOW": true, "WHY": true, "CAN": true, "ANY": true, "NOT": true,
	"YOU": true, "ARE": true, "OUT": true, "ALL": true, "HAS": true, "WAS": true,
	"GET": true, "NEW": true, "NOW": true, "OFF": true, "BAG": true, "PET": true,
	"CAT": true, "DOG": true, "API": true, "USD": true, "INR": true, "AIR": true,
}

var knownAirports = map[string]bool{
	"DEL": true, "BOM": true, "BLR": true, "MAA": true, "CCU": true, "HYD": true,
	"GOI": true, "COK": true, "PNQ": true, "AMD": true, "DXB": true, "LHR": true,
	"EWR": true, "JFK": true, "SFO": true, "ORD": true, "ATL": true, "LAX": true,
	"SIN": true, "DOH": true, "FRA": true, "CDG": true,
}

var cityAirports = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`(?i)\b(new\s+)?delhi\b`), "DEL"},
	{regexp.MustCompile(`(?i)\b(mumbai|bombay)\b`), "BOM"},
	{regexp.MustCompile(`(?i)\b(bangalore|bengaluru)\b`), "BLR"},
	{regexp.MustCompile(`(?i)\b(chennai|madras)\b`), "MAA"},
	{regexp.MustCompile(`(?i)\b(kolkata|calcutta)\b`), "CCU"},
	{regexp.MustCompile(`(?i)\bhyderabad\b`), "HYD"},
	{regexp.MustCompile(`(?i)\bgoa\b`), "GOI"},
	{regexp.MustCompile(`(?i)\bdubai\b`), "DXB"},
	{regexp.MustCompile(`(?i)\blondon\b`), "LHR"},
	{regexp.MustCompile(`(?i)\bnewark\b`), "EWR"},
	{regexp.MustCompile(`(?i)\bnew\s+york\b`), "JFK"},
	{regexp.MustCompile(`(?i)\bsingapore\b`), "SIN"},
	{regexp.MustCompile(`(?i)\bdoha\b`), "DOH"},
}

// AirportCode resolves a city name or IATA code typed on its own, as in a
// reply to "which city are you flying from?".
func AirportCode(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, c := range cityAirports {
		if loc := c.re.FindStringIndex(trimmed); loc != nil && loc[0] == 0 && loc[1] == len(trimmed) {
			return c.code, true
		}
	}
	return "", false
}

// KeywordExtractor is a rule based extractor. It is stateless and safe for
// concurrent use.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

func (x *KeywordExtractor) Extract(text string) Entities {
	e := Entities{Locations: []string{}, Dates: []string{}, Keywords: []string{}}

	for _, kp := range keywordPatterns {
		if kp.re.MatchString(text) {
			e.Keywords = append(e.Keywords, kp.keyword)
		}
	}
	if code, ok := domain.AirlineCodeForName(text); ok {
		e.Keywords = append(e.Keywords, strings.ToLower(domain.AirlineName(code)))
	}

	extractFlight(text, &e)
	e.Locations = extractLocations(text)
	e.Dates = append(e.Dates, dateRe.FindAllString(text, -1)...)
	e.Intent = classify(e)
	return e
}

func extractFlight(text string, e *Entities) {
	upper := strings.ToUpper(text)
	if m := flightNumberRe.FindStringSubmatch(upper); m != nil {
		e.FlightNumber = m[1] + m[2]
		e.AirlineCode = m[1]
		e.FlightDigits = m[2]
		return
	}
	for _, m := range spacedFlightRe.FindAllStringSubmatch(upper, -1) {
		if domain.IsAirlineCode(m[1]) {
			e.AirlineCode = m[1]
			e.FlightDigits = m[2]
			return
		}
	}
	code, ok := domain.AirlineCodeForName(text)
	if !ok {
		code, ok = bareAirlineCode(upper)
	}
	if ok {
		e.AirlineCode = code
		if m := bareDigitsRe.FindStringSubmatch(text); m != nil {
			e.FlightDigits = m[1]
		}
	}
}

// bareAirlineCode finds a designator written on its own, as in "EK baggage".
func bareAirlineCode(upper string) (string, bool) {
	for _, m := range airlineCodeRe.FindAllStringSubmatch(upper, -1) {
		if domain.IsAirlineCode(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

type located struct {
	pos  int
	code string
}

func extractLocations(text string) []string {
	var found []located
	for _, idx := range upperCodeRe.FindAllStringIndex(text, -1) {
		code := text[idx[0]:idx[1]]
		if codeStopwords[code] {
			continue
		}
		found = append(found, located{idx[0], code})
	}
	for _, m := range routeCodeRe.FindAllStringSubmatchIndex(text, -1) {
		code := strings.ToUpper(text[m[2]:m[3]])
		if knownAirports[code] {
			found = append(found, located{m[2], code})
		}
	}
	for _, c := range cityAirports {
		for _, idx := range c.re.FindAllStringIndex(text, -1) {
			found = append(found, located{idx[0], c.code})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	out := make([]string, 0, len(found))
	seen := map[string]bool{}
	for _, l := range found {
		if seen[l.code] {
			continue
		}
		seen[l.code] = true
		out = append(out, l.code)
	}
	return out
}

func classify(e Entities) Intent {
	switch {
	case e.HasKeyword(KeywordSeat) && e.HasKeyword(KeywordAvailable) && !e.HasKeyword(KeywordBook):
		return IntentSeatAvailability
	case e.HasAnyKeyword(KeywordPolicy, KeywordBaggage, KeywordPet, KeywordAnimal, KeywordCheckIn):
		return IntentPolicy
	case e.HasKeyword(KeywordCancel):
		return IntentCancelBooking
	case e.HasKeyword(KeywordRefund):
		return IntentPolicy
	case e.HasKeyword(KeywordBook):
		return IntentCreateBooking
	case e.Flight() != "":
		return IntentFlightInfo
	case len(e.Locations) >= 2, e.HasKeyword(KeywordSearch) && e.HasKeyword(KeywordFlight):
		return IntentSearchRoute
	case e.HasAnyKeyword(KeywordStatus, KeywordArrival, KeywordDeparture, KeywordETA, KeywordDelay,
		KeywordGate, KeywordTerminal, KeywordOnTime):
		return IntentFlightInfo
	default:
		return IntentUnknown
	}
}
