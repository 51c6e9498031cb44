package domain

import "strings"

// DefaultAirlineCode is used when a request does not name an airline.
const DefaultAirlineCode = "AI"

var airlineNames = map[string]string{
	"AI": "Air India",
	"6E": "IndiGo",
	"UA": "United Airlines",
	"DL": "Delta Air Lines",
	"EK": "Emirates",
	"BA": "British Airways",
	"LH": "Lufthansa",
	"QR": "Qatar Airways",
	"SQ": "Singapore Airlines",
}

// airlineKeywords maps lower-case name fragments to airline codes.
var airlineKeywords = []struct {
	keyword string
	code    string
}{
	{"air india", "AI"},
	{"indigo", "6E"},
	{"united", "UA"},
	{"delta", "DL"},
	{"emirates", "EK"},
	{"british airways", "BA"},
	{"lufthansa", "LH"},
	{"qatar", "QR"},
	{"singapore airlines", "SQ"},
}

// AirlineName returns the marketing name for a code, or "" when unknown.
func AirlineName(code string) string {
	return airlineNames[strings.ToUpper(code)]
}

// IsAirlineCode reports whether code is a known airline designator.
func IsAirlineCode(code string) bool {
	_, ok := airlineNames[strings.ToUpper(code)]
	return ok
}

// AirlineCodes returns the known airline designators.
func AirlineCodes() []string {
	codes := make([]string, 0, len(airlineNames))
	for code := range airlineNames {
		codes = append(codes, code)
	}
	return codes
}

// AirlineCodeForName finds the airline mentioned by name in text.
func AirlineCodeForName(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range airlineKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.code, true
		}
	}
	return "", false
}
