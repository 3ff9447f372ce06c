package offer

import (
	"fmt"
	"regexp"
	"strings"
)

// TriggerPhrase must appear (case-insensitively) in an assistant reply before
// any extraction is attempted.
const TriggerPhrase = "alternative ticket"

// DefaultPrice is used when the reply carries no "Price USD:" line.
const DefaultPrice = "$0.00"

// Offer is an alternative itinerary parsed out of an assistant reply.
type Offer struct {
	DepartureAirport    string `json:"departureAirport"`
	DepartureCode       string `json:"departureCode"`
	ArrivalAirport      string `json:"arrivalAirport"`
	ArrivalCode         string `json:"arrivalCode"`
	DepartureDate       string `json:"departureDate"`
	DepartureTime       string `json:"departureTime"`
	ArrivalDate         string `json:"arrivalDate"`
	ArrivalTime         string `json:"arrivalTime"`
	ReturnDepartureDate string `json:"returnDepartureDate"`
	ReturnDepartureTime string `json:"returnDepartureTime"`
	ReturnArrivalDate   string `json:"returnArrivalDate"`
	ReturnArrivalTime   string `json:"returnArrivalTime"`
	Price               string `json:"price"`
	FlightNumber        string `json:"flightNumber"`
}

const (
	airportValue = `([^()<>\n*:]+?)\s*\(\s*([A-Z0-9]{3,4})\s*\)`
	dateValue    = `(\d{1,2}/\d{1,2}/\d{4})`
	timeValue    = `(\d{1,2}:\d{2})`
	priceValue   = `\$\s*(\d[\d,]*(?:\.\d+)?)`
	// carrier code, an optional single space, then the number: "AA100", "AA 100"
	flightValue = `([A-Za-z0-9]{2,3} ?\d[A-Za-z0-9-]*|[A-Za-z0-9][A-Za-z0-9-]*)`
)

var (
	departureAirportRe    = labeled("Departure Airport", airportValue)
	arrivalAirportRe      = labeled("Arrival Airport", airportValue)
	departureDateRe       = labeled("Departure Date", dateValue)
	departureTimeRe       = labeled("Departure Time", timeValue)
	arrivalDateRe         = labeled("Arrival Date", dateValue)
	arrivalTimeRe         = labeled("Arrival Time", timeValue)
	returnDateRe          = labeled("Return Date", dateValue)
	returnDepartureTimeRe = labeled("Return Departure Time", timeValue)
	returnArrivalDateRe   = labeled("Return Arrival Date", dateValue)
	returnArrivalTimeRe   = labeled("Return Arrival Time", timeValue)
	priceRe               = labeled("Price USD", priceValue)
	flightNumberRe        = labeled("Flight Number", flightValue)
)

// labeled builds the pattern for "<label>: <value>". The label may be wrapped
// in markdown bold markers. Group 1 captures a leading "Return " so that
// "Departure Time" does not pick up "Return Departure Time".
func labeled(label, value string) *regexp.Regexp {
	name := strings.ReplaceAll(regexp.QuoteMeta(label), " ", `\s+`)
	return regexp.MustCompile(`(Return\s+)?` + name + `(?:\*\*)?\s*:\s*(?:\*\*)?\s*` + value)
}

// find returns the value groups of the first match not preceded by "Return".
func find(re *regexp.Regexp, text string) []string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if m[1] == "" {
			return m[2:]
		}
	}
	return nil
}

func first(re *regexp.Regexp, text string) string {
	if m := find(re, text); m != nil {
		return strings.TrimSpace(m[0])
	}
	return ""
}

// HasTrigger reports whether text proposes an alternative ticket.
func HasTrigger(text string) bool {
	return strings.Contains(strings.ToLower(text), TriggerPhrase)
}

// Extract parses an offer from an assistant reply. It only succeeds when the
// reply contains the trigger phrase and both airports can be parsed.
func Extract(text string) (Offer, bool) {
	if !HasTrigger(text) {
		return Offer{}, false
	}
	return Parse(text)
}

// Parse applies the field patterns without checking for the trigger phrase.
func Parse(text string) (Offer, bool) {
	dep := find(departureAirportRe, text)
	arr := find(arrivalAirportRe, text)
	if dep == nil || arr == nil {
		return Offer{}, false
	}

	o := Offer{
		DepartureAirport:    strings.TrimSpace(dep[0]),
		DepartureCode:       dep[1],
		ArrivalAirport:      strings.TrimSpace(arr[0]),
		ArrivalCode:         arr[1],
		DepartureDate:       first(departureDateRe, text),
		DepartureTime:       first(departureTimeRe, text),
		ArrivalDate:         first(arrivalDateRe, text),
		ArrivalTime:         first(arrivalTimeRe, text),
		ReturnDepartureDate: first(returnDateRe, text),
		ReturnDepartureTime: first(returnDepartureTimeRe, text),
		ReturnArrivalDate:   first(returnArrivalDateRe, text),
		ReturnArrivalTime:   first(returnArrivalTimeRe, text),
		Price:               DefaultPrice,
		FlightNumber:        first(flightNumberRe, text),
	}
	if amount := first(priceRe, text); amount != "" {
		o.Price = "$" + amount
	}
	return o, true
}

// Route formats the offer as "NAME (CODE) → NAME (CODE)".
func (o Offer) Route() string {
	return fmt.Sprintf("%s (%s) → %s (%s)", o.DepartureAirport, o.DepartureCode, o.ArrivalAirport, o.ArrivalCode)
}

// HasReturn reports whether any return leg field was parsed.
func (o Offer) HasReturn() bool {
	return o.ReturnDepartureDate != "" || o.ReturnDepartureTime != "" ||
		o.ReturnArrivalDate != "" || o.ReturnArrivalTime != ""
}

// DateTime joins a date and a time, skipping whichever is empty.
func DateTime(date, clock string) string {
	return strings.TrimSpace(date + " " + clock)
}

// Outbound formats the outbound leg as "DEPARTURE → ARRIVAL" date-times.
func (o Offer) Outbound() string {
	return leg(DateTime(o.DepartureDate, o.DepartureTime), DateTime(o.ArrivalDate, o.ArrivalTime))
}

// Return formats the return leg, empty when the offer is one-way.
func (o Offer) Return() string {
	if !o.HasReturn() {
		return ""
	}
	return leg(DateTime(o.ReturnDepartureDate, o.ReturnDepartureTime), DateTime(o.ReturnArrivalDate, o.ReturnArrivalTime))
}

func leg(from, to string) string {
	switch {
	case from == "" && to == "":
		return ""
	case to == "":
		return from
	case from == "":
		return "→ " + to
	}
	return from + " → " + to
}
