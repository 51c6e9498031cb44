package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
)

const (
	PolicyErrorText = "Sorry, I encountered an error while retrieving the policy information."
	FallbackText    = "Sorry, I didn't understand that. Try asking about flight status, booking, or cancellation."
)

// Generator produces free text for a prompt. Implementations may fail; the
// composer then answers from templates.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Composer turns structured results into replies. Every method returns
// usable text whether or not a generator is configured.
type Composer struct {
	gen Generator
	log logrus.FieldLogger
}

// New returns a template-only composer when gen is nil.
func New(gen Generator, log logrus.FieldLogger) *Composer {
	return &Composer{gen: gen, log: log}
}

func (c *Composer) FlightInfo(ctx context.Context, flight domain.LiveFlight, question string) string {
	answer := flightTemplate(flight, question)
	if c.gen == nil {
		return answer
	}
	prompt := fmt.Sprintf(
		"User asked: %s\n\nFlight data: %s\n\nAnswer the specific question first (arrival, departure, gate or terminal) if one is asked. Compose a short clear helpful reply (1-2 sentences).",
		question, describeFlight(flight),
	)
	return c.generate(ctx, prompt, answer, logrus.Fields{"flight_number": flight.FlightNumber})
}

// PolicyAnswer answers from the documents in lookup only. An empty lookup
// yields the not-found text without calling the generator.
func (c *Composer) PolicyAnswer(ctx context.Context, question string, lookup domain.PolicyLookup) string {
	if len(lookup.Documents) == 0 {
		return PolicyNotFound(lookup.PolicyType, lookup.AirlineCode)
	}
	answer := policyTemplate(lookup)
	if c.gen == nil {
		return answer
	}
	var b strings.Builder
	b.WriteString("Answer the customer's question using only the policy documents below. ")
	b.WriteString("If the documents do not contain the answer, say so.\n\n")
	for i, doc := range lookup.Documents {
		fmt.Fprintf(&b, "Document %d: %s\n", i+1, doc)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return c.generate(ctx, b.String(), answer, logrus.Fields{"policy_type": lookup.PolicyType, "airline_code": lookup.AirlineCode})
}

func (c *Composer) Fallback(ctx context.Context, question string) string {
	if c.gen == nil {
		return FallbackText
	}
	prompt := fmt.Sprintf(
		"You are an airline assistant that can check flight status, seat availability, bookings, cancellations and travel policies. "+
			"The customer said: %q. Reply in one or two sentences and steer them towards what you can help with.",
		question,
	)
	return c.generate(ctx, prompt, FallbackText, nil)
}

func (c *Composer) generate(ctx context.Context, prompt, fallback string, fields logrus.Fields) string {
	out, err := c.gen.Complete(ctx, prompt)
	if err != nil {
		c.log.WithError(err).WithFields(fields).Warn("generation failed, using template")
		return fallback
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return fallback
	}
	return out
}

// PolicyNotFound is the reply for a (type, airline) pair with no documents,
// including after the default airline fallback.
func PolicyNotFound(policyType, airlineCode string) string {
	if policyType == "" {
		policyType = "general"
	}
	msg := fmt.Sprintf("Sorry, I couldn't find information specifically about '%s' policies for %s.", policyType, airlineCode)
	if airlineCode != domain.DefaultAirlineCode {
		msg += fmt.Sprintf(" I also couldn't find it for our default airline (%s).", domain.DefaultAirlineCode)
	}
	return msg
}
