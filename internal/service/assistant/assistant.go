// Package assistant runs the per-user conversation: it classifies each
// message, advances the user's dialog state and produces the reply.
package assistant

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/tripassist/internal/domain"
	"github.com/Domenick1991/tripassist/internal/gateway"
	"github.com/Domenick1991/tripassist/internal/nlp"
	"github.com/Domenick1991/tripassist/internal/service/booking"
	"github.com/Domenick1991/tripassist/internal/service/flights"
	"github.com/Domenick1991/tripassist/internal/session"
)

// DefaultUserID is used for callers that do not identify themselves. All
// such callers share one conversation.
const DefaultUserID = "default_user"

type Extractor interface {
	Extract(text string) nlp.Entities
}

type Composer interface {
	FlightInfo(ctx context.Context, flight domain.LiveFlight, question string) string
	PolicyAnswer(ctx context.Context, question string, lookup domain.PolicyLookup) string
	Fallback(ctx context.Context, question string) string
}

// Locker serializes the messages of one user. Release errors are logged.
type Locker interface {
	Lock(ctx context.Context, userID string) (unlock func() error, err error)
}

type AssistantUseCase interface {
	Handle(ctx context.Context, userID, text string) string
	Transcript(ctx context.Context, userID string) ([]session.Turn, error)
}

type Assistant struct {
	store     session.Store
	locks     Locker
	extractor Extractor
	flights   flights.FlightUseCase
	bookings  booking.BookingUseCase
	live      gateway.Gateway
	composer  Composer
	validate  *validator.Validate
	log       logrus.FieldLogger
	now       func() time.Time
}

type Option func(*Assistant)

// WithLiveGateway enables real-time flight data. Without it flight status
// comes from the inventory and route search reports an error.
func WithLiveGateway(live gateway.Gateway) Option {
	return func(a *Assistant) {
		a.live = live
	}
}

// WithLocker replaces the in-process per-user lock, which only serializes
// messages handled by this instance.
func WithLocker(locks Locker) Option {
	return func(a *Assistant) {
		a.locks = locks
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

func New(
	store session.Store,
	extractor Extractor,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	composer Composer,
	log logrus.FieldLogger,
	opts ...Option,
) *Assistant {
	a := &Assistant{
		store:     store,
		locks:     session.NewLocker(),
		extractor: extractor,
		flights:   flightSvc,
		bookings:  bookingSvc,
		composer:  composer,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle processes one message from userID and returns the reply. It never
// fails: unexpected errors reset the dialog and produce a fixed apology.
func (a *Assistant) Handle(ctx context.Context, userID, text string) string {
	if userID == "" {
		userID = DefaultUserID
	}
	log := a.log.WithField("user_id", userID)

	unlock, err := a.locks.Lock(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("conversation is busy")
		return replyBusy
	}
	defer func() {
		if err := unlock(); err != nil {
			log.WithError(err).Warn("failed to release conversation lock")
		}
	}()

	sess, err := a.store.Get(ctx, userID)
	if err != nil {
		log.WithError(err).Error("failed to load session")
		return replyUnexpected
	}

	sess.Append(session.RoleUser, text, a.now())
	reply := a.step(ctx, sess, text, log)
	sess.Append(session.RoleAssistant, reply, a.now())

	if err := a.store.Put(ctx, userID, sess); err != nil {
		log.WithError(err).Error("failed to save session")
	}
	return reply
}

func (a *Assistant) Transcript(ctx context.Context, userID string) ([]session.Turn, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	sess, err := a.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sess.Transcript, nil
}

// step advances the dialog by one message inside the failure boundary.
func (a *Assistant) step(ctx context.Context, sess *session.Session, text string, log logrus.FieldLogger) (reply string) {
	from := sess.State.Kind()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{"state": from, "panic": r, "stack": string(debug.Stack())}).Error("dialog step panicked")
			sess.Reset()
			reply = replyUnexpected
		}
	}()

	reply, err := a.dispatch(ctx, sess, text)
	if err != nil {
		log.WithError(err).WithField("state", from).Error("dialog step failed")
		sess.Reset()
		return replyUnexpected
	}
	log.WithFields(logrus.Fields{"from": from, "to": sess.State.Kind()}).Debug("dialog step")
	return reply
}

func (a *Assistant) dispatch(ctx context.Context, sess *session.Session, text string) (string, error) {
	if _, idle := sess.State.(session.Idle); !idle && isEscape(text) {
		sess.Reset()
		return replyEscaped, nil
	}

	switch st := sess.State.(type) {
	case session.Idle:
		return a.handleIdle(ctx, sess, text)
	case session.AwaitingPNR:
		return a.handlePNR(ctx, sess, text)
	case session.AwaitingCancelConfirmation:
		return a.handleCancelConfirmation(ctx, sess, st, text)
	case session.AwaitingBookingSource:
		return a.handleBookingSource(sess, text), nil
	case session.AwaitingBookingDestination:
		return a.handleBookingDestination(ctx, sess, st, text)
	case session.AwaitingBookingConfirmation:
		return a.handleBookingConfirmation(sess, st, text), nil
	case session.AwaitingCustomerID:
		return a.handleCustomerID(ctx, sess, st, text)
	case session.AwaitingSearchSource:
		return a.handleSearchSource(sess, text), nil
	case session.AwaitingSearchDestination:
		return a.handleSearchDestination(ctx, sess, st, text)
	default:
		return "", fmt.Errorf("unhandled dialog state %T", st)
	}
}

// persist saves the session mid-step, before a slow external call.
func (a *Assistant) persist(ctx context.Context, sess *session.Session) error {
	if err := a.store.Put(ctx, sess.UserID, sess.Clone()); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

var _ AssistantUseCase = (*Assistant)(nil)

var (
	_ Locker = (*session.Locker)(nil)
	_ Locker = (*session.RedisLocker)(nil)
)
