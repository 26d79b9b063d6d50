package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/logging"
	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
	"github.com/dmitrijs2005/mailrelay/internal/server/metrics"
)

// Relay operation names, used in logs and metric labels.
const (
	OpCreateAddress = "create_address"
	OpListMessages  = "list_messages"
	OpGetMessage    = "get_message"
	OpSendMessage   = "send_message"
	OpDeleteMessage = "delete_message"
	OpListDomains   = "list_domains"
)

// RelayService forwards mailbox operations to the provider on behalf of an
// already authenticated identity. Every call resolves the credential, builds
// a gateway for it and passes the result or error back unchanged.
type RelayService struct {
	resolver Resolver
	factory  mailtm.ClientFactory
	recorder metrics.Recorder
	logger   logging.Logger
}

func NewRelayService(r Resolver, f mailtm.ClientFactory, rec metrics.Recorder, l logging.Logger) *RelayService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &RelayService{
		resolver: r,
		factory:  f,
		recorder: rec,
		logger:   l.With("module", "relay"),
	}
}

func (s *RelayService) CreateAddress(ctx context.Context, identity, address string) (*mailtm.Address, error) {
	return relay(ctx, s, identity, OpCreateAddress, func(ctx context.Context, gw mailtm.Gateway) (*mailtm.Address, error) {
		return gw.CreateAddress(ctx, address)
	})
}

func (s *RelayService) ListMessages(ctx context.Context, identity, folder string) ([]mailtm.Message, error) {
	return relay(ctx, s, identity, OpListMessages, func(ctx context.Context, gw mailtm.Gateway) ([]mailtm.Message, error) {
		return gw.ListMessages(ctx, folder)
	})
}

func (s *RelayService) GetMessage(ctx context.Context, identity, id string) (*mailtm.Message, error) {
	return relay(ctx, s, identity, OpGetMessage, func(ctx context.Context, gw mailtm.Gateway) (*mailtm.Message, error) {
		return gw.GetMessage(ctx, id)
	})
}

// SendMessage is not idempotent: calling it twice sends twice.
func (s *RelayService) SendMessage(ctx context.Context, identity, to, subject, body string) (*mailtm.Message, error) {
	return relay(ctx, s, identity, OpSendMessage, func(ctx context.Context, gw mailtm.Gateway) (*mailtm.Message, error) {
		return gw.SendMessage(ctx, to, subject, body)
	})
}

func (s *RelayService) DeleteMessage(ctx context.Context, identity, id string) (bool, error) {
	return relay(ctx, s, identity, OpDeleteMessage, func(ctx context.Context, gw mailtm.Gateway) (bool, error) {
		return gw.DeleteMessage(ctx, id)
	})
}

func (s *RelayService) ListDomains(ctx context.Context, identity string) ([]mailtm.Domain, error) {
	return relay(ctx, s, identity, OpListDomains, func(ctx context.Context, gw mailtm.Gateway) ([]mailtm.Domain, error) {
		return gw.ListDomains(ctx)
	})
}

func relay[T any](ctx context.Context, s *RelayService, identity, op string, call func(ctx context.Context, gw mailtm.Gateway) (T, error)) (T, error) {
	start := time.Now()

	token, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		s.observe(ctx, op, identity, start, err)
		var zero T
		return zero, err
	}

	out, err := call(ctx, s.factory.NewClient(token))
	s.observe(ctx, op, identity, start, err)
	return out, err
}

func (s *RelayService) observe(ctx context.Context, op, identity string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := Outcome(err)

	s.recorder.ObserveRelayCall(op, outcome, elapsed)

	if outcome == "error" {
		s.logger.Error(ctx, "relay call failed", "op", op, "user", identity, "error", err)
		return
	}
	s.logger.Debug(ctx, "relay call", "op", op, "user", identity, "outcome", outcome, "elapsed", elapsed)
}

// Outcome names the error kind of a relay result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, common.ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, common.ErrRemoteNotFound):
		return "not_found"
	case errors.Is(err, common.ErrProviderRejected):
		return "provider_rejected"
	case errors.Is(err, common.ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}
