package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/segmentio/ksuid"
)

var (
	// ErrBusy indicates every outbound connection slot is in use
	ErrBusy = errors.New("all connections busy")

	// ErrNoHistory is returned by Operation when history is disabled
	ErrNoHistory = errors.New("operation history is disabled")
)

// Runner executes the protocol operations. *nntp.Client implements it.
type Runner interface {
	Authenticate(ctx context.Context, s domain.Session) domain.Result
	ListGroups(ctx context.Context, s domain.Session) domain.Result
	ListArticlesInGroup(ctx context.Context, s domain.Session, group string) domain.Result
	GetHeaders(ctx context.Context, s domain.Session, articleID, group string) domain.Result
	GetArticle(ctx context.Context, s domain.Session, articleID, group string) domain.Result
}

// Store persists operation records.
type Store interface {
	SaveOperation(ctx context.Context, rec *domain.OperationRecord) error
	ListOperations(ctx context.Context, limit int) ([]*domain.OperationRecord, error)
	GetOperation(ctx context.Context, id string) (*domain.OperationRecord, error)
}

type Logger interface {
	Debug(f string, v ...any)
	Info(f string, v ...any)
	Warn(f string, v ...any)
}

// Service is the entry point used by the CLI and the HTTP API. It bounds
// the number of concurrent outbound connections, records every finished
// operation and logs its outcome.
type Service struct {
	runner    Runner
	store     Store
	log       Logger
	semaphore chan struct{}
}

// NewService wires a runner to an optional store. maxConnections below 1
// is treated as 1.
func NewService(runner Runner, store Store, log Logger, maxConnections int) *Service {
	if maxConnections < 1 {
		maxConnections = 1
	}
	return &Service{
		runner:    runner,
		store:     store,
		log:       log,
		semaphore: make(chan struct{}, maxConnections),
	}
}

func (s *Service) Authenticate(ctx context.Context, sess domain.Session) domain.Result {
	return s.run(ctx, domain.OpAuthenticate, sess, "", func(ctx context.Context) domain.Result {
		return s.runner.Authenticate(ctx, sess)
	})
}

func (s *Service) ListGroups(ctx context.Context, sess domain.Session) domain.Result {
	return s.run(ctx, domain.OpListGroups, sess, "", func(ctx context.Context) domain.Result {
		return s.runner.ListGroups(ctx, sess)
	})
}

func (s *Service) ListArticlesInGroup(ctx context.Context, sess domain.Session, group string) domain.Result {
	return s.run(ctx, domain.OpListArticlesInGroup, sess, group, func(ctx context.Context) domain.Result {
		return s.runner.ListArticlesInGroup(ctx, sess, group)
	})
}

func (s *Service) GetHeaders(ctx context.Context, sess domain.Session, articleID, group string) domain.Result {
	return s.run(ctx, domain.OpGetHeaders, sess, argument(articleID, group), func(ctx context.Context) domain.Result {
		return s.runner.GetHeaders(ctx, sess, articleID, group)
	})
}

func (s *Service) GetArticle(ctx context.Context, sess domain.Session, articleID, group string) domain.Result {
	return s.run(ctx, domain.OpGetArticle, sess, argument(articleID, group), func(ctx context.Context) domain.Result {
		return s.runner.GetArticle(ctx, sess, articleID, group)
	})
}

// History returns the newest records first. Without a store it is empty.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.OperationRecord, error) {
	if s.store == nil {
		return []*domain.OperationRecord{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListOperations(ctx, limit)
}

// Operation looks up one record by id.
func (s *Service) Operation(ctx context.Context, id string) (*domain.OperationRecord, error) {
	if s.store == nil {
		return nil, ErrNoHistory
	}
	return s.store.GetOperation(ctx, id)
}

func (s *Service) run(ctx context.Context, op domain.Operation, sess domain.Session, arg string, fn func(context.Context) domain.Result) domain.Result {
	sess = sess.WithDefaults()
	started := time.Now()

	var res domain.Result
	select {
	case s.semaphore <- struct{}{}:
		res = s.call(ctx, fn)
	default:
		// All slots taken, report instead of queueing
		res = domain.Failed(domain.KindBusy, "failed: all connections busy", ErrBusy)
	}

	rec := &domain.OperationRecord{
		ID:           ksuid.New().String(),
		Operation:    op,
		Host:         sess.Host,
		Port:         sess.Port,
		Username:     sess.Username,
		Argument:     arg,
		Success:      res.Success,
		Kind:         res.Kind,
		Message:      res.Message,
		Greeting:     res.Greeting,
		LastResponse: res.LastResponse,
		LineCount:    len(res.Lines),
		StartedAt:    started.UTC(),
		Duration:     time.Since(started),
	}

	if res.Success {
		s.log.Info("%s(%s) %s:%d | %s | %s", op, arg, sess.Host, sess.Port, res.Message, rec.Duration)
	} else {
		s.log.Warn("%s(%s) %s:%d | %s | %s", op, arg, sess.Host, sess.Port, res.Message, rec.Duration)
	}

	if s.store != nil {
		// The caller's context may already be cancelled; the record is still wanted.
		if err := s.store.SaveOperation(context.WithoutCancel(ctx), rec); err != nil {
			s.log.Warn("failed to record operation %s: %v", rec.ID, err)
		} else {
			res.ID = rec.ID
		}
	}
	return res
}

// call holds a slot for the duration of fn, releasing it even if fn panics.
func (s *Service) call(ctx context.Context, fn func(context.Context) domain.Result) domain.Result {
	defer func() { <-s.semaphore }()
	return fn(ctx)
}

func argument(articleID, group string) string {
	if group == "" {
		return articleID
	}
	return group + "/" + articleID
}
