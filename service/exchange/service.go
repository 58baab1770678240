package exchange

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/lock"
	"github.com/viant/fluxmesh/logging"
	"github.com/viant/fluxmesh/metric"
	"github.com/viant/fluxmesh/model/id"
	"github.com/viant/fluxmesh/model/mail"
	"github.com/viant/fluxmesh/model/pile"
	"github.com/viant/fluxmesh/tracing"
	"golang.org/x/sync/errgroup"
)

type sourceLocks struct {
	collect *lock.Mutex
	deliver *lock.Mutex
}

// Service mediates mail between registered sources
type Service struct {
	refresh time.Duration
	strict  bool
	logger  logging.Logger
	metrics *metric.Metrics
	initial []Source

	sources *pile.Pile[Source]
	mux     sync.Mutex
	staged  map[id.ID]*staging
	locks   map[id.ID]*sourceLocks

	running    bool
	shutdownCh chan struct{}
	loopDone   chan struct{}
}

// New creates an exchange
func New(options ...Option) (*Service, error) {
	s := &Service{
		refresh: time.Second,
		staged:  map[id.ID]*staging{},
		locks:   map[id.ID]*sourceLocks{},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.refresh < 0 {
		return nil, errs.Configuration("refresh interval must not be negative, got %v", s.refresh)
	}
	if s.logger == nil {
		s.logger = logging.NoOp()
	}
	var err error
	if s.sources, err = pile.New[Source](); err != nil {
		return nil, err
	}
	if err = s.AddSource(s.initial...); err != nil {
		return nil, err
	}
	s.initial = nil
	return s, nil
}

// AddSource registers sources; registering a known source is a no-op
func (s *Service) AddSource(sources ...Source) error {
	for _, source := range sources {
		if source == nil || source.Mailbox() == nil {
			return errs.Validation("source has no mailbox")
		}
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if err := s.sources.Include(sources...); err != nil {
		return err
	}
	for _, source := range sources {
		key := source.Identity()
		if _, ok := s.locks[key]; !ok {
			s.locks[key] = &sourceLocks{collect: lock.New(), deliver: lock.New()}
		}
	}
	return nil
}

// DeleteSource unregisters sources and discards mail staged from or to them
func (s *Service) DeleteSource(refs ...interface{}) error {
	keys := make([]id.ID, 0, len(refs))
	for _, ref := range refs {
		key, err := id.Of(ref)
		if err != nil {
			return err
		}
		if !s.sources.Contains(key) {
			return errs.Lookup("source %v does not exist", key)
		}
		keys = append(keys, key)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if err := s.sources.Exclude(keys); err != nil {
		return err
	}
	discarded := 0
	for _, key := range keys {
		if staged, ok := s.staged[key]; ok {
			discarded += staged.len()
			delete(s.staged, key)
		}
		for recipient, staged := range s.staged {
			discarded += staged.remove(key)
			if len(staged.senders) == 0 {
				delete(s.staged, recipient)
			}
		}
		delete(s.locks, key)
	}
	if discarded > 0 {
		s.metrics.Discarded(discarded)
		s.logger.Info("discarded staged mail of deleted sources", "sources", len(keys), "mails", discarded)
	}
	return nil
}

// Source returns a registered source
func (s *Service) Source(ref interface{}) (Source, error) {
	key, err := id.Of(ref)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.Get(key)
	if err != nil {
		return nil, errs.Lookup("source %v does not exist", key)
	}
	return source, nil
}

// Sources returns registered sources in registration order
func (s *Service) Sources() []Source {
	return s.sources.Values()
}

// CreateMail creates mail between registered sources
func (s *Service) CreateMail(sender, recipient interface{}, category mail.Category, item interface{}, requestSource interface{}) (*mail.Mail, error) {
	from, err := s.Source(sender)
	if err != nil {
		return nil, err
	}
	to, err := s.Source(recipient)
	if err != nil {
		return nil, err
	}
	return mail.Compose(from.Identity(), to.Identity(), category, item, requestSource)
}

func (s *Service) sourceLocks(key id.ID) (*sourceLocks, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret, ok := s.locks[key]
	return ret, ok
}

// Collect drains the sender's outbound mail into staging. Mail addressed to
// an unregistered source is discarded; with strict routing it is also reported.
func (s *Service) Collect(ctx context.Context, sender interface{}) (err error) {
	source, err := s.Source(sender)
	if err != nil {
		return err
	}
	key := source.Identity()
	ctx, span := tracing.StartSpan(ctx, "exchange.Collect", tracing.KindConsumer)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"sender": key.String()})

	locks, ok := s.sourceLocks(key)
	if !ok {
		return errs.Lookup("source %v does not exist", key)
	}
	if err = locks.collect.LockContext(ctx); err != nil {
		return err
	}
	defer locks.collect.Unlock()

	items := source.Mailbox().DrainOut()
	if len(items) == 0 {
		return nil
	}
	var unknown []error
	collected := 0
	s.mux.Lock()
	if !s.sources.Contains(key) {
		s.mux.Unlock()
		s.metrics.Discarded(len(items))
		s.logger.Info("discarded mail of deleted source", "sender", key.String(), "mails", len(items))
		return errs.Lookup("source %v does not exist", key)
	}
	for _, item := range items {
		if !s.sources.Contains(item.Recipient) {
			unknown = append(unknown, errs.Lookup("recipient source %v does not exist", item.Recipient))
			continue
		}
		staged, ok := s.staged[item.Recipient]
		if !ok {
			staged = newStaging()
			s.staged[item.Recipient] = staged
		}
		staged.add(item)
		collected++
	}
	s.mux.Unlock()

	span.WithCount("collected", collected)
	s.metrics.Collected(collected)
	if len(unknown) > 0 {
		s.metrics.Discarded(len(unknown))
		s.logger.Warn("discarded mail to unknown recipients", "sender", key.String(), "mails", len(unknown))
		if s.strict {
			return errors.Join(unknown...)
		}
	}
	return nil
}

// Deliver moves mail staged for the recipient into its inbound sequences,
// sender by sender in collection order.
func (s *Service) Deliver(ctx context.Context, recipient interface{}) (err error) {
	source, err := s.Source(recipient)
	if err != nil {
		return err
	}
	key := source.Identity()
	ctx, span := tracing.StartSpan(ctx, "exchange.Deliver", tracing.KindProducer)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"recipient": key.String()})

	locks, ok := s.sourceLocks(key)
	if !ok {
		return errs.Lookup("source %v does not exist", key)
	}
	if err = locks.deliver.LockContext(ctx); err != nil {
		return err
	}
	defer locks.deliver.Unlock()

	s.mux.Lock()
	staged := s.staged[key]
	delete(s.staged, key)
	s.mux.Unlock()
	if staged == nil {
		return nil
	}

	delivered := 0
	box := source.Mailbox()
	for len(staged.senders) > 0 {
		sender := staged.senders[0]
		queue := staged.mails[sender]
		for len(queue) > 0 {
			if err = box.AppendInContext(ctx, queue[0]); err != nil {
				if errors.Is(err, errs.ErrValidation) {
					s.logger.Warn("discarded undeliverable mail", "recipient", key.String(), "mail", queue[0].ID.String(), "error", err)
					s.metrics.Discarded(1)
					queue = queue[1:]
					err = nil
					continue
				}
				staged.mails[sender] = queue
				s.restage(key, staged)
				span.WithCount("delivered", delivered)
				s.metrics.Delivered(delivered)
				return err
			}
			queue = queue[1:]
			delivered++
		}
		staged.remove(sender)
	}
	span.WithCount("delivered", delivered)
	s.metrics.Delivered(delivered)
	return nil
}

func (s *Service) restage(key id.ID, undelivered *staging) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if !s.sources.Contains(key) {
		s.metrics.Discarded(undelivered.len())
		return
	}
	current, ok := s.staged[key]
	if !ok {
		s.staged[key] = undelivered
		return
	}
	current.prepend(undelivered)
}

// CollectAll collects outbound mail of every registered source concurrently
func (s *Service) CollectAll(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, source := range s.Sources() {
		key := source.Identity()
		group.Go(func() error {
			return s.ignoreDeleted(s.Collect(groupCtx, key))
		})
	}
	return group.Wait()
}

// DeliverAll delivers staged mail to every registered source concurrently
func (s *Service) DeliverAll(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, source := range s.Sources() {
		key := source.Identity()
		group.Go(func() error {
			return s.ignoreDeleted(s.Deliver(groupCtx, key))
		})
	}
	return group.Wait()
}

// ignoreDeleted drops lookup errors of sources deleted while a fan-out was in progress
func (s *Service) ignoreDeleted(err error) error {
	if err != nil && !s.strict && errors.Is(err, errs.ErrLookup) {
		return nil
	}
	return err
}

// Staged returns mail staged for the recipient keyed by sender
func (s *Service) Staged(recipient interface{}) map[id.ID][]*mail.Mail {
	key, err := id.Of(recipient)
	if err != nil {
		return nil
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	staged, ok := s.staged[key]
	if !ok {
		return map[id.ID][]*mail.Mail{}
	}
	return staged.snapshot()
}

// StagedLen returns the number of staged mails
func (s *Service) StagedLen() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	count := 0
	for _, staged := range s.staged {
		count += staged.len()
	}
	return count
}

func (s *Service) begin() (chan struct{}, chan struct{}, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.running {
		return nil, nil, errs.Validation("exchange is already running")
	}
	s.running = true
	s.shutdownCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	return s.shutdownCh, s.loopDone, nil
}

// Execute collects and delivers mail every refresh interval until Stop is
// called or ctx is done. A non-positive refresh uses the configured interval.
func (s *Service) Execute(ctx context.Context, refresh time.Duration) error {
	shutdownCh, loopDone, err := s.begin()
	if err != nil {
		return err
	}
	return s.loop(ctx, refresh, shutdownCh, loopDone)
}

// Start runs Execute in the background; it is a no-op when already running.
func (s *Service) Start(ctx context.Context, refresh time.Duration) {
	shutdownCh, loopDone, err := s.begin()
	if err != nil {
		return
	}
	go func() {
		if err := s.loop(ctx, refresh, shutdownCh, loopDone); err != nil {
			s.logger.Error("exchange loop stopped", "error", err)
		}
	}()
}

// Running returns true while the execute loop runs
func (s *Service) Running() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.running
}

func (s *Service) loop(ctx context.Context, refresh time.Duration, shutdownCh, loopDone chan struct{}) error {
	defer func() {
		s.mux.Lock()
		s.running = false
		s.mux.Unlock()
		close(loopDone)
	}()
	if refresh <= 0 {
		refresh = s.refresh
	}
	for {
		select {
		case <-shutdownCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.CollectAll(ctx); err != nil {
			s.logger.Warn("mail collection failed", "error", err)
		}
		if err := s.DeliverAll(ctx); err != nil {
			s.logger.Warn("mail delivery failed", "error", err)
		}
		if refresh <= 0 {
			runtime.Gosched()
			continue
		}
		timer := time.NewTimer(refresh)
		select {
		case <-shutdownCh:
			timer.Stop()
			return nil
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Stop requests the execute loop to exit between cycles and waits until it does.
func (s *Service) Stop() {
	s.mux.Lock()
	if !s.running {
		s.mux.Unlock()
		return
	}
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
	loopDone := s.loopDone
	s.mux.Unlock()
	<-loopDone
}
