// Package checker runs one full check at a time on a background goroutine:
// log in, fetch every course, diff against the stored snapshot, persist
// the new snapshot and hand the delta back.
package checker

import (
	"context"
	"errors"
	"fmt"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/delta"
	"learnwatch/lib/obfstore"
	"learnwatch/lib/platforms/learn/core"
	"learnwatch/lib/platforms/learn/view"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("learnwatch/checker")

// ErrLoginCancelled is returned by a Prompter when the user declines to
// log in. The run ends quietly.
var ErrLoginCancelled = errors.New("login cancelled")

var ErrRunInProgress = errors.New("a check is already running")

type StateStore interface {
	Load(ctx context.Context) (obfstore.State, bool)
	Save(ctx context.Context, st obfstore.State) error
}

// Prompter asks the user for a credential. previous is the last known
// credential, if any. rejected is true when the site just refused it.
type Prompter interface {
	Credential(ctx context.Context, previous *courseinfo.Credential, rejected bool) (courseinfo.Credential, error)
}

type PrompterFunc func(ctx context.Context, previous *courseinfo.Credential, rejected bool) (courseinfo.Credential, error)

func (f PrompterFunc) Credential(ctx context.Context, previous *courseinfo.Credential, rejected bool) (courseinfo.Credential, error) {
	return f(ctx, previous, rejected)
}

type EventKind int

const (
	EventProgress EventKind = iota
	EventResult
	EventError
	EventCancelled
)

// Event is sent on the channel returned by Start. Every run sends zero or
// more progress events followed by exactly one result, error or cancelled
// event, then the channel is closed.
type Event struct {
	Kind    EventKind
	Message string

	// result only
	Result *Result
	// error only
	Err error
}

type Result struct {
	Credential  courseinfo.Credential
	Courses     int
	Total       int
	Items       []delta.Item
	MainPageUrl string
}

type Options struct {
	Store    StateStore
	Prompter Prompter
	Client   core.ClientOptions
	// how many credentials a single run tries before giving up, defaults
	// to 3
	LoginAttempts int
	// Report, if set, runs on the worker after the state is saved and
	// before the result event is sent.
	Report func(ctx context.Context, result *Result)
}

type Checker struct {
	opts    Options
	running atomic.Bool

	mu sync.Mutex
	// set after a run gave up on a rejected credential, the next run
	// prompts even if a credential is stored
	forcePrompt bool
}

func New(opts Options) *Checker {
	if opts.LoginAttempts <= 0 {
		opts.LoginAttempts = 3
	}
	return &Checker{opts: opts}
}

func (c *Checker) takeForcePrompt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	force := c.forcePrompt
	c.forcePrompt = false
	return force
}

func (c *Checker) setForcePrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forcePrompt = true
}

// Start begins a run. It fails with ErrRunInProgress until the previous
// run's final event has been sent.
func (c *Checker) Start(ctx context.Context) (<-chan Event, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	events := make(chan Event, 8)
	go func() {
		defer close(events)
		final := c.run(ctx, events)
		events <- final
		c.running.Store(false)
	}()
	return events, nil
}

// Run starts a run and waits for it, progress messages are passed to
// progress if it is not nil.
func (c *Checker) Run(ctx context.Context, progress func(message string)) (*Result, error) {
	events, err := c.Start(ctx)
	if err != nil {
		return nil, err
	}

	var result *Result
	for event := range events {
		switch event.Kind {
		case EventProgress:
			if progress != nil {
				progress(event.Message)
			}
		case EventResult:
			result = event.Result
		case EventError:
			err = event.Err
		case EventCancelled:
			err = ErrLoginCancelled
		}
	}
	return result, err
}

func failed(err error) Event {
	return Event{
		Kind:    EventError,
		Message: fmt.Sprintf("check failed: %s", err.Error()),
		Err:     err,
	}
}

func (c *Checker) run(ctx context.Context, events chan<- Event) (final Event) {
	ctx, span := tracer.Start(ctx, "checker:run")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected failure: %v", r)
			slog.ErrorContext(ctx, "check panicked", "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			final = failed(err)
		}
	}()

	progress := func(message string) {
		events <- Event{Kind: EventProgress, Message: message}
	}

	result, err := c.check(ctx, progress)
	if errors.Is(err, ErrLoginCancelled) {
		slog.InfoContext(ctx, "login cancelled")
		return Event{Kind: EventCancelled}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "check failed", "err", err)
		return failed(err)
	}

	span.SetAttributes(
		attribute.Int("courses", result.Courses),
		attribute.Int("items", result.Total),
		attribute.Int("new", len(result.Items)),
	)
	return Event{
		Kind:    EventResult,
		Message: fmt.Sprintf("check complete, %d updates", len(result.Items)),
		Result:  result,
	}
}

// login resolves a credential and logs client in with it, prompting again
// while the site rejects it.
func (c *Checker) login(ctx context.Context, client *core.Client, stored *courseinfo.Credential) (courseinfo.Credential, error) {
	rejected := c.takeForcePrompt()

	var cred courseinfo.Credential
	if stored != nil {
		cred = *stored
	}
	for attempt := 0; ; attempt++ {
		if stored == nil || rejected {
			var err error
			cred, err = c.opts.Prompter.Credential(ctx, stored, rejected)
			if err != nil {
				return cred, err
			}
		}

		err := client.Login(ctx, cred)
		if !errors.Is(err, core.ErrInvalidCredentials) {
			return cred, err
		}
		slog.WarnContext(ctx, "credential rejected", "credential", cred, "attempt", attempt+1)

		if attempt+1 >= c.opts.LoginAttempts {
			c.setForcePrompt()
			return cred, err
		}
		last := cred
		stored = &last
		rejected = true
	}
}

func (c *Checker) check(ctx context.Context, progress func(string)) (*Result, error) {
	st, ok := c.opts.Store.Load(ctx)
	var stored *courseinfo.Credential
	if ok {
		stored = &st.Credential
	}

	client, err := core.NewClient(c.opts.Client)
	if err != nil {
		return nil, err
	}

	progress("Logging in to the learning site...")
	cred, err := c.login(ctx, client, stored)
	if err != nil {
		return nil, err
	}

	// a snapshot only means something to the user it was taken for
	var previous *courseinfo.Snapshot
	if ok && st.Credential.UserId == cred.UserId {
		previous = &st.Snapshot
	}

	progress("Fetching course list...")
	v := view.NewClient(client)
	courses, err := v.Courses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		progress(fmt.Sprintf("Fetching course info [%s]...", courses[i].Title))
		err = v.CourseInfo(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
	}

	current := courseinfo.NewSnapshot(courses)
	changed := courseinfo.Diff(previous, current)

	err = c.opts.Store.Save(ctx, obfstore.State{Credential: cred, Snapshot: current})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save state, the next check will repeat these updates", "err", err)
	}

	result := &Result{
		Credential:  cred,
		Courses:     len(courses),
		Total:       current.Len(),
		Items:       delta.Project(changed),
		MainPageUrl: client.MainPageUrl(),
	}
	if c.opts.Report != nil {
		c.opts.Report(ctx, result)
	}
	return result, nil
}
