// Package submission is the client half of the contact form: it owns field
// state, validates locally, keeps at most one request in flight and tells a
// View what to render.
package submission

import (
	"context"
	"net/http"
	"sync"
	"time"

	"contact-relay-backend/pkg/validation"

	"golang.org/x/sync/singleflight"
)

// State is the controller's position in the submit lifecycle.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	ResolvedSuccess
	ResolvedFailure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case ResolvedSuccess:
		return "resolved-success"
	case ResolvedFailure:
		return "resolved-failure"
	default:
		return "unknown"
	}
}

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// StatusKind selects how a status message is styled.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// Status is the single message shown under the form.
type Status struct {
	Kind StatusKind
	Text string
}

// User-facing messages.
const (
	MsgInvalidWithSubject = "Please enter your full name (two words), a valid email, a subject, and a message."
	MsgInvalid            = "Please enter your full name (two words), a valid email, and a message."
	MsgSent               = "Message successfully sent!"
	MsgRejected           = "The server rejected your message. Please check your details and try again."
	MsgUnreachable        = "Can't connect to the server. Please try again later."
)

const defaultTTL = 3 * time.Second

// View renders what the controller decides. Its methods are called with the
// controller's lock held and must not call back into the controller.
type View interface {
	SetFieldError(f Field, on bool)
	ShowStatus(s Status)
	ClearStatus()
	SetBusy(busy bool)
	ResetFields()
}

// Outcome describes how a Submit call ended.
type Outcome struct {
	State   State
	Status  Status
	Invalid []Field // fields that failed local validation
	Code    int     // HTTP status, 0 when no response arrived
	Err     error   // transport error, if any
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubjectField declares whether the form has a separate subject input.
func WithSubjectField(on bool) Option {
	return func(c *Controller) { c.hasSubject = on }
}

// WithStatusTTL sets how long a success message stays before the form returns to Idle.
func WithStatusTTL(d time.Duration) Option {
	return func(c *Controller) { c.statusTTL = d }
}

// WithFieldErrorTTL sets how long a field stays marked as errored.
func WithFieldErrorTTL(d time.Duration) Option {
	return func(c *Controller) { c.fieldErrTTL = d }
}

// Controller drives one form instance. The zero value is not usable; call New.
type Controller struct {
	transport Transport
	view      View

	hasSubject  bool
	statusTTL   time.Duration
	fieldErrTTL time.Duration

	flight singleflight.Group

	mu          sync.Mutex
	state       State
	status      Status
	fields      map[Field]string
	fieldErrs   map[Field]*time.Timer
	statusTimer *time.Timer
}

func New(transport Transport, view View, opts ...Option) *Controller {
	c := &Controller{
		transport:   transport,
		view:        view,
		hasSubject:  true,
		statusTTL:   defaultTTL,
		fieldErrTTL: defaultTTL,
		fields:      make(map[Field]string),
		fieldErrs:   make(map[Field]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetField stores a field value and clears that field's error marker.
func (c *Controller) SetField(f Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[f] = value
	c.clearFieldErrorLocked(f)
}

// Fields returns a copy of the current field values.
func (c *Controller) Fields() map[Field]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Field]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// FieldHasError reports whether f is currently marked as errored.
func (c *Controller) FieldHasError(f Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.fieldErrs[f]
	return ok
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit validates the form and, when valid, sends it. A Submit issued while
// another is in flight does not send again; it waits for and returns the
// in-flight outcome.
func (c *Controller) Submit(ctx context.Context) Outcome {
	return <-c.SubmitAsync(ctx)
}

// SubmitAsync is Submit for event loops. The call is joined to any in-flight
// submission before SubmitAsync returns; the channel yields exactly one Outcome.
func (c *Controller) SubmitAsync(ctx context.Context) <-chan Outcome {
	ch := c.flight.DoChan("submit", func() (interface{}, error) {
		return c.submit(ctx), nil
	})

	out := make(chan Outcome, 1)
	go func() {
		select {
		case res := <-ch:
			out <- res.Val.(Outcome)
		case <-ctx.Done():
			out <- Outcome{State: c.State(), Err: ctx.Err()}
		}
	}()
	return out
}

// Close stops pending timers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for f, t := range c.fieldErrs {
		t.Stop()
		delete(c.fieldErrs, f)
	}
	if c.statusTimer != nil {
		c.statusTimer.Stop()
		c.statusTimer = nil
	}
}

func (c *Controller) submit(ctx context.Context) Outcome {
	c.mu.Lock()
	c.setStatusLocked(Status{})
	c.state = Validating

	if invalid := c.invalidFieldsLocked(); len(invalid) > 0 {
		for _, f := range invalid {
			c.markFieldErrorLocked(f)
		}
		msg := MsgInvalid
		if c.hasSubject {
			msg = MsgInvalidWithSubject
		}
		c.setStatusLocked(Status{Kind: StatusError, Text: msg})
		c.state = Idle
		out := Outcome{State: c.state, Status: c.status, Invalid: invalid}
		c.mu.Unlock()
		return out
	}

	payload := c.payloadLocked()
	c.state = Submitting
	c.view.SetBusy(true)
	c.mu.Unlock()

	return c.send(ctx, payload)
}

func (c *Controller) send(ctx context.Context, payload Payload) (out Outcome) {
	// busy is cleared on every exit path, panics included
	defer func() {
		c.mu.Lock()
		c.view.SetBusy(false)
		c.mu.Unlock()
	}()

	code, err := c.transport.Post(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err == nil && (code == http.StatusOK || code == http.StatusAccepted):
		c.state = ResolvedSuccess
		for f := range c.fields {
			c.fields[f] = ""
		}
		c.view.ResetFields()
		c.setStatusLocked(Status{Kind: StatusSuccess, Text: MsgSent})
		c.scheduleIdleLocked()
	case err == nil && code == http.StatusBadRequest:
		c.state = ResolvedFailure
		c.setStatusLocked(Status{Kind: StatusError, Text: MsgRejected})
	default:
		c.state = ResolvedFailure
		c.setStatusLocked(Status{Kind: StatusError, Text: MsgUnreachable})
	}

	return Outcome{State: c.state, Status: c.status, Code: code, Err: err}
}

func (c *Controller) invalidFieldsLocked() []Field {
	var bad []Field
	if !validation.ValidFullName(c.fields[FieldName]) {
		bad = append(bad, FieldName)
	}
	if !validation.ValidEmail(c.fields[FieldEmail]) {
		bad = append(bad, FieldEmail)
	}
	if c.hasSubject && !validation.Required(c.fields[FieldSubject]) {
		bad = append(bad, FieldSubject)
	}
	if !validation.Required(c.fields[FieldMessage]) {
		bad = append(bad, FieldMessage)
	}
	return bad
}

// payloadLocked folds the subject into the message so the wire shape is the
// same with or without a subject input.
func (c *Controller) payloadLocked() Payload {
	message := validation.Trim(c.fields[FieldMessage])
	if c.hasSubject {
		message = validation.Trim(c.fields[FieldSubject]) + "\n\n" + message
	}
	return Payload{
		Name:    validation.Trim(c.fields[FieldName]),
		Email:   validation.Trim(c.fields[FieldEmail]),
		Message: message,
	}
}

func (c *Controller) setStatusLocked(s Status) {
	if c.statusTimer != nil {
		c.statusTimer.Stop()
		c.statusTimer = nil
	}
	c.status = s
	if s.Kind == StatusNone {
		c.view.ClearStatus()
		return
	}
	c.view.ShowStatus(s)
}

func (c *Controller) scheduleIdleLocked() {
	var t *time.Timer
	t = time.AfterFunc(c.statusTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.statusTimer != t || c.state != ResolvedSuccess {
			return
		}
		c.statusTimer = nil
		c.status = Status{}
		c.view.ClearStatus()
		c.state = Idle
	})
	c.statusTimer = t
}

func (c *Controller) markFieldErrorLocked(f Field) {
	if old, ok := c.fieldErrs[f]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(c.fieldErrTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.fieldErrs[f] != t {
			return
		}
		c.clearFieldErrorLocked(f)
	})
	c.fieldErrs[f] = t
	c.view.SetFieldError(f, true)
}

func (c *Controller) clearFieldErrorLocked(f Field) {
	t, ok := c.fieldErrs[f]
	if !ok {
		return
	}
	t.Stop()
	delete(c.fieldErrs, f)
	c.view.SetFieldError(f, false)
}
