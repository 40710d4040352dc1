package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/form"
	"github.com/evpower/recruit-backend/internal/model"
)

// DefaultAutoClose is how long the confirmation stays up.
const DefaultAutoClose = 5 * time.Second

const msgFixErrors = "Please fix the errors in the form before submitting."

var (
	ErrBusy         = errors.New("submission in progress")
	ErrNotEditing   = errors.New("form is not open for editing")
	ErrInvalidForm  = errors.New("form has validation errors")
	ErrUnknownField = errors.New("unknown form field")
)

// Phase is the controller lifecycle position.
type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
)

// Submitter performs the outbound intake call.
type Submitter interface {
	Submit(ctx context.Context, in model.ApplicationFormInput) (*model.ApplicationAck, error)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithAutoClose overrides the confirmation timeout.
func WithAutoClose(d time.Duration) ControllerOption {
	return func(c *Controller) { c.autoClose = d }
}

// WithToastHandler receives every applicant-facing error message.
func WithToastHandler(fn func(string)) ControllerOption {
	return func(c *Controller) { c.onToast = fn }
}

// WithCloseHandler runs whenever the form closes, including auto-close.
func WithCloseHandler(fn func()) ControllerOption {
	return func(c *Controller) { c.onClose = fn }
}

// Controller is the application form: field edits with live validation,
// at most one submission in flight, and a timed confirmation.
type Controller struct {
	mu sync.Mutex

	phase  Phase
	input  model.ApplicationFormInput
	errs   form.Errors
	ack    *model.ApplicationAck
	toast  string
	locked bool
	// generation changes on every open and close so late results can be dropped.
	generation uint64
	timer      *time.Timer

	submitter Submitter
	locker    Locker
	autoClose time.Duration
	onToast   func(string)
	onClose   func()
	log       zerolog.Logger
}

// NewController creates a closed form.
func NewController(submitter Submitter, locker Locker, log zerolog.Logger, opts ...ControllerOption) *Controller {
	if locker == nil {
		locker = NopLocker{}
	}
	c := &Controller{
		phase:     PhaseClosed,
		errs:      form.EmptyErrors(),
		submitter: submitter,
		locker:    locker,
		autoClose: DefaultAutoClose,
		log:       log.With().Str("component", "application_form").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open resets the form and locks background scrolling.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.generation++
	c.resetLocked()
	c.phase = PhaseEditing
	if !c.locked {
		c.locker.Lock()
		c.locked = true
	}
}

// Close discards the form and releases the scroll lock. An in-flight
// submission is not cancelled; its result is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	fn := c.closeLocked()
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Dismiss closes the confirmation before the auto-close timer fires.
func (c *Controller) Dismiss() {
	c.Close()
}

func (c *Controller) closeLocked() func() {
	c.stopTimerLocked()
	if c.locked {
		c.locker.Unlock()
		c.locked = false
	}
	wasOpen := c.phase != PhaseClosed
	c.generation++
	c.resetLocked()
	c.phase = PhaseClosed
	if wasOpen {
		return c.onClose
	}
	return nil
}

func (c *Controller) resetLocked() {
	c.input = model.ApplicationFormInput{}
	c.errs = form.EmptyErrors()
	c.ack = nil
	c.toast = ""
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) editableLocked() error {
	switch c.phase {
	case PhaseEditing:
		return nil
	case PhaseSubmitting:
		return ErrBusy
	default:
		return ErrNotEditing
	}
}

// SetField updates a text field and stores its validation message.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	if !form.Set(&c.input, name, value) {
		return ErrUnknownField
	}
	c.errs[name] = form.ValidateField(name, value)
	return nil
}

// SetResume attaches the resume file and stores its validation message.
func (c *Controller) SetResume(file *model.ResumeFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editableLocked(); err != nil {
		return err
	}
	c.input.Resume = file
	c.errs[form.FieldResume] = form.ValidateResume(file)
	return nil
}

// Submit validates and sends the form. It blocks for the duration of the call.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	ok, fresh := form.ValidateForm(c.input)
	if !ok || !form.NoStoredErrors(c.errs) {
		for name, msg := range fresh {
			if msg != "" {
				c.errs[name] = msg
			}
		}
		c.setToastLocked(msgFixErrors)
		c.mu.Unlock()
		c.notify(msgFixErrors)
		return ErrInvalidForm
	}

	c.phase = PhaseSubmitting
	c.toast = ""
	snapshot := c.input
	gen := c.generation
	c.mu.Unlock()

	ack, err := c.submitter.Submit(ctx, snapshot)

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.log.Debug().Err(err).Msg("Form closed during submission, result dropped")
		return err
	}

	if err != nil {
		msg := UserMessage(err)
		c.phase = PhaseEditing
		c.setToastLocked(msg)
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("Application submission failed")
		c.notify(msg)
		return err
	}

	c.phase = PhaseSucceeded
	c.ack = ack
	c.timer = time.AfterFunc(c.autoClose, func() { c.autoCloseFired(gen) })
	c.mu.Unlock()
	return nil
}

func (c *Controller) autoCloseFired(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || c.phase != PhaseSucceeded {
		c.mu.Unlock()
		return
	}
	fn := c.closeLocked()
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Controller) setToastLocked(msg string) {
	c.toast = msg
}

func (c *Controller) notify(msg string) {
	if c.onToast != nil {
		c.onToast(msg)
	}
}

// Phase returns the current lifecycle position.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Input returns the current field values.
func (c *Controller) Input() model.ApplicationFormInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Errors returns a copy of the stored field messages.
func (c *Controller) Errors() form.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(form.Errors, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// SubmitEnabled reports whether the submit action is available.
func (c *Controller) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseEditing && form.SubmitEnabled(c.input, c.errs)
}

// Toast returns the last applicant-facing error message.
func (c *Controller) Toast() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toast
}

// Ack returns the server acknowledgement after a successful submission.
func (c *Controller) Ack() *model.ApplicationAck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ack
}
