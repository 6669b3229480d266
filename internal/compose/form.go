package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wuwenbin0122/debate-hub/internal/models"
)

var (
	ErrEmpty        = errors.New("compose: content is empty")
	ErrTooLong      = errors.New("compose: content exceeds the length limit")
	ErrSideRequired = errors.New("compose: a side must be selected")
	ErrBusy         = errors.New("compose: a submission is already in progress")
)

// Variant fixes the limits of one kind of compose form.
type Variant struct {
	Name        string
	MaxLength   int
	RequireSide bool
}

var (
	MessageReply = Variant{Name: "message", MaxLength: 500}
	NewDebate    = Variant{Name: "debate", MaxLength: 200, RequireSide: true}
)

// Validate checks content and side without touching the network. The length
// cap applies to the raw input, counted in characters.
func (v Variant) Validate(content string, side models.Side) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmpty
	}
	if v.MaxLength > 0 && utf8.RuneCountInString(content) > v.MaxLength {
		return fmt.Errorf("%w (%d characters max)", ErrTooLong, v.MaxLength)
	}
	if v.RequireSide && !side.Known() {
		return ErrSideRequired
	}
	return nil
}

func (v Variant) Placeholder(side models.Side) string {
	switch {
	case v.RequireSide && !side.Known():
		return "Select your side first, then enter the debate topic..."
	case v.RequireSide && side == models.SidePro:
		return "Enter the topic you want to support..."
	case v.RequireSide:
		return "Enter the topic you want to oppose..."
	default:
		return "Share your perspective on this topic..."
	}
}

type SubmitFunc func(ctx context.Context, content string, side models.Side) error

// Form holds the input of one compose form.
type Form struct {
	variant Variant

	mu         sync.Mutex
	content    string
	side       models.Side
	submitting bool
}

func NewForm(variant Variant) *Form {
	return &Form{variant: variant}
}

func (f *Form) Variant() Variant {
	return f.variant
}

func (f *Form) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
}

func (f *Form) SetSide(side models.Side) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.side = side
}

func (f *Form) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func (f *Form) Side() models.Side {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.side
}

// Length is the character count shown next to the limit.
func (f *Form) Length() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return utf8.RuneCountInString(f.content)
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	return f.Validate() == nil
}

func (f *Form) validateLocked() error {
	if f.submitting {
		return ErrBusy
	}
	return f.variant.Validate(f.content, f.side)
}

// Submit hands the trimmed content to fn. The input is cleared only when fn
// returns nil; otherwise it is kept and fn's error is returned.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) error {
	f.mu.Lock()
	if err := f.validateLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	content := strings.TrimSpace(f.content)
	side := f.side
	f.submitting = true
	f.mu.Unlock()

	err := fn(ctx, content, side)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return fmt.Errorf("compose: submit %s: %w", f.variant.Name, err)
	}
	f.content = ""
	f.side = models.SideUnknown
	return nil
}
