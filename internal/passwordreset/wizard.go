// Package passwordreset walks a user through the three-step OTP password reset.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/pustak/internal/apperr"
)

// StorageKey is where a CLI keeps an unfinished reset between invocations.
const StorageKey = "password_reset"

const MinPasswordLength = 6

var ErrWrongStep = errors.New("password reset step out of order")

type Step int

const (
	EnterEmail Step = iota
	EnterOTP
	EnterPassword
	Done
)

func (s Step) String() string {
	switch s {
	case EnterEmail:
		return "email"
	case EnterOTP:
		return "otp"
	case EnterPassword:
		return "password"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

type Backend interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// Progress is the resumable state of a reset.
type Progress struct {
	Step  Step   `json:"step"`
	Email string `json:"email,omitempty"`
	OTP   string `json:"otp,omitempty"`
}

type Wizard struct {
	backend Backend

	mu sync.Mutex
	p  Progress
}

func New(backend Backend) *Wizard {
	return &Wizard{backend: backend}
}

// Resume continues a reset from saved progress.
func Resume(backend Backend, p Progress) *Wizard {
	return &Wizard{backend: backend, p: p}
}

func (w *Wizard) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.p
}

func (w *Wizard) Step() Step { return w.Progress().Step }

// SendOTP mails a one-time code. It may be repeated from the OTP step to resend.
func (w *Wizard) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Invalid("email", "Email is required")
	}
	if err := w.expect(EnterEmail, EnterOTP); err != nil {
		return err
	}
	if err := w.backend.SendOTP(ctx, email); err != nil {
		return err
	}

	w.mu.Lock()
	w.p = Progress{Step: EnterOTP, Email: email}
	w.mu.Unlock()
	return nil
}

func (w *Wizard) VerifyOTP(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return apperr.Invalid("otp", "OTP is required")
	}
	if err := w.expect(EnterOTP); err != nil {
		return err
	}
	if err := w.backend.VerifyOTP(ctx, w.Progress().Email, otp); err != nil {
		return err
	}

	w.mu.Lock()
	w.p.Step = EnterPassword
	w.p.OTP = otp
	w.mu.Unlock()
	return nil
}

// Reset sets the new password. Mismatch and length are checked before any call.
func (w *Wizard) Reset(ctx context.Context, newPassword, confirm string) error {
	if err := w.expect(EnterPassword); err != nil {
		return err
	}
	if newPassword != confirm {
		return apperr.Invalid("confirm_password", "Passwords do not match")
	}
	if len(newPassword) < MinPasswordLength {
		return apperr.Invalid("new_password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	p := w.Progress()
	if err := w.backend.ResetPassword(ctx, p.Email, p.OTP, newPassword); err != nil {
		return err
	}

	w.mu.Lock()
	w.p = Progress{Step: Done}
	w.mu.Unlock()
	return nil
}

func (w *Wizard) expect(steps ...Step) error {
	cur := w.Step()
	for _, s := range steps {
		if cur == s {
			return nil
		}
	}
	return fmt.Errorf("%w: at %s step", ErrWrongStep, cur)
}
