package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives used at every trust
// boundary: code preservation across wrapping and errors.Is matching by code.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "event not found"}
		s.Equal("event not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeUnauthorized}
		s.Equal("unauthorized", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeInternal, Message: "store failure", Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})

	s.Run("returns nil when nothing wrapped", func() {
		err := &Error{Code: CodeNotFound}
		s.Nil(errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code regardless of message", func() {
		a := New(CodeUnauthorized, "incorrect email or password")
		b := New(CodeUnauthorized, "incorrect code")
		s.True(errors.Is(a, b))
	})

	s.Run("does not match different codes", func() {
		s.False(errors.Is(New(CodeForbidden, ""), New(CodeUnauthorized, "")))
	})

	s.Run("does not match plain errors", func() {
		s.False(errors.Is(errors.New("plain"), New(CodeInternal, "")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves code of an already-domain error", func() {
		inner := New(CodeNotFound, "event not found")
		wrapped := Wrap(inner, CodeInternal, "loading event")
		s.True(HasCode(wrapped, CodeNotFound))
	})

	s.Run("applies code to plain errors", func() {
		wrapped := Wrap(fmt.Errorf("pq: deadlock"), CodeInternal, "updating event")
		s.True(HasCode(wrapped, CodeInternal))
	})

	s.Run("keeps the chain intact", func() {
		inner := errors.New("root cause")
		wrapped := Wrap(inner, CodeInternal, "outer")
		s.ErrorIs(wrapped, inner)
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeInternal))
	s.True(HasCode(New(CodeLifecycleViolation, "event is over"), CodeLifecycleViolation))
}
