// Package wizard tracks the position of a merchant walking through the
// onboarding forms. The cursor is presentational only; saving a form is what
// records completion.
package wizard

import "merchant-kyc-portal/completion"

// Finished is the sentinel index shown after the last step.
const Finished = completion.TotalSteps

// Cursor is the current wizard position in [0, Finished].
type Cursor struct {
	index int
}

// NewCursor returns a cursor positioned at i, clamped into range.
func NewCursor(i int) *Cursor {
	c := &Cursor{}
	c.Jump(i)
	return c
}

// Next moves forward one step. Moving forward never requires the current
// step to be saved. It stops at Finished.
func (c *Cursor) Next() {
	if c.index < Finished {
		c.index++
	}
}

// Back moves back one step, stopping at 0.
func (c *Cursor) Back() {
	if c.index > 0 {
		c.index--
	}
}

// Jump moves directly to i, clamped into [0, Finished].
func (c *Cursor) Jump(i int) {
	switch {
	case i < 0:
		c.index = 0
	case i > Finished:
		c.index = Finished
	default:
		c.index = i
	}
}

// Index returns the current position.
func (c *Cursor) Index() int {
	return c.index
}

// Done reports whether the cursor sits on the finished sentinel.
func (c *Cursor) Done() bool {
	return c.index == Finished
}

// Step returns the step under the cursor; ok is false on the sentinel.
func (c *Cursor) Step() (step completion.Step, ok bool) {
	if c.Done() {
		return "", false
	}
	return completion.Steps[c.index], true
}

// ResumeAt returns the index of the first incomplete step, or Finished when
// every step is complete.
func ResumeAt(flags completion.Flags) int {
	for i, s := range completion.Steps {
		if !flags[s] {
			return i
		}
	}
	return Finished
}
