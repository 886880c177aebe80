package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsBetsWindow(t *testing.T) {
	open := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	closeAt := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	s := Session{Status: StatusActive, OpenAt: open, CloseAt: closeAt}

	assert.ErrorIs(t, s.AcceptsBets(open.Add(-time.Minute)), ErrNotOpenYet)
	assert.NoError(t, s.AcceptsBets(open), "limite inicial incluso")
	assert.NoError(t, s.AcceptsBets(open.Add(6*time.Hour)))
	assert.NoError(t, s.AcceptsBets(closeAt), "limite final incluso")
	assert.ErrorIs(t, s.AcceptsBets(closeAt.Add(time.Minute)), ErrBettingClosed)
}

func TestAcceptsBetsCrossTimezone(t *testing.T) {
	// a janela é absoluta: o mesmo instante em outro fuso continua dentro
	open := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := Session{Status: StatusActive, OpenAt: open, CloseAt: open.Add(12 * time.Hour)}

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)
	assert.NoError(t, s.AcceptsBets(open.Add(time.Hour).In(kolkata)))
}

func TestAcceptsBetsStatusGuards(t *testing.T) {
	open := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	now := open.Add(time.Hour)

	for name, s := range map[string]Session{
		"inactive": {Status: StatusInactive, OpenAt: open, CloseAt: open.Add(12 * time.Hour)},
		"closed":   {Status: StatusClosed, OpenAt: open, CloseAt: open.Add(12 * time.Hour)},
		"deleted":  {Status: StatusActive, Deleted: true, OpenAt: open, CloseAt: open.Add(12 * time.Hour)},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.AcceptsBets(now), ErrBettingClosed)
		})
	}
}

func TestValidSlot(t *testing.T) {
	assert.True(t, ValidSlot(SlotOpen))
	assert.True(t, ValidSlot(SlotClose))
	assert.False(t, ValidSlot("night"))
	assert.False(t, ValidSlot(""))
}
