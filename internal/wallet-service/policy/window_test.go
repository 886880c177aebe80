package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowDisabledAlwaysOpen(t *testing.T) {
	w, err := NewWithdrawWindow(false, "", "", "")
	require.NoError(t, err)
	assert.NoError(t, w.Check(time.Now()))
}

func TestWindowInclusiveBounds(t *testing.T) {
	w, err := NewWithdrawWindow(true, "10:00", "18:00", "UTC")
	require.NoError(t, err)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	assert.Error(t, w.Check(day.Add(9*time.Hour+59*time.Minute)))
	assert.NoError(t, w.Check(day.Add(10*time.Hour)), "limite inicial incluso")
	assert.NoError(t, w.Check(day.Add(13*time.Hour)))
	assert.NoError(t, w.Check(day.Add(18*time.Hour)), "limite final incluso")
	assert.Error(t, w.Check(day.Add(18*time.Hour+1*time.Minute)))
}

func TestWindowConvertsTimezone(t *testing.T) {
	// janela 10:00-18:00 em Kolkata (UTC+5:30)
	w, err := NewWithdrawWindow(true, "10:00", "18:00", "Asia/Kolkata")
	require.NoError(t, err)

	// 05:00 UTC = 10:30 em Kolkata -> aberto
	assert.NoError(t, w.Check(time.Date(2026, 8, 30, 5, 0, 0, 0, time.UTC)))
	// 13:00 UTC = 18:30 em Kolkata -> fechado, mesmo sendo "meio-dia" em UTC
	assert.Error(t, w.Check(time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)))
}

func TestWindowRejectsBadConfig(t *testing.T) {
	_, err := NewWithdrawWindow(true, "25:00", "18:00", "UTC")
	assert.Error(t, err)
	_, err = NewWithdrawWindow(true, "10:00", "18:61", "UTC")
	assert.Error(t, err)
	_, err = NewWithdrawWindow(true, "10:00", "18:00", "Nowhere/Invalid")
	assert.Error(t, err)
}
