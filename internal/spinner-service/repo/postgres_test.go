package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResumableRound(t *testing.T) {
	n := 5
	completed := Round{Status: RoundCompleted, ResultNumber: &n}

	assert.True(t, resumableRound(completed, 5),
		"mesmo número retoma a liquidação das jogadas pendentes")
	assert.False(t, resumableRound(completed, 7), "número diferente é duplicata")
	assert.False(t, resumableRound(Round{Status: RoundOpen}, 5))
	assert.False(t, resumableRound(Round{Status: RoundCompleted}, 5),
		"sem resultado gravado não há o que retomar")
}
