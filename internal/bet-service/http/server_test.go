package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/bet-service/book"
	"github.com/radieske/matka-bet-platform/internal/game"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

func TestWriteErrorTaxonomy(t *testing.T) {
	s := &Server{log: zap.NewNop()}

	cases := map[string]struct {
		err  error
		code int
	}{
		"validation":      {fmt.Errorf("%w: valor ruim", book.ErrValidation), http.StatusBadRequest},
		"not open yet":    {game.ErrNotOpenYet, http.StatusBadRequest},
		"betting closed":  {game.ErrBettingClosed, http.StatusBadRequest},
		"session missing": {game.ErrNotFound, http.StatusNotFound},
		"no funds":        {wrepo.ErrInsufficientFunds, http.StatusConflict},
		"wallet missing":  {wrepo.ErrNotFound, http.StatusNotFound},
		"cancelled":       {context.Canceled, http.StatusServiceUnavailable},
		"deadline":        {fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		"unknown":         {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestBetResponseTotalsEntries(t *testing.T) {
	b := book.Bet{ID: "b1", Entries: []book.Entry{
		{Number: 3, AmountCents: 10_00},
		{Number: 7, AmountCents: 5_00},
	}}

	resp := toBetResponse(b)
	assert.Equal(t, int64(15_00), resp.TotalStakedCents)
	assert.Len(t, resp.Entries, 2)
}
