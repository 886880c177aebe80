package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/radieske/matka-bet-platform/internal/spinner-service/repo"
	wrepo "github.com/radieske/matka-bet-platform/internal/wallet-service/repo"
)

func TestWriteErrorTaxonomy(t *testing.T) {
	s := &Server{log: zap.NewNop()}

	cases := map[string]struct {
		err  error
		code int
	}{
		"no open round":    {repo.ErrNoOpenRound, http.StatusNotFound},
		"round closed":     {repo.ErrRoundClosed, http.StatusBadRequest},
		"already played":   {repo.ErrAlreadyPlayed, http.StatusConflict},
		"already declared": {repo.ErrAlreadyDeclared, http.StatusConflict},
		"no funds":         {wrepo.ErrInsufficientFunds, http.StatusConflict},
		"cancelled":        {context.Canceled, http.StatusServiceUnavailable},
		"deadline":         {fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeError(rec, tc.err)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
