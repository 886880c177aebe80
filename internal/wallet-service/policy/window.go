package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrWindowClosed = errors.New("withdrawal window closed")

// WithdrawWindow é a janela diária em que pedidos de saque são aceitos.
// A comparação é feita em minutos-do-dia já convertidos para o fuso da
// janela — nunca comparando strings "HH:MM" com horário local do servidor,
// que era a classe de bug do sistema antigo.
type WithdrawWindow struct {
	Enabled  bool
	startMin int
	endMin   int
	loc      *time.Location
}

// NewWithdrawWindow monta a janela a partir das strings "HH:MM" e do nome do
// fuso (ex: "Asia/Kolkata").
func NewWithdrawWindow(enabled bool, start, end, tz string) (WithdrawWindow, error) {
	w := WithdrawWindow{Enabled: enabled}
	if !enabled {
		return w, nil
	}

	var err error
	if w.startMin, err = parseHHMM(start); err != nil {
		return w, fmt.Errorf("window start: %w", err)
	}
	if w.endMin, err = parseHHMM(end); err != nil {
		return w, fmt.Errorf("window end: %w", err)
	}
	if w.loc, err = time.LoadLocation(tz); err != nil {
		return w, fmt.Errorf("window timezone: %w", err)
	}
	return w, nil
}

// Check retorna ErrWindowClosed quando o horário (no fuso da janela) está
// fora do intervalo. Limites inclusivos.
func (w WithdrawWindow) Check(now time.Time) error {
	if !w.Enabled {
		return nil
	}

	local := now.In(w.loc)
	cur := local.Hour()*60 + local.Minute()
	if cur < w.startMin || cur > w.endMin {
		return ErrWindowClosed
	}
	return nil
}

func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute %q", s)
	}
	return h*60 + m, nil
}
