package events

import "time"

// Evento publicado no tópico "result_declared" quando o admin declara
// um resultado. O settlement-worker consome este evento para liquidar
// as apostas pendentes da sessão.
type ResultDeclared struct {
	ResultID   string    `json:"result_id"`
	SessionID  string    `json:"session_id"`
	Slot       string    `json:"slot"` // "open" | "close"
	Number     int       `json:"number"`
	ResultDate string    `json:"result_date"` // "2006-01-02"
	Status     string    `json:"status"`      // "draft" | "published"
	DeclaredAt time.Time `json:"declared_at"`
}
