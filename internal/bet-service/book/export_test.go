package book

import "time"

// SetNow troca o relógio do book nos testes.
func SetNow(b *Book, now func() time.Time) { b.now = now }
