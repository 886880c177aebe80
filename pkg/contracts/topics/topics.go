package topics

const (
	// Resultados
	ResultDeclared = "result_declared"

	// Liquidação
	BetsSettled        = "bets_settled"
	SpinnerRoundClosed = "spinner_round_closed"

	// DLQs
	ResultDeclaredDLQ = "result_declared_dlq"
)
