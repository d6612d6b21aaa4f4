package util

import "time"

// Now devolve o instante atual em UTC. Centralizado para os serviços não
// espalharem time.Now pelo código.
func Now() time.Time {
	return time.Now().UTC()
}

// Today devolve a data corrente truncada (carimbo de data_registro).
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
