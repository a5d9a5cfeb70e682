package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-setto/core"
)

var (
	_ gocmd.Commander[ConfigureMessage]      = (*ConfigureCommand)(nil)
	_ gocmd.Commander[StartPaymentMessage]   = (*StartPaymentCommand)(nil)
	_ gocmd.Commander[HandleCallbackMessage] = (*HandleCallbackCommand)(nil)
	_ gocmd.Commander[ResetMessage]          = (*ResetCommand)(nil)
	_ gocmd.Commander[PruneAttemptsMessage]  = (*PruneAttemptsCommand)(nil)

	_ PaymentService = (*core.Manager)(nil)
)
