package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestDependencyGraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		ConfigModule,
		LoggingModule,
		RtuModule,
		JournalModule,
		ProcessingModule,
		ControlModule,
		UsecaseModule,
		HttpServerModule,
		fx.Invoke(InvokeJournal),
		fx.Invoke(InvokeControlLoops),
	)
	require.NoError(t, err)
}
