package bus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/commands/bus"
	pkgerrors "trustie-admin/pkg/errors"
)

type echoCommand struct{ Value string }

func (c echoCommand) Validate() error {
	if c.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type observation struct {
	kind, name string
	err        error
}

type fakeObserver struct{ seen []observation }

func (o *fakeObserver) Observe(kind, name string, d time.Duration, err error) {
	o.seen = append(o.seen, observation{kind: kind, name: name, err: err})
}

func TestCommandBusDispatch(t *testing.T) {
	observer := &fakeObserver{}
	b := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()), bus.MetricsMiddleware(observer))

	require.NoError(t, b.Register(echoCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		return cmd.(echoCommand).Value + "!", nil
	})))

	result, err := b.Send(context.Background(), echoCommand{Value: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", result)
	assert.Equal(t, []observation{{kind: "command", name: "echoCommand"}}, observer.seen)
}

func TestCommandBusValidationBecomesAppError(t *testing.T) {
	b := bus.NewCommandBus()
	require.NoError(t, b.Register(echoCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		t.Fatal("handler must not run for invalid commands")
		return nil, nil
	})))

	_, err := b.Send(context.Background(), echoCommand{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCommandBusRejectsDuplicateAndUnknown(t *testing.T) {
	b := bus.NewCommandBus()
	h := bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) { return nil, nil })
	require.NoError(t, b.Register(echoCommand{}, h))
	assert.Error(t, b.Register(echoCommand{}, h))

	type otherCommand struct{ echoCommand }
	_, err := b.Send(context.Background(), otherCommand{echoCommand{Value: "x"}})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal))
}
