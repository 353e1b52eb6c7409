package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shoenig/test/must"
)

func TestFuture(t *testing.T) {
	f := newFuture[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	must.ErrorIs(t, err, context.DeadlineExceeded)

	f.resolve(42, nil)
	f.resolve(7, errors.New("ignored"))

	v, err := f.Wait(context.Background())
	must.NoError(t, err)
	must.Eq(t, 42, v)
}
