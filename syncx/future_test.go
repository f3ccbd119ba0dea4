package syncx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFuture_AwaitErr(t *testing.T) {
	var order = make([]int, 0, 4)
	f := NewFutureErr[int]()
	order = append(order, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		order = append(order, 2)
		f.ResolveErr(3, nil)

		// Make sure that subsequent calls don't actually do anything
		f.ResolveErr(5, nil)
		f.ResolveErr(6, errors.New("ignored"))
	}()
	val, err := f.AwaitErr(context.Background())
	assert.NoError(t, err)
	order = append(order, val)
	val, err = f.AwaitErr(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, val, "The same value should be returned again with AwaitErr")
	order = append(order, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, order, "Processing should happen in the expected order")
}

func TestFuture_AwaitErr_Timeout(t *testing.T) {
	f := NewFutureErr[int]()
	go func() {
		time.Sleep(150 * time.Millisecond)
		f.ResolveErr(5, nil)
	}()
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		val, err := f.AwaitErr(ctx)
		cancel()
		assert.Equal(t, 0, val)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	val, err := f.AwaitErr(context.Background())
	assert.Equal(t, 5, val)
	assert.NoError(t, err)
}

func TestGo(t *testing.T) {
	ErrTest := errors.New("test")
	val, err := Go(func() (string, error) {
		return "done", nil
	}).AwaitErr(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "done", val)

	_, err = Go(func() (string, error) {
		return "", ErrTest
	}).AwaitErr(context.Background())
	assert.ErrorIs(t, err, ErrTest)

	_, err = Go(func() (string, error) {
		panic("boom")
	}).AwaitErr(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestResolved(t *testing.T) {
	f := Resolved(7, nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("Resolved future should already be done")
	}
	val, err := f.AwaitErr(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, val)
}
