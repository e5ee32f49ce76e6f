package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_Execute_Success(t *testing.T) {
	executed := make([]string, 0)

	s := New(5*time.Second, nil)
	s.AddStep("backfill-snapshots",
		func(ctx context.Context) error {
			executed = append(executed, "backfill-snapshots")
			return nil
		},
		nil,
	)
	s.AddStep("close-active-orders",
		func(ctx context.Context) error {
			executed = append(executed, "close-active-orders")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"backfill-snapshots", "close-active-orders"}, executed)
}

func TestSaga_Execute_PartialFailureKeepsCompletedSteps(t *testing.T) {
	executed := make([]string, 0)
	boom := errors.New("storage unavailable")

	s := New(5*time.Second, nil)
	s.AddStep("step-one",
		func(ctx context.Context) error {
			executed = append(executed, "step-one")
			return nil
		},
		nil, // 级联步骤不注册补偿：已完成的前缀保持生效
	)
	s.AddStep("step-two",
		func(ctx context.Context) error {
			return boom
		},
		nil,
	)
	s.AddStep("step-three",
		func(ctx context.Context) error {
			executed = append(executed, "step-three")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step-two")
	// 失败步骤之后的步骤不执行，之前的步骤不回滚
	assert.Equal(t, []string{"step-one"}, executed)
}

func TestSaga_Execute_CompensationRunsInReverse(t *testing.T) {
	compensated := make([]string, 0)

	s := New(5*time.Second, nil)
	s.AddStep("first",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "first")
			return nil
		},
	)
	s.AddStep("second",
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			compensated = append(compensated, "second")
			return nil
		},
	)
	s.AddStep("third",
		func(ctx context.Context) error { return errors.New("fail") },
		nil,
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"second", "first"}, compensated)
}

func TestSaga_Execute_Timeout(t *testing.T) {
	s := New(10*time.Millisecond, nil)
	s.AddStep("slow",
		func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		},
		nil,
	)
	s.AddStep("never",
		func(ctx context.Context) error {
			t.Fatal("step after timeout must not run")
			return nil
		},
		nil,
	)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
