package github_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghadapter "varafleet/internal/adapter/driven/github"
	"varafleet/internal/domain/model"
)

// scriptedClient returns canned outcomes in sequence, repeating the last one.
type scriptedClient struct {
	mu       sync.Mutex
	outcomes []model.JobOutcome
	errs     []error
	calls    int
}

func (c *scriptedClient) SubmitAnalysis(_ context.Context, _ model.Credentials, _ model.QuerySubmission) (*model.VariantJob, error) {
	return nil, nil
}

func (c *scriptedClient) FetchResultIndex(_ context.Context, _ model.Credentials, _ model.VariantJob) (*model.ResultIndex, error) {
	return nil, nil
}

func (c *scriptedClient) GetAnalysisStatus(_ context.Context, _ model.Credentials, _ model.VariantJob) (model.JobOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i >= len(c.outcomes) {
		i = len(c.outcomes) - 1
	}
	return c.outcomes[i], c.errs[i]
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestAwaitOutcome_PollsUntilTerminal(t *testing.T) {
	client := &scriptedClient{
		outcomes: []model.JobOutcome{
			model.OutcomeInProgress{},
			model.OutcomeInProgress{},
			model.OutcomeSucceeded{},
		},
		errs: []error{nil, nil, nil},
	}
	monitor := ghadapter.NewMonitor(client, time.Millisecond)

	outcome, err := monitor.AwaitOutcome(context.Background(), model.Credentials{}, model.VariantJob{Name: "q"})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSucceeded{}, outcome)
	assert.Equal(t, 3, client.callCount())
}

func TestAwaitOutcome_FailedOutcome(t *testing.T) {
	client := &scriptedClient{
		outcomes: []model.JobOutcome{model.OutcomeFailed{Reason: "broken"}},
		errs:     []error{nil},
	}
	monitor := ghadapter.NewMonitor(client, time.Millisecond)

	outcome, err := monitor.AwaitOutcome(context.Background(), model.Credentials{}, model.VariantJob{Name: "q"})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailed{Reason: "broken"}, outcome)
}

func TestAwaitOutcome_CancellationResolvesToCanceled(t *testing.T) {
	client := &scriptedClient{
		outcomes: []model.JobOutcome{model.OutcomeInProgress{}},
		errs:     []error{nil},
	}
	monitor := ghadapter.NewMonitor(client, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	outcome, err := monitor.AwaitOutcome(ctx, model.Credentials{}, model.VariantJob{Name: "q"})

	require.NoError(t, err, "cancellation must not surface as an error")
	assert.Equal(t, model.OutcomeCanceled{}, outcome)
}

func TestAwaitOutcome_TransientErrorsRetried(t *testing.T) {
	pollErr := errors.New("http 502")
	client := &scriptedClient{
		outcomes: []model.JobOutcome{nil, nil, model.OutcomeSucceeded{}},
		errs:     []error{pollErr, pollErr, nil},
	}
	monitor := ghadapter.NewMonitor(client, time.Millisecond)

	outcome, err := monitor.AwaitOutcome(context.Background(), model.Credentials{}, model.VariantJob{Name: "q"})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSucceeded{}, outcome)
}

func TestAwaitOutcome_GivesUpAfterConsecutiveFailures(t *testing.T) {
	pollErr := errors.New("http 502")
	client := &scriptedClient{
		outcomes: []model.JobOutcome{nil},
		errs:     []error{pollErr},
	}
	monitor := ghadapter.NewMonitor(client, time.Millisecond)

	_, err := monitor.AwaitOutcome(context.Background(), model.Credentials{}, model.VariantJob{Name: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, pollErr)
	assert.Equal(t, 5, client.callCount())
}
