package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/riskibarqy/league-vault/internal/domain/jobscheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRunRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewJobRunRepository(5)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordRun(ctx, jobscheduler.RunEvent{RunID: fmt.Sprintf("run-%d", i)}))
	}

	got, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, "run-0", got[2].RunID)
}

func TestJobRunRepository_DropsOldestWhenFull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewJobRunRepository(3)

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.RecordRun(ctx, jobscheduler.RunEvent{RunID: fmt.Sprintf("run-%d", i)}))
	}

	got, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"run-6", "run-5", "run-4"}, []string{got[0].RunID, got[1].RunID, got[2].RunID})

	limited, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-6", limited[0].RunID)
}

func TestJobRunRepository_Empty(t *testing.T) {
	t.Parallel()

	got, err := NewJobRunRepository(0).ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
