package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy(decimal.NewFromInt(5_000_000), decimal.NewFromInt(20_000_000))
	require.NoError(t, err)
	return p
}

func TestNewPolicy_RejectsBadThresholds(t *testing.T) {
	_, err := NewPolicy(decimal.NewFromInt(-1), decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewPolicy(decimal.NewFromInt(100), decimal.NewFromInt(50))
	assert.Error(t, err)

	// Equal thresholds are allowed.
	_, err = NewPolicy(decimal.NewFromInt(50), decimal.NewFromInt(50))
	assert.NoError(t, err)
}

func TestPolicy_Path(t *testing.T) {
	p := testPolicy(t)

	tests := []struct {
		name   string
		amount int64
		want   []Stage
	}{
		{
			name:   "below area threshold needs area lead only",
			amount: 4_000_000,
			want:   []Stage{StagePendingAreaLead, StageApproved},
		},
		{
			name:   "at area threshold adds executive",
			amount: 5_000_000,
			want:   []Stage{StagePendingAreaLead, StagePendingExecutive, StageApproved},
		},
		{
			name:   "between thresholds adds executive",
			amount: 12_500_000,
			want:   []Stage{StagePendingAreaLead, StagePendingExecutive, StageApproved},
		},
		{
			name:   "at executive threshold adds treasury",
			amount: 20_000_000,
			want:   []Stage{StagePendingAreaLead, StagePendingExecutive, StagePendingTreasury, StageApproved},
		},
		{
			name:   "above executive threshold adds treasury",
			amount: 25_000_000,
			want:   []Stage{StagePendingAreaLead, StagePendingExecutive, StagePendingTreasury, StageApproved},
		},
		{
			name:   "zero amount still needs area lead",
			amount: 0,
			want:   []Stage{StagePendingAreaLead, StageApproved},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Path(decimal.NewFromInt(tt.amount))
			assert.Equal(t, tt.want, got)
			require.NotEmpty(t, got)
			assert.Equal(t, StagePendingAreaLead, got[0])
			assert.Equal(t, StageApproved, got[len(got)-1])
		})
	}
}

func TestPolicy_NextStage_WalksFullPath(t *testing.T) {
	p := testPolicy(t)
	amount := decimal.NewFromInt(25_000_000)

	next, ok := p.NextStage(StagePendingAreaLead, amount)
	require.True(t, ok)
	assert.Equal(t, StagePendingExecutive, next)

	next, ok = p.NextStage(StagePendingExecutive, amount)
	require.True(t, ok)
	assert.Equal(t, StagePendingTreasury, next)

	next, ok = p.NextStage(StagePendingTreasury, amount)
	require.True(t, ok)
	assert.Equal(t, StageApproved, next)
}

func TestPolicy_NextStage_ShortPath(t *testing.T) {
	p := testPolicy(t)
	amount := decimal.NewFromInt(4_000_000)

	next, ok := p.NextStage(StagePendingAreaLead, amount)
	require.True(t, ok)
	assert.Equal(t, StageApproved, next)

	// Executive is not part of the path for a small amount.
	_, ok = p.NextStage(StagePendingExecutive, amount)
	assert.False(t, ok)
}

func TestPolicy_NextStage_TerminalConditions(t *testing.T) {
	p := testPolicy(t)
	amount := decimal.NewFromInt(25_000_000)

	tests := []struct {
		name    string
		current Stage
	}{
		{"final path entry has no successor", StageApproved},
		{"draft never appears in a path", StageDraft},
		{"rejected never appears in a path", StageRejected},
		{"voided never appears in a path", StageVoided},
		{"completed never appears in a path", StageCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := p.NextStage(tt.current, amount)
			assert.False(t, ok)
			assert.Equal(t, Stage(""), next)
		})
	}
}
