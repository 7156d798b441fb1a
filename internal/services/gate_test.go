package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/services"
)

type fakeSource struct {
	blocked, recent, dup bool
	active               int
	err                  error
	calls                []string
	since                string
	dupTitle             string
}

func (f *fakeSource) IsBlocked(context.Context, int64) (bool, error) {
	f.calls = append(f.calls, "blocked")
	return f.blocked, f.err
}

func (f *fakeSource) CountActiveByOwner(context.Context, int64) (int, error) {
	f.calls = append(f.calls, "quota")
	return f.active, nil
}

func (f *fakeSource) HasCreatedSince(_ context.Context, _ int64, since string) (bool, error) {
	f.calls = append(f.calls, "cooldown")
	f.since = since
	return f.recent, nil
}

func (f *fakeSource) HasActiveDuplicate(_ context.Context, _ int64, title string, _ int64) (bool, error) {
	f.calls = append(f.calls, "duplicate")
	f.dupTitle = title
	return f.dup, nil
}

func testGate(now time.Time) services.Gate {
	return services.Gate{MaxActive: 3, Cooldown: 24 * time.Hour, Now: func() time.Time { return now }}
}

func TestGateStopsAtFirstDenial(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	withPrice := services.Candidate{Title: "Cobalt", Price: 12000, HasPrice: true}

	cases := []struct {
		name   string
		src    fakeSource
		reason domain.DenyReason
		calls  []string
	}{
		{"blocked wins over everything", fakeSource{blocked: true, active: 3, recent: true, dup: true}, domain.DenyBlocked, []string{"blocked"}},
		{"quota before cooldown", fakeSource{active: 3, recent: true, dup: true}, domain.DenyQuotaExceeded, []string{"blocked", "quota"}},
		{"cooldown before duplicate", fakeSource{active: 2, recent: true, dup: true}, domain.DenyCooldownActive, []string{"blocked", "quota", "cooldown"}},
		{"duplicate last", fakeSource{active: 1, dup: true}, domain.DenyDuplicate, []string{"blocked", "quota", "cooldown", "duplicate"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := tc.src
			err := testGate(now).Check(context.Background(), &src, 1, withPrice)
			reason, ok := domain.DenyReasonOf(err)
			require.True(t, ok, "expected a denial, got %v", err)
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, tc.calls, src.calls)
		})
	}
}

func TestGateAllows(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: 2}
	err := testGate(now).Check(context.Background(), src, 1, services.Candidate{Title: "  Cobalt ", Price: 1, HasPrice: true})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28T12:00:00.000000Z", src.since)
	assert.Equal(t, "Cobalt", src.dupTitle)
}

func TestGateSkipsDuplicateWithoutTitleOrPrice(t *testing.T) {
	now := time.Now()
	for _, c := range []services.Candidate{
		{Title: "Cobalt"},
		{Title: "   ", Price: 100, HasPrice: true},
	} {
		src := &fakeSource{dup: true}
		require.NoError(t, testGate(now).Check(context.Background(), src, 1, c))
		assert.NotContains(t, src.calls, "duplicate")
	}
}

func TestGateStoreErrorIsNotADenial(t *testing.T) {
	boom := errors.New("disk I/O error")
	err := testGate(time.Now()).Check(context.Background(), &fakeSource{err: boom}, 1, services.Candidate{})
	require.ErrorIs(t, err, boom)
	_, denied := domain.DenyReasonOf(err)
	assert.False(t, denied)
}
