package admission

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/platform"
)

func purgeFixture(t *testing.T) (*Engine, *platform.FakeClient, time.Time) {
	t.Helper()
	eng, fake := EngineTestFixture()
	cutoff := time.Now().Add(-24 * time.Hour)
	joinedStale := time.Now().Add(-72 * time.Hour)

	trusted := TestMember("u-trusted", "alice")
	trusted.JoinedAt = joinedStale
	trusted.RoleIDs = []string{"role-trusted"}
	fake.AddMember(trusted)

	bot := TestMember("u-bot", "helper-bot")
	bot.JoinedAt = joinedStale
	bot.Bot = true
	fake.AddMember(bot)

	boosterSince := time.Now().Add(-48 * time.Hour)
	booster := TestMember("u-booster", "benefactor")
	booster.JoinedAt = joinedStale
	booster.BoosterSince = &boosterSince
	fake.AddMember(booster)

	stale := TestMember("u-stale", "lurker")
	stale.JoinedAt = joinedStale
	fake.AddMember(stale)

	recent := TestMember("u-recent", "newcomer")
	fake.AddMember(recent)

	return eng, fake, cutoff
}

func TestPurgeKickablePredicate(t *testing.T) {
	assert := assert.New(t)
	cutoff := time.Now().Add(-24 * time.Hour)
	stale := time.Now().Add(-72 * time.Hour)
	boosterSince := time.Now()

	base := TestMember("u1", "alice")
	base.JoinedAt = stale
	base.RoleIDs = nil
	assert.True(purgeKickable(base, "role-trusted", cutoff))

	trusted := base
	trusted.RoleIDs = []string{"role-trusted"}
	assert.False(purgeKickable(trusted, "role-trusted", cutoff))

	bot := base
	bot.Bot = true
	assert.False(purgeKickable(bot, "role-trusted", cutoff))

	booster := base
	booster.BoosterSince = &boosterSince
	assert.False(purgeKickable(booster, "role-trusted", cutoff))

	recent := base
	recent.JoinedAt = time.Now()
	assert.False(purgeKickable(recent, "role-trusted", cutoff))
}

func TestScanPurgeDoesNotMutate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, fake, cutoff := purgeFixture(t)
	ctx := context.Background()

	found, err := eng.ScanPurge(ctx, "c1", cutoff)
	require.NoError(err)
	assert.Equal(1, found, "only the stale untrusted non-bot non-booster member counts")

	assert.Empty(fake.Kicked)
	assert.Empty(fake.DMs)
	members, _, err := fake.ListMembers(ctx, "c1", "", 100)
	require.NoError(err)
	assert.Len(members, 5)
}

func TestExecutePurgeRemovesScannedSet(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, fake, cutoff := purgeFixture(t)
	ctx := context.Background()

	found, err := eng.ScanPurge(ctx, "c1", cutoff)
	require.NoError(err)
	removed, err := eng.ExecutePurge(ctx, "c1", cutoff)
	require.NoError(err)
	assert.Equal(found, removed, "execute removes exactly the scanned set")

	assert.Equal([]string{"c1/u-stale"}, fake.Kicked)
	require.Len(fake.DMs["u-stale"], 1)
	assert.Contains(fake.DMs["u-stale"][0], "kicked from Test Community")
	assert.Contains(fake.DMs["u-stale"][0], "not being verified")

	// everyone else is untouched
	for _, id := range []string{"u-trusted", "u-bot", "u-booster", "u-recent"} {
		_, err := fake.Member(ctx, "c1", id)
		assert.NoError(err, id)
	}
}

func TestExecutePurgeSurvivesDisabledDMs(t *testing.T) {
	require := require.New(t)
	eng, fake, cutoff := purgeFixture(t)
	fake.DenyDMs = true

	removed, err := eng.ExecutePurge(context.Background(), "c1", cutoff)
	require.NoError(err)
	require.Equal(1, removed, "an undeliverable notice does not block the kick")
	require.Equal([]string{"c1/u-stale"}, fake.Kicked)
}

func TestExecutePurgeRequiresKickPermission(t *testing.T) {
	eng, fake, cutoff := purgeFixture(t)
	fake.SetBotPermissions("c1", platform.Permissions{ManageRoles: true})

	_, err := eng.ExecutePurge(context.Background(), "c1", cutoff)
	assert.ErrorIs(t, err, platform.ErrPermissionDenied)
}

func TestExecutePurgeManyMembers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, fake := EngineTestFixture()
	stale := time.Now().Add(-72 * time.Hour)

	// more than two batches worth of kickable members
	ids := []string{"pa", "pb", "pc", "pd", "pe", "pf", "pg", "ph", "pi", "pj", "pk", "pl"}
	for _, id := range ids {
		m := TestMember(id, "user-"+id)
		m.JoinedAt = stale
		fake.AddMember(m)
	}

	removed, err := eng.ExecutePurge(context.Background(), "c1", time.Now().Add(-24*time.Hour))
	require.NoError(err)
	assert.Equal(len(ids), removed)
	assert.Len(fake.Kicked, len(ids))
}

func TestExecutePurgeAcrossPages(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, fake := EngineTestFixture()
	stale := time.Now().Add(-72 * time.Hour)

	// more members than one listing page; the kicks from the first page
	// must not shift the rest of the membership past the cursor
	total := memberPageSize + 50
	for i := 0; i < total; i++ {
		m := TestMember(fmt.Sprintf("m%04d", i), fmt.Sprintf("user-%04d", i))
		m.JoinedAt = stale
		fake.AddMember(m)
	}

	removed, err := eng.ExecutePurge(context.Background(), "c1", time.Now().Add(-24*time.Hour))
	require.NoError(err)
	assert.Equal(total, removed)
	assert.Len(fake.Kicked, total)
}
