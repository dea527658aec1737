package admission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/admission/banstore"
	"github.com/wardenbot/warden/admission/keyword"
	"github.com/wardenbot/warden/platform"
)

func testContext(t *testing.T, m platform.Member) (*Context, *platform.FakeClient) {
	t.Helper()
	eng, fake := EngineTestFixture()
	return eng.NewContext(context.Background(), m, Config{Enabled: true, TrustRoleID: "role-trusted"}), fake
}

func TestNewAccountRejector(t *testing.T) {
	assert := assert.New(t)

	fresh := TestMember("u1", "alice")
	fresh.CreatedAt = time.Now().Add(-24 * time.Hour)
	c, _ := testContext(t, fresh)
	r := &NewAccountRejector{Lookback: 30 * 24 * time.Hour}
	assert.NoError(r.Validate(c))
	assert.False(c.Approved)
	require.Len(t, c.RejectionReasons, 1)
	assert.Contains(c.RejectionReasons[0], "Account created less than")

	aged := TestMember("u2", "bob")
	c, _ = testContext(t, aged)
	assert.NoError(r.Validate(c))
	assert.True(c.Approved)
	assert.Empty(c.RejectionReasons)
}

func TestNoAvatarRejector(t *testing.T) {
	assert := assert.New(t)

	m := TestMember("u1", "alice")
	m.HasAvatar = false
	c, _ := testContext(t, m)
	r := &NoAvatarRejector{}
	assert.NoError(r.Validate(c))
	assert.Equal([]string{"User has no avatar."}, c.RejectionReasons)

	c, _ = testContext(t, TestMember("u2", "bob"))
	assert.NoError(r.Validate(c))
	assert.Empty(c.RejectionReasons)
}

func TestDeletedAccountRejector(t *testing.T) {
	assert := assert.New(t)
	r := &DeletedAccountRejector{}

	m := TestMember("u1", "alice")
	m.Deleted = true
	c, _ := testContext(t, m)
	assert.NoError(r.Validate(c))
	assert.False(c.Approved)

	// not flagged deleted, but the username mimics the deletion pattern
	fakeDeleted := TestMember("u2", "Deleted User 8f3a")
	c, _ = testContext(t, fakeDeleted)
	assert.NoError(r.Validate(c))
	assert.False(c.Approved)
	require.Len(t, c.RejectionReasons, 1)
	assert.Contains(c.RejectionReasons[0], "fake account deletion")

	c, _ = testContext(t, TestMember("u3", "bob"))
	assert.NoError(r.Validate(c))
	assert.True(c.Approved)
}

func TestStringFilterRejector(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	filters, err := keyword.CompileFilters([]string{"nano"})
	require.NoError(err)

	substr := &StringFilterRejector{Prefix: "Likely user bot. ", Filters: filters}
	full := &StringFilterRejector{Prefix: "Likely user bot. ", Filters: filters, FullMatch: true}

	// substring match fires on an embedded token, full match does not
	c, _ := testContext(t, TestMember("u1", "xXnanoXx"))
	assert.NoError(substr.Validate(c))
	assert.Equal([]string{"Likely user bot. Matches: `nano`"}, c.RejectionReasons)

	c, _ = testContext(t, TestMember("u1", "xXnanoXx"))
	assert.NoError(full.Validate(c))
	assert.Empty(c.RejectionReasons)

	// full match fires when the pattern covers the whole name
	c, _ = testContext(t, TestMember("u2", "n.a.n.o"))
	assert.NoError(full.Validate(c))
	assert.False(c.Approved)
}

func TestStringFilterRejectorChecksUsernameHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, _ := EngineTestFixture()
	ctx := context.Background()

	require.NoError(eng.Names.Observe(ctx, "u1", "slurname"))

	filters, err := keyword.CompileFilters([]string{"slur"})
	require.NoError(err)
	r := &StringFilterRejector{Prefix: "Offensive username. ", Filters: filters}

	// current name is clean, but the recorded history is not
	c := eng.NewContext(ctx, TestMember("u1", "friendly"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.False(c.Approved)
}

func TestNameMatchRejector(t *testing.T) {
	assert := assert.New(t)

	mod := TestMember("mod-1", "GuardianAngel")
	mod.Moderator = true

	t.Run("matches moderator token", func(t *testing.T) {
		c, fake := testContext(t, TestMember("u1", "guardian_2"))
		fake.AddMember(mod)
		r := &NameMatchRejector{
			Prefix:         "Username matches moderator's. ",
			Predicate:      func(m platform.Member) bool { return m.Moderator },
			MinMatchLength: 4,
		}
		assert.NoError(r.Validate(c))
		assert.Equal([]string{"Username matches moderator's. Matches: `guardian`"}, c.RejectionReasons)
	})

	t.Run("short tokens are ignored", func(t *testing.T) {
		shortMod := TestMember("mod-2", "Rex")
		shortMod.Moderator = true
		c, fake := testContext(t, TestMember("u2", "rexington"))
		fake.AddMember(shortMod)
		r := &NameMatchRejector{
			Prefix:         "Username matches moderator's. ",
			Predicate:      func(m platform.Member) bool { return m.Moderator },
			MinMatchLength: 4,
		}
		assert.NoError(r.Validate(c))
		assert.Empty(c.RejectionReasons)
	})

	t.Run("never matches against self", func(t *testing.T) {
		self := TestMember("mod-3", "GuardianAngel")
		self.Moderator = true
		c, fake := testContext(t, self)
		fake.AddMember(self)
		r := &NameMatchRejector{
			Prefix:         "Username matches moderator's. ",
			Predicate:      func(m platform.Member) bool { return m.Moderator },
			MinMatchLength: 4,
		}
		assert.NoError(r.Validate(c))
		assert.Empty(c.RejectionReasons)
	})
}

func TestBannedUserRejector(t *testing.T) {
	assert := assert.New(t)
	eng, fake := EngineTestFixture()
	ctx := context.Background()

	fake.AddCommunity(platform.Community{ID: "c2", Name: "Big Community"})
	for i := 0; i < 200; i++ {
		fake.AddMember(platform.Member{UserID: "filler-" + string(rune('a'+i%26)) + string(rune('a'+i/26)), CommunityID: "c2"})
	}
	fake.AddCommunity(platform.Community{ID: "c3", Name: "Tiny Community"})

	bans := eng.Bans.(*banstore.MemBanStore)
	bans.Add(banstore.BanRecord{CommunityID: "c2", UserID: "u1", Reason: "spam"})
	bans.Add(banstore.BanRecord{CommunityID: "c2", UserID: "u1", Reason: "spam"})
	bans.Add(banstore.BanRecord{CommunityID: "c3", UserID: "u2", Reason: "tiny"})
	bans.Add(banstore.BanRecord{CommunityID: "c2", UserID: "u3"})

	r := &BannedUserRejector{MinCommunitySize: 150}

	// duplicate reasons collapse to a single trail entry
	c := eng.NewContext(ctx, TestMember("u1", "alice"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.Equal([]string{"Banned on another server. Reason: `spam`."}, c.RejectionReasons)

	// bans in communities below the size threshold do not count
	c = eng.NewContext(ctx, TestMember("u2", "bob"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.True(c.Approved)

	// a ban without a recorded reason still rejects, with a generic entry
	c = eng.NewContext(ctx, TestMember("u3", "mallory"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.Equal([]string{"Banned on another server."}, c.RejectionReasons)
}

func TestBannedUsernameRejector(t *testing.T) {
	r := &BannedUsernameRejector{}

	t.Run("matches live ban list entry", func(t *testing.T) {
		assert := assert.New(t)
		c, fake := testContext(t, TestMember("u1", "Evil Doer"))
		fake.Bans["c1"] = append(fake.Bans["c1"],
			platform.BanEntry{UserID: "gone", Username: "evil doer", Reason: "spam"})
		assert.NoError(r.Validate(c))
		assert.False(c.Approved)
		require.Len(t, c.RejectionReasons, 1)
		assert.Contains(c.RejectionReasons[0], "Exact username match")
		assert.Contains(c.RejectionReasons[0], "spam")
	})

	t.Run("matches a banned user's historic username", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		eng, fake := EngineTestFixture()
		ctx := context.Background()

		// the banned account renamed before the ban; only the history
		// still carries the offending name
		eng.Bans.(*banstore.MemBanStore).Add(banstore.BanRecord{
			CommunityID: "c1", UserID: "u-banned", Reason: "harassment",
		})
		require.NoError(eng.Names.Observe(ctx, "u-banned", "evil doer"))
		require.NoError(eng.Names.Observe(ctx, "u-banned", "innocuous"))
		fake.Bans["c1"] = append(fake.Bans["c1"],
			platform.BanEntry{UserID: "u-banned", Username: "innocuous"})

		c := eng.NewContext(ctx, TestMember("u1", "Evil Doer"), Config{Enabled: true})
		assert.NoError(r.Validate(c))
		assert.False(c.Approved)
		require.Len(c.RejectionReasons, 1)
		assert.Contains(c.RejectionReasons[0], "Exact username match")
		assert.Contains(c.RejectionReasons[0], "harassment")
	})

	t.Run("store path works without ban list permission", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		eng, fake := EngineTestFixture()
		ctx := context.Background()
		fake.SetBotPermissions("c1", platform.Permissions{})

		eng.Bans.(*banstore.MemBanStore).Add(banstore.BanRecord{
			CommunityID: "c1", UserID: "u-banned",
		})
		require.NoError(eng.Names.Observe(ctx, "u-banned", "evil doer"))

		c := eng.NewContext(ctx, TestMember("u1", "Evil Doer"), Config{Enabled: true})
		assert.NoError(r.Validate(c))
		assert.False(c.Approved)
	})

	t.Run("clean name passes", func(t *testing.T) {
		assert := assert.New(t)
		c, fake := testContext(t, TestMember("u1", "friendly"))
		fake.Bans["c1"] = append(fake.Bans["c1"],
			platform.BanEntry{UserID: "gone", Username: "evil doer"})
		assert.NoError(r.Validate(c))
		assert.True(c.Approved)
	})
}

func TestLockdownRejector(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	eng, _ := EngineTestFixture()
	ctx := context.Background()
	r := &LockdownRejector{}

	c := eng.NewContext(ctx, TestMember("u1", "alice"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.True(c.Approved)

	require.NoError(eng.ActivateLockdown(ctx, "c1", time.Now().Add(time.Hour)))
	c = eng.NewContext(ctx, TestMember("u1", "alice"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.Equal([]string{"Lockdown enabled. All new joins must be manually verified."}, c.RejectionReasons)

	// an expired lockdown is inactive without explicit deactivation
	require.NoError(eng.ActivateLockdown(ctx, "c1", time.Now().Add(-time.Minute)))
	c = eng.NewContext(ctx, TestMember("u1", "alice"), Config{Enabled: true})
	assert.NoError(r.Validate(c))
	assert.True(c.Approved)
}
