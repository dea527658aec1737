package admission

import (
	"context"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/admission/banstore"
	"github.com/wardenbot/warden/admission/lockstore"
	"github.com/wardenbot/warden/admission/namestore"
	"github.com/wardenbot/warden/platform"
)

// StaticConfigSource serves a fixed per-community config map. Used by
// tests and by deployments configured entirely from flags.
type StaticConfigSource map[string]*Config

func (s StaticConfigSource) ValidationConfig(ctx context.Context, communityID string) (*Config, error) {
	return s[communityID], nil
}

// EngineTestFixture builds an engine wired to in-memory stores and a fake
// platform client with one configured community. Intentionally exported,
// for use in other packages.
func EngineTestFixture() (*Engine, *platform.FakeClient) {
	fake := platform.NewFakeClient("bot-1")
	fake.AddCommunity(platform.Community{ID: "c1", Name: "Test Community"})
	fake.SetBotPermissions("c1", platform.Permissions{
		ManageRoles: true,
		KickMembers: true,
		BanMembers:  true,
	})

	validators, err := DefaultValidators(ChainOpts{
		UserBotNames:       []string{"spambot"},
		OffensiveUsernames: []string{"slur"},
	})
	if err != nil {
		panic(err)
	}

	eng := &Engine{
		Logger:     slog.Default(),
		Platform:   fake,
		Configs:    StaticConfigSource{"c1": {Enabled: true, TrustRoleID: "role-trusted"}},
		Bans:       banstore.NewMemBanStore(),
		Names:      namestore.NewMemNameStore(),
		Lockdowns:  NewLockdownController(lockstore.NewMemLockStore(), slog.Default()),
		Validators: validators,
		BotOwnerID: "owner-1",
	}
	return eng, fake
}

// TestMember returns a member snapshot that passes the default chain: an
// established account with an avatar and an inoffensive name.
func TestMember(userID, username string) platform.Member {
	return platform.Member{
		UserID:      userID,
		CommunityID: "c1",
		Username:    username,
		CreatedAt:   time.Now().Add(-365 * 24 * time.Hour),
		JoinedAt:    time.Now(),
		HasAvatar:   true,
	}
}
