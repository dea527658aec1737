package platform

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// FakeClient is an in-memory Client for tests. All mutating calls are
// recorded so tests can assert on the actions the engine took.
type FakeClient struct {
	mu sync.Mutex

	BotID        string
	CommunityMap map[string]*Community
	Members      map[string]map[string]*Member // communityID -> userID
	MemberPerms  map[string]Permissions        // communityID/userID
	BotPerms     map[string]Permissions        // communityID
	Bans         map[string][]BanEntry         // communityID

	Kicked    []string // communityID/userID
	Banned    []string // communityID/userID
	DMs       map[string][]string
	Modlog    []FakeModlogMessage
	Reactions map[string][]string // messageID -> emoji

	// When true, every kick/ban/role/DM call fails with ErrPermissionDenied.
	DenyActions bool
	// When true, SendDirectMessage fails (user has DMs disabled).
	DenyDMs bool

	nextMessageID int
}

type FakeModlogMessage struct {
	ID           string
	CommunityID  string
	Content      string
	MarkerUserID string
}

func NewFakeClient(botID string) *FakeClient {
	return &FakeClient{
		BotID:        botID,
		CommunityMap: make(map[string]*Community),
		Members:      make(map[string]map[string]*Member),
		MemberPerms:  make(map[string]Permissions),
		BotPerms:     make(map[string]Permissions),
		Bans:         make(map[string][]BanEntry),
		DMs:          make(map[string][]string),
		Reactions:    make(map[string][]string),
	}
}

var _ Client = (*FakeClient)(nil)

func (f *FakeClient) AddCommunity(c Community) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cc := c
	f.CommunityMap[c.ID] = &cc
}

func (f *FakeClient) AddMember(m Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Members[m.CommunityID] == nil {
		f.Members[m.CommunityID] = make(map[string]*Member)
	}
	mm := m
	f.Members[m.CommunityID][m.UserID] = &mm
}

func (f *FakeClient) SetMemberPermissions(communityID, userID string, p Permissions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MemberPerms[communityID+"/"+userID] = p
}

func (f *FakeClient) SetBotPermissions(communityID string, p Permissions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BotPerms[communityID] = p
}

func (f *FakeClient) BotUserID() string {
	return f.BotID
}

func (f *FakeClient) Community(ctx context.Context, communityID string) (*Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.CommunityMap[communityID]
	if !ok {
		return nil, ErrNotFound
	}
	cc := *c
	cc.MemberCount = len(f.Members[communityID])
	return &cc, nil
}

func (f *FakeClient) Communities(ctx context.Context) ([]Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Community, 0, len(f.CommunityMap))
	for _, c := range f.CommunityMap {
		cc := *c
		cc.MemberCount = len(f.Members[c.ID])
		out = append(out, cc)
	}
	return out, nil
}

func (f *FakeClient) Member(ctx context.Context, communityID, userID string) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Members[communityID][userID]
	if !ok {
		return nil, ErrNotFound
	}
	mm := *m
	return &mm, nil
}

// ListMembers pages through members in a stable (sorted by user id) order.
// The cursor is the last user id of the previous page, so removals between
// pages never shift the remaining members past the cursor.
func (f *FakeClient) ListMembers(ctx context.Context, communityID, cursor string, limit int) ([]Member, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byID := f.Members[communityID]
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	start := 0
	if cursor != "" {
		start = sort.SearchStrings(ids, cursor)
		if start < len(ids) && ids[start] == cursor {
			start++
		}
	}
	if start >= len(ids) {
		return nil, "", nil
	}
	end := start + limit
	next := ""
	if end >= len(ids) {
		end = len(ids)
	} else {
		next = ids[end-1]
	}
	out := make([]Member, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, *byID[id])
	}
	return out, next, nil
}

func (f *FakeClient) MemberPermissions(ctx context.Context, communityID, userID string) (Permissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MemberPerms[communityID+"/"+userID], nil
}

func (f *FakeClient) BotPermissions(ctx context.Context, communityID string) (Permissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BotPerms[communityID], nil
}

func (f *FakeClient) AddRole(ctx context.Context, communityID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyActions {
		return ErrPermissionDenied
	}
	m, ok := f.Members[communityID][userID]
	if !ok {
		return ErrNotFound
	}
	for _, r := range m.RoleIDs {
		if r == roleID {
			return nil
		}
	}
	m.RoleIDs = append(m.RoleIDs, roleID)
	return nil
}

func (f *FakeClient) Kick(ctx context.Context, communityID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyActions {
		return ErrPermissionDenied
	}
	if _, ok := f.Members[communityID][userID]; !ok {
		return ErrNotFound
	}
	delete(f.Members[communityID], userID)
	f.Kicked = append(f.Kicked, communityID+"/"+userID)
	return nil
}

func (f *FakeClient) Ban(ctx context.Context, communityID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyActions {
		return ErrPermissionDenied
	}
	m, ok := f.Members[communityID][userID]
	if !ok {
		return ErrNotFound
	}
	delete(f.Members[communityID], userID)
	f.Banned = append(f.Banned, communityID+"/"+userID)
	f.Bans[communityID] = append(f.Bans[communityID], BanEntry{
		UserID:   userID,
		Username: m.Username,
		Reason:   reason,
	})
	return nil
}

func (f *FakeClient) SendDirectMessage(ctx context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DenyDMs {
		return ErrPermissionDenied
	}
	f.DMs[userID] = append(f.DMs[userID], content)
	return nil
}

func (f *FakeClient) PublishModlog(ctx context.Context, communityID, content, markerUserID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMessageID++
	id := strconv.Itoa(f.nextMessageID)
	f.Modlog = append(f.Modlog, FakeModlogMessage{
		ID:           id,
		CommunityID:  communityID,
		Content:      content,
		MarkerUserID: markerUserID,
	})
	return id, nil
}

func (f *FakeClient) AddReaction(ctx context.Context, communityID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reactions[messageID] = append(f.Reactions[messageID], emoji)
	return nil
}

func (f *FakeClient) BanList(ctx context.Context, communityID string) ([]BanEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.BotPerms[communityID].BanMembers {
		return nil, ErrPermissionDenied
	}
	return append([]BanEntry(nil), f.Bans[communityID]...), nil
}
