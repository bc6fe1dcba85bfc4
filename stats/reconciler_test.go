package stats

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/VTGare/kazoeru/metrics"
	"github.com/VTGare/kazoeru/store"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGateway keeps guilds in memory and mirrors channel mutations into
// them, the way the real state cache does.
type fakeGateway struct {
	mu     sync.Mutex
	guilds map[string]*discordgo.Guild

	nextID  int
	failAt  int
	created []string
	renamed map[string]string
	deleted []string

	guildCalls int
	guildGate  chan struct{}
	entered    chan struct{}
}

func newFakeGateway(guilds ...*discordgo.Guild) *fakeGateway {
	gw := &fakeGateway{
		guilds:  make(map[string]*discordgo.Guild),
		renamed: make(map[string]string),
	}

	for _, guild := range guilds {
		gw.guilds[guild.ID] = guild
	}

	return gw
}

func (gw *fakeGateway) Guild(guildID string) (*discordgo.Guild, error) {
	gw.mu.Lock()
	gw.guildCalls++
	gw.mu.Unlock()

	if gw.guildGate != nil {
		select {
		case gw.entered <- struct{}{}:
		default:
		}

		<-gw.guildGate
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()

	guild, ok := gw.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}

	return guild, nil
}

func (gw *fakeGateway) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	guild, ok := gw.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}

	gw.nextID++
	if gw.failAt != 0 && gw.nextID == gw.failAt {
		return nil, errors.New("missing permissions")
	}

	channel := &discordgo.Channel{
		ID:       fmt.Sprintf("ch%v", gw.nextID),
		Name:     data.Name,
		Type:     data.Type,
		ParentID: data.ParentID,
		GuildID:  guildID,
	}

	guild.Channels = append(guild.Channels, channel)
	gw.created = append(gw.created, channel.ID)

	return channel, nil
}

func (gw *fakeGateway) ChannelEdit(channelID, name string) (*discordgo.Channel, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	for _, guild := range gw.guilds {
		for _, channel := range guild.Channels {
			if channel.ID == channelID {
				channel.Name = name
				gw.renamed[channelID] = name
				return channel, nil
			}
		}
	}

	return nil, errors.New("unknown channel")
}

func (gw *fakeGateway) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	for _, guild := range gw.guilds {
		for i, channel := range guild.Channels {
			if channel.ID == channelID {
				guild.Channels = append(guild.Channels[:i], guild.Channels[i+1:]...)
				gw.deleted = append(gw.deleted, channelID)
				return channel, nil
			}
		}
	}

	return nil, errors.New("unknown channel")
}

type recordingStore struct {
	mu     sync.Mutex
	saves  int
	resets int
}

func (s *recordingStore) Load() *store.State { return store.NewState() }

func (s *recordingStore) Save(*store.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	return nil
}

func (s *recordingStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resets++
	return nil
}

func testGuild(id string) *discordgo.Guild {
	members := make([]*discordgo.Member, 0, 12)
	for i := 0; i < 10; i++ {
		members = append(members, &discordgo.Member{
			User: &discordgo.User{ID: fmt.Sprintf("u%v", i)},
		})
	}
	members = append(members,
		&discordgo.Member{User: &discordgo.User{ID: "b1", Bot: true}},
		&discordgo.Member{User: &discordgo.User{ID: "b2", Bot: true}},
	)

	return &discordgo.Guild{
		ID:      id,
		Members: members,
		Channels: []*discordgo.Channel{
			{ID: "t1", Type: discordgo.ChannelTypeGuildText, GuildID: id},
			{ID: "t2", Type: discordgo.ChannelTypeGuildText, GuildID: id},
			{ID: "n1", Type: discordgo.ChannelTypeGuildNews, GuildID: id},
			{ID: "v1", Type: discordgo.ChannelTypeGuildVoice, GuildID: id},
			{ID: "s1", Type: discordgo.ChannelTypeGuildStageVoice, GuildID: id},
		},
		Roles: []*discordgo.Role{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}, {ID: "r4"}, {ID: "r5"}},
	}
}

func newTestReconciler(gw *fakeGateway) (*Reconciler, *store.State, *recordingStore) {
	st := &recordingStore{}
	state := store.NewState()

	return NewReconciler(gw, st, state, zap.NewNop().Sugar(), metrics.New()), state, st
}

func TestSetup(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, st := newTestReconciler(gw)

	rec, err := r.Setup("g1")
	require.NoError(t, err)

	assert.Len(t, gw.created, 6, "a category and five display channels")
	assert.Len(t, rec.Channels.Populated(), 5)
	assert.NotEmpty(t, rec.Channels.CategoryID)

	guild, _ := gw.Guild("g1")
	assert.Equal(t, "📊 Total Members: 12", channelName(guild, rec.Channels.All))
	assert.Equal(t, "👥 members: 10", channelName(guild, rec.Channels.Members))
	assert.Equal(t, "🤖 Bots: 2", channelName(guild, rec.Channels.Bots))
	assert.Equal(t, "💬 Channels: 3 | 2", channelName(guild, rec.Channels.Channels))
	assert.Equal(t, "🎭 Roles: 5", channelName(guild, rec.Channels.Roles))

	assert.Same(t, rec, state.Record("g1"))
	assert.NotZero(t, st.saves)
}

func TestSetupUnknownGuild(t *testing.T) {
	r, _, st := newTestReconciler(newFakeGateway())

	_, err := r.Setup("nope")
	assert.Error(t, err)
	assert.Zero(t, st.saves)
}

func TestSetupAlreadyConfigured(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, _, _ := newTestReconciler(gw)

	_, err := r.Setup("g1")
	require.NoError(t, err)
	created := len(gw.created)

	_, err = r.Setup("g1")
	assert.ErrorIs(t, err, ErrAlreadyConfigured)
	assert.Len(t, gw.created, created, "a second setup must not create anything")
}

func TestSetupRecreatesAfterManualDeletion(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, _ := newTestReconciler(gw)

	rec, err := r.Setup("g1")
	require.NoError(t, err)

	// delete the whole category by hand
	for _, id := range rec.Channels.Populated() {
		gw.ChannelDelete(id)
	}
	gw.ChannelDelete(rec.Channels.CategoryID)

	fresh, err := r.Setup("g1")
	require.NoError(t, err)
	assert.NotEqual(t, rec.Channels.CategoryID, fresh.Channels.CategoryID)
	assert.Same(t, fresh, state.Record("g1"))
}

func TestSetupCreationFailure(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, _ := newTestReconciler(gw)

	// category, all and members succeed, bots fails
	gw.failAt = 4

	_, err := r.Setup("g1")

	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, store.SlotBots, ce.Slot)

	rec := state.Record("g1")
	require.NotNil(t, rec)
	assert.Nil(t, rec.Channels, "a half-built configuration must not be recorded")
	assert.NotNil(t, rec.Snapshot)
}

func TestRefreshUnconfigured(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, _, st := newTestReconciler(gw)

	r.Refresh("g1")

	assert.Zero(t, st.saves)
	assert.Empty(t, gw.renamed)
}

func TestRefreshDropsOrphanedRecord(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, st := newTestReconciler(gw)

	state.SetChannels("g1", &store.Channels{CategoryID: "gone"})

	r.Refresh("g1")

	assert.Nil(t, state.Record("g1"))
	assert.Equal(t, 1, st.saves)
}

func TestRefreshRenamesStaleChannels(t *testing.T) {
	guild := testGuild("g1")
	gw := newFakeGateway(guild)
	r, _, _ := newTestReconciler(gw)

	rec, err := r.Setup("g1")
	require.NoError(t, err)

	// one human leaves
	guild.Members = guild.Members[1:]

	r.Refresh("g1")

	assert.Equal(t, "📊 Total Members: 11", gw.renamed[rec.Channels.All])
	assert.Equal(t, "👥 members: 9", gw.renamed[rec.Channels.Members])

	// the display channels count themselves
	assert.Equal(t, "💬 Channels: 3 | 7", gw.renamed[rec.Channels.Channels])

	assert.Len(t, gw.renamed, 3, "bots and roles did not change")
}

func TestRefreshSkipsUnavailableGuild(t *testing.T) {
	gw := newFakeGateway(&discordgo.Guild{ID: "g1", Unavailable: true})
	r, state, st := newTestReconciler(gw)

	state.SetChannels("g1", &store.Channels{CategoryID: "cat1"})

	r.Refresh("g1")

	assert.NotNil(t, state.Record("g1"), "an outage stub is not a deleted category")
	assert.Zero(t, st.saves)
}

func TestRefreshCollapsesConcurrentCalls(t *testing.T) {
	guild := testGuild("g1")
	guild.Channels = append(guild.Channels, &discordgo.Channel{
		ID: "cat1", Type: discordgo.ChannelTypeGuildCategory, GuildID: "g1",
	})

	gw := newFakeGateway(guild)
	gw.guildGate = make(chan struct{})
	gw.entered = make(chan struct{}, 1)

	r, state, st := newTestReconciler(gw)
	state.SetChannels("g1", &store.Channels{CategoryID: "cat1"})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh("g1")
		}()
	}

	<-gw.entered
	// let the remaining calls join the in-flight refresh
	time.Sleep(50 * time.Millisecond)
	close(gw.guildGate)
	wg.Wait()

	assert.Equal(t, 1, gw.guildCalls, "concurrent refreshes of one guild collapse")
	assert.Equal(t, 1, st.saves)
}

func TestTeardownNotConfigured(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, _, st := newTestReconciler(gw)

	assert.ErrorIs(t, r.Teardown("g1"), ErrNotConfigured)
	assert.Zero(t, st.resets)
}

func TestTeardown(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, st := newTestReconciler(gw)

	_, err := r.Setup("g1")
	require.NoError(t, err)

	require.NoError(t, r.Teardown("g1"))

	assert.Len(t, gw.deleted, 6, "five display channels and the category")
	assert.Nil(t, state.Record("g1"))
	assert.Equal(t, 1, st.resets)
}

func TestTeardownMissingCategory(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, st := newTestReconciler(gw)

	state.SetChannels("g1", &store.Channels{CategoryID: "gone"})

	require.NoError(t, r.Teardown("g1"))
	assert.Empty(t, gw.deleted)
	assert.Nil(t, state.Record("g1"))
	assert.Equal(t, 1, st.resets)
}

func TestResync(t *testing.T) {
	gw := newFakeGateway(testGuild("g1"))
	r, state, _ := newTestReconciler(gw)

	_, err := r.Setup("g1")
	require.NoError(t, err)

	state.SetChannels("g2", &store.Channels{CategoryID: "cat2"})

	r.Resync([]string{"g1"})

	assert.Nil(t, state.Record("g2"), "unreachable guilds are dropped")
	assert.NotNil(t, state.Record("g1"))
}

func TestResyncLeavesPendingGuilds(t *testing.T) {
	gw := newFakeGateway(&discordgo.Guild{ID: "g1", Unavailable: true})
	r, state, st := newTestReconciler(gw)

	state.SetChannels("g1", &store.Channels{CategoryID: "cat1"})

	r.Resync([]string{"g1"})

	assert.NotNil(t, state.Record("g1"), "a guild still waiting for its payload keeps its record")
	assert.Zero(t, st.saves)
	assert.Zero(t, gw.guildCalls, "resync must not reconcile against ready stubs")
}
