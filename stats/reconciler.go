package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/VTGare/kazoeru/internal/arrays"
	"github.com/VTGare/kazoeru/metrics"
	"github.com/VTGare/kazoeru/store"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	ErrAlreadyConfigured = errors.New("stats channels are already set up")
	ErrNotConfigured     = errors.New("stats channels are not set up")
)

// CreationError reports which display channel failed during setup.
// Channels created before the failure are left in place and are not
// tracked by any persisted record, so they have to be removed by hand.
type CreationError struct {
	Slot string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("failed to create the %v channel: %v", e.Slot, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// Reconciler owns the state and keeps the display channels of every
// configured guild in agreement with the live guild collections.
// Operations on the same guild are serialized; concurrent refreshes of
// one guild collapse into a single run.
type Reconciler struct {
	gw      Gateway
	store   store.Store
	state   *store.State
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	locks  sync.Map
	flight singleflight.Group
}

func NewReconciler(gw Gateway, st store.Store, state *store.State, log *zap.SugaredLogger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		gw:      gw,
		store:   st,
		state:   state,
		log:     log,
		metrics: m,
	}
}

// Setup creates the stats category and the five display channels, then
// persists the new record. It returns ErrAlreadyConfigured when a record
// exists and its category is still present, and a CreationError when any
// channel creation fails; in the latter case nothing is persisted and
// already-created channels are deliberately not rolled back.
func (r *Reconciler) Setup(guildID string) (*store.Record, error) {
	mu := r.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	guild, err := r.gw.Guild(guildID)
	if err != nil {
		return nil, err
	}

	if rec := r.state.Record(guildID); rec != nil && rec.Channels != nil {
		if hasChannel(guild, rec.Channels.CategoryID) {
			return nil, ErrAlreadyConfigured
		}

		// the category was removed behind our back, the record is stale
		r.state.Delete(guildID)
	}

	if rec := r.state.Record(guildID); rec == nil || rec.Snapshot == nil {
		r.state.SetSnapshot(guildID, Compute(guild))
		r.persist()
	}

	snapshot := Compute(guild)
	r.state.SetSnapshot(guildID, snapshot)
	r.persist()

	category, err := r.gw.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: CategoryName,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		r.log.Warnf("setup: failed to create the stats category in guild %v: %v", guildID, err)
		return nil, &CreationError{Slot: "category", Err: err}
	}

	channels := &store.Channels{CategoryID: category.ID}
	for _, slot := range store.Slots {
		channel, err := r.gw.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
			Name:     ChannelName(slot, snapshot),
			Type:     discordgo.ChannelTypeGuildVoice,
			ParentID: category.ID,
			PermissionOverwrites: []*discordgo.PermissionOverwrite{
				{
					// @everyone shares its ID with the guild
					ID:   guildID,
					Type: discordgo.PermissionOverwriteTypeRole,
					Deny: discordgo.PermissionVoiceConnect,
				},
			},
		})
		if err != nil {
			r.log.Warnf("setup: failed to create the %v channel in guild %v: %v", slot, guildID, err)
			return nil, &CreationError{Slot: slot, Err: err}
		}

		channels.Set(slot, channel.ID)
	}

	r.state.SetChannels(guildID, channels)
	r.persist()

	return r.state.Record(guildID), nil
}

// Refresh recomputes the guild's snapshot and renames every display
// channel whose name went stale. It never reports failure to the caller:
// errors are logged and the next triggering event retries implicitly.
func (r *Reconciler) Refresh(guildID string) {
	r.flight.Do(guildID, func() (interface{}, error) {
		r.refresh(guildID)
		return nil, nil
	})
}

func (r *Reconciler) refresh(guildID string) {
	mu := r.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	rec := r.state.Record(guildID)
	if rec == nil || rec.Channels == nil {
		return
	}

	guild, err := r.gw.Guild(guildID)
	if err != nil {
		r.log.Warnf("refresh: failed to fetch guild %v: %v", guildID, err)
		return
	}

	if guild.Unavailable {
		// outage stubs carry no channel data, don't mistake them for
		// a deleted category
		return
	}

	if !hasChannel(guild, rec.Channels.CategoryID) {
		// somebody deleted the category by hand, forget the guild
		r.log.Infof("refresh: stats category is gone, dropping guild %v", guildID)
		r.state.Delete(guildID)
		r.persist()
		return
	}

	snapshot := Compute(guild)
	r.state.SetSnapshot(guildID, snapshot)
	r.persist()
	r.metrics.IncrementRefresh()

	eg, _ := errgroup.WithContext(context.Background())
	for slot, channelID := range rec.Channels.Populated() {
		slot, channelID := slot, channelID
		eg.Go(func() error {
			desired := ChannelName(slot, snapshot)
			if channelName(guild, channelID) == desired {
				return nil
			}

			if _, err := r.gw.ChannelEdit(channelID, desired); err != nil {
				r.log.Warnf("refresh: failed to rename the %v channel in guild %v: %v", slot, guildID, err)
				return nil
			}

			r.metrics.IncrementRename()
			return nil
		})
	}

	eg.Wait()
}

// Teardown deletes the stats category with every channel under it and
// forgets the guild. The persisted document is fully reset instead of
// rewritten with the shrunk state, matching the behavior this bot has
// always had.
func (r *Reconciler) Teardown(guildID string) error {
	mu := r.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	rec := r.state.Record(guildID)
	if rec == nil || rec.Channels == nil {
		return ErrNotConfigured
	}

	guild, err := r.gw.Guild(guildID)
	if err != nil {
		return err
	}

	if hasChannel(guild, rec.Channels.CategoryID) {
		children := arrays.Filter(guild.Channels, func(channel *discordgo.Channel) bool {
			return channel.ParentID == rec.Channels.CategoryID
		})

		eg, _ := errgroup.WithContext(context.Background())
		for _, channel := range children {
			channelID := channel.ID
			eg.Go(func() error {
				if _, err := r.gw.ChannelDelete(channelID); err != nil {
					r.log.Warnf("teardown: failed to delete channel %v in guild %v: %v", channelID, guildID, err)
				}

				return nil
			})
		}

		eg.Wait()

		if _, err := r.gw.ChannelDelete(rec.Channels.CategoryID); err != nil {
			r.log.Warnf("teardown: failed to delete the stats category in guild %v: %v", guildID, err)
		}
	}

	r.state.Delete(guildID)
	if err := r.store.Reset(); err != nil {
		r.log.Warnf("teardown: failed to reset the store: %v", err)
	}

	return nil
}

// Resync drops configured guilds the session can no longer see. Runs
// once per gateway ready. The ready payload only lists guild stubs, so
// the surviving guilds are refreshed by their own guild create events,
// which carry the full channel and member collections.
func (r *Reconciler) Resync(guildIDs []string) {
	dropped := 0
	for _, id := range r.state.GuildIDs() {
		if !arrays.Check(id, guildIDs) {
			r.log.Infof("resync: guild %v is unreachable, dropping it", id)
			r.state.Delete(id)
			dropped++
		}
	}

	if dropped > 0 {
		r.persist()
	}
}

func (r *Reconciler) persist() {
	if err := r.store.Save(r.state); err != nil {
		r.log.Warnf("failed to save state: %v", err)
	}
}

func (r *Reconciler) lock(guildID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(guildID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func hasChannel(guild *discordgo.Guild, channelID string) bool {
	return arrays.CheckFunc(func(channel *discordgo.Channel) bool {
		return channel.ID == channelID
	}, guild.Channels)
}

func channelName(guild *discordgo.Guild, channelID string) string {
	for _, channel := range guild.Channels {
		if channel.ID == channelID {
			return channel.Name
		}
	}

	return ""
}
