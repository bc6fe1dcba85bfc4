package store

// Store persists the guild records between runs.
type Store interface {
	// Load reads the persisted document. It never fails: an unreadable
	// document degrades to an empty state.
	Load() *State

	// Save serializes the whole state to the document.
	Save(state *State) error

	// Reset overwrites the document with an empty state.
	Reset() error
}

// Slot names of the five display channels.
const (
	SlotAll      = "all"
	SlotMembers  = "members"
	SlotBots     = "bots"
	SlotChannels = "channels"
	SlotRoles    = "roles"
)

// Slots lists every display slot in creation order.
var Slots = []string{SlotAll, SlotMembers, SlotBots, SlotChannels, SlotRoles}

// Channels holds the category and display channel IDs of a configured guild.
// A slot is empty if its channel was never created.
type Channels struct {
	CategoryID string `json:"categoryId"`
	All        string `json:"all,omitempty"`
	Members    string `json:"members,omitempty"`
	Bots       string `json:"bots,omitempty"`
	Channels   string `json:"channels,omitempty"`
	Roles      string `json:"roles,omitempty"`
}

func (c *Channels) Get(slot string) string {
	switch slot {
	case SlotAll:
		return c.All
	case SlotMembers:
		return c.Members
	case SlotBots:
		return c.Bots
	case SlotChannels:
		return c.Channels
	case SlotRoles:
		return c.Roles
	}

	return ""
}

func (c *Channels) Set(slot, channelID string) {
	switch slot {
	case SlotAll:
		c.All = channelID
	case SlotMembers:
		c.Members = channelID
	case SlotBots:
		c.Bots = channelID
	case SlotChannels:
		c.Channels = channelID
	case SlotRoles:
		c.Roles = channelID
	}
}

// Populated returns the populated slot-to-channel mapping.
func (c *Channels) Populated() map[string]string {
	slots := make(map[string]string, len(Slots))
	for _, slot := range Slots {
		if id := c.Get(slot); id != "" {
			slots[slot] = id
		}
	}

	return slots
}

// Snapshot is the last-computed set of count statistics for a guild.
type Snapshot struct {
	TotalMembers  int `json:"totalMembers"`
	HumanMembers  int `json:"humanMembers"`
	BotMembers    int `json:"botMembers"`
	TextChannels  int `json:"textChannels"`
	VoiceChannels int `json:"voiceChannels"`
	TotalChannels int `json:"totalChannels"`
	TotalRoles    int `json:"totalRoles"`
}

// Record is everything the bot remembers about one guild. Keeping the
// channel configuration and the snapshot in one value makes it impossible
// for the two to diverge in memory, even though the document keeps them
// in two separate maps.
type Record struct {
	Channels *Channels
	Snapshot *Snapshot
}
