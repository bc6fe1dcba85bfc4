package bot

import (
	"github.com/VTGare/gumi"
	"github.com/VTGare/kazoeru/internal/config"
	"github.com/VTGare/kazoeru/metrics"
	"github.com/VTGare/kazoeru/stats"
	"github.com/VTGare/kazoeru/store"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	Store   store.Store
	State   *store.State
	Stats   *stats.Reconciler
	Metrics *metrics.Metrics
	Log     *zap.SugaredLogger
	Config  *config.Config
	Router  *gumi.Router
	s       *discordgo.Session
}

func New(config *config.Config, st store.Store, state *store.State, logger *zap.SugaredLogger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Discord.Token)
	if err != nil {
		return nil, err
	}

	// member counts need the privileged members intent on top of the defaults
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers

	m := metrics.New()
	return &Bot{
		Store:   st,
		State:   state,
		Stats:   stats.NewReconciler(stats.NewSessionGateway(dg), st, state, logger, m),
		Metrics: m,
		Log:     logger,
		Config:  config,
		s:       dg,
	}, nil
}

func (b *Bot) AddRouter(router *gumi.Router) {
	b.Router = gumi.Create(router)
}

func (b *Bot) AddHandler(handler interface{}) {
	b.s.AddHandler(handler)
}

func (b *Bot) Open() error {
	b.Router.Initialize(b.s)

	err := b.s.Open()
	if err != nil {
		return err
	}

	b.Log.Info("Started a bot.")
	return nil
}

func (b *Bot) Close() error {
	return b.s.Close()
}
