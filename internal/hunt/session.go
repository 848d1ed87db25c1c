package hunt

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"
)

// State is the authoritative game phase. Exactly one Session instance owns
// it; every other component gates on it.
type State int

const (
	StateIdle State = iota
	StateScanned
	StateReadyToPlay
	StatePlaying
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanned:
		return "scanned"
	case StateReadyToPlay:
		return "ready_to_play"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

const (
	// teamCreateTimeout synthesizes a failure when the ledger does not
	// answer a create call in time. A late answer is ignored.
	teamCreateTimeout = 10 * time.Second

	// maxInteractionDistance auto-cancels a quiz when the player walks
	// away from the item.
	maxInteractionDistance = 100.0

	// playerEyeHeight estimates the floor when no marker anchor was ever
	// established.
	playerEyeHeight = 1.4
)

// Events receives session notifications. Implementations drive whatever
// surface sits on top of the engine; the engine itself has no UI.
type Events interface {
	StateChanged(from, to State)
	QuestionPresented(item *Item, q Question)
	ItemCollected(collected, total int)
	AllItemsCollected()
	TeamCreateFailed(reason string)
	CatalogLoadFailed(reason string)
	GameEnded(winnerTeamID string, won bool)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) StateChanged(from, to State)              {}
func (NopEvents) QuestionPresented(item *Item, q Question) {}
func (NopEvents) ItemCollected(collected, total int)       {}
func (NopEvents) AllItemsCollected()                       {}
func (NopEvents) TeamCreateFailed(reason string)           {}
func (NopEvents) CatalogLoadFailed(reason string)          {}
func (NopEvents) GameEnded(winnerTeamID string, won bool)  {}

// Deps wires a Session to its collaborators. Every field except Events,
// Rand and TeamCreateTimeout is required.
type Deps struct {
	Log     *slog.Logger
	Loop    *Loop
	Config  ConfigSource
	Items   ItemSource
	Ledger  TeamLedger
	Tracker Tracker
	Locator Locator
	Events  Events

	Rand              *rand.Rand
	TeamCreateTimeout time.Duration
}

// Session is the game state machine. All methods must be called on the
// loop goroutine; collaborator completions are marshalled back onto it, so
// no state here needs locking.
type Session struct {
	log    *slog.Logger
	loop   *Loop
	config ConfigSource
	items  ItemSource
	ledger TeamLedger
	track  Tracker
	loc    Locator
	events Events

	catalog     *Catalog
	spawner     *Spawner
	interaction *Interaction
	discovery   *Discovery
	geo         GeoOrigin

	ctx       context.Context
	watchStop func()

	state          State
	playRequested  bool
	trackingStable bool
	// trackingEnabled drops found signals while a game is running: a live
	// session must never re-anchor or re-scan.
	trackingEnabled    bool
	interactionEnabled bool

	roomID     string
	cfg        RoomConfig
	cfgReady   bool
	cfgLoading bool

	itemsLoading bool

	teamID      string
	teamName    string
	teamPending bool
	teamTimer   *time.Timer
	teamTimeout time.Duration
	// globalEnded latches while the ledger reports a winner anywhere; new
	// teams cannot be created until the ledger is cleared.
	globalEnded bool

	anchor    Vec3
	anchorSet bool
	playerPos Vec3
	playerFwd Vec3
}

func NewSession(d Deps) *Session {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Events == nil {
		d.Events = NopEvents{}
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if d.TeamCreateTimeout <= 0 {
		d.TeamCreateTimeout = teamCreateTimeout
	}

	s := &Session{
		log:    d.Log,
		loop:   d.Loop,
		config: d.Config,
		items:  d.Items,
		ledger: d.Ledger,
		track:  d.Tracker,
		loc:    d.Locator,
		events: d.Events,

		catalog:     NewCatalog(d.Log),
		spawner:     NewSpawner(d.Log, d.Rand),
		interaction: NewInteraction(d.Log, d.Rand),
		discovery:   NewDiscovery(),

		state:           StateIdle,
		trackingEnabled: true,
		teamTimeout:     d.TeamCreateTimeout,
		playerFwd:       Vec3{Z: 1},
	}

	s.interaction.MaxDistance = maxInteractionDistance
	s.interaction.OnQuestion = func(item *Item, q Question) {
		s.events.QuestionPresented(item, q)
	}
	s.interaction.OnCollect = func(item *Item, placed *PlacedItem) {
		s.completeItem(item)
	}
	s.catalog.OnCollected = func(collected, total int) {
		s.events.ItemCollected(collected, total)
	}
	s.catalog.OnAllCollected = func() {
		s.events.AllItemsCollected()
	}
	return s
}

// Start begins watching the ledger for a global winner and pins the
// context used for all remote calls.
func (s *Session) Start(ctx context.Context) error {
	s.ctx = ctx
	stop, err := s.ledger.WatchWinner(ctx, func(ev WinnerEvent) {
		s.loop.Post(func() { s.onWinner(ev) })
	})
	if err != nil {
		return err
	}
	s.watchStop = stop
	return nil
}

// Shutdown releases the winner subscription and any pending timers.
func (s *Session) Shutdown() {
	if s.watchStop != nil {
		s.watchStop()
		s.watchStop = nil
	}
	s.stopTeamTimer()
}

func (s *Session) State() State       { return s.state }
func (s *Session) TeamID() string     { return s.teamID }
func (s *Session) TeamName() string   { return s.teamName }
func (s *Session) RoomID() string     { return s.roomID }
func (s *Session) ConfigReady() bool  { return s.cfgReady }
func (s *Session) Config() RoomConfig { return s.cfg }

// Catalog exposes the item catalog for read access.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Spawner exposes the placement engine for read access.
func (s *Session) Spawner() *Spawner { return s.spawner }

// Interaction exposes the quiz cycle for read access.
func (s *Session) Interaction() *Interaction { return s.interaction }

// Geo exposes the geographic origin established at game start.
func (s *Session) Geo() *GeoOrigin { return &s.geo }

// Anchor returns the current play-area anchor point.
func (s *Session) Anchor() Vec3 { return s.anchor }

// UpdatePose records the player's current position and facing. Called by
// the platform once per frame.
func (s *Session) UpdatePose(pos, forward Vec3) {
	s.playerPos = pos
	if forward.X != 0 || forward.Z != 0 {
		s.playerFwd = forward
	}
}

// Tick runs the per-frame checks: interaction proximity cancel and
// discovery fades. Only active while playing.
func (s *Session) Tick(dt float64) {
	if s.state != StatePlaying {
		return
	}
	s.interaction.TickProximity(s.playerPos)
	s.discovery.Tick(dt, s.playerPos, s.spawner.PlacedItems())
}

// HandleTrackingFound is the marker tracking collaborator's found signal.
// Accepted only from Idle or Scanned; a signal arriving in any other state
// is dropped so a running game is never re-anchored by a stray scan.
func (s *Session) HandleTrackingFound(target string, pos Vec3) {
	if !s.trackingEnabled {
		s.log.Debug("tracking handler disabled, dropping found signal", "target", target)
		return
	}
	if s.state != StateIdle && s.state != StateScanned {
		s.log.Info("ignoring scan", "state", s.state.String(), "target", target)
		return
	}

	if s.state == StateIdle {
		s.setState(StateScanned)
	}
	if s.trackingStable {
		return
	}
	s.trackingStable = true

	// During setup the play area anchors at the marker; once playing, the
	// anchor belongs to the player.
	if s.state != StatePlaying {
		s.anchor = pos
		s.anchorSet = true
	}

	if target == "" {
		// No room mapping for this marker: fatal for this scan cycle
		// only. The user has to rescan.
		s.log.Error("tracked target has no room id, config load skipped")
		return
	}
	s.roomID = target
	if !s.cfgReady && !s.cfgLoading {
		s.loadRoomConfig(target)
	}
}

// HandleTrackingLost is the marker tracking collaborator's lost signal.
func (s *Session) HandleTrackingLost(target string) {
	s.trackingStable = false
}

// RequestPlay latches the user's intent to start. The Scanned to
// ReadyToPlay transition needs both this and a ready configuration, in
// either order.
func (s *Session) RequestPlay() {
	if s.state != StateScanned {
		s.log.Debug("play request ignored", "state", s.state.String())
		return
	}
	s.playRequested = true
	if s.cfgReady {
		s.setState(StateReadyToPlay)
	} else {
		s.log.Info("play requested before config ready, waiting")
	}
}

// SubmitTeamName creates the team record and, on acknowledgement, enters
// Playing. A timeout synthesizes a failure; the real answer arriving later
// is ignored.
func (s *Session) SubmitTeamName(name string) {
	if s.state != StateReadyToPlay {
		s.log.Debug("team submission ignored", "state", s.state.String())
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.events.TeamCreateFailed("team name is required")
		return
	}
	if s.globalEnded {
		s.events.TeamCreateFailed("game is already over")
		return
	}
	if s.teamPending {
		return
	}

	s.teamPending = true
	s.teamTimer = s.loop.After(s.teamTimeout, s.onTeamCreateTimeout)

	go func() {
		rec, err := s.ledger.CreateTeam(s.ctx, name)
		s.loop.Post(func() { s.onTeamCreated(rec, err) })
	}()
}

func (s *Session) onTeamCreateTimeout() {
	if !s.teamPending {
		return
	}
	s.log.Warn("team creation timed out")
	s.failTeamCreation("Timeout")
}

func (s *Session) onTeamCreated(rec TeamRecord, err error) {
	if !s.teamPending {
		// The timeout already fired and reset the local state; the late
		// answer is harmless.
		s.log.Debug("ignoring late team creation result")
		return
	}
	s.teamPending = false
	s.stopTeamTimer()

	if err != nil {
		s.failTeamCreation(err.Error())
		return
	}

	s.teamID = rec.ID
	s.teamName = rec.Name
	s.log.Info("team created", "team", rec.ID, "name", rec.Name)
	s.setState(StatePlaying)
}

func (s *Session) failTeamCreation(reason string) {
	s.teamPending = false
	s.stopTeamTimer()
	s.log.Error("team creation failed", "reason", reason)
	s.events.TeamCreateFailed(reason)
}

func (s *Session) stopTeamTimer() {
	if s.teamTimer != nil {
		s.teamTimer.Stop()
		s.teamTimer = nil
	}
}

// ConfirmEndGame is the user's explicit end-of-game confirmation.
func (s *Session) ConfirmEndGame() {
	if s.state != StatePlaying {
		return
	}
	s.setState(StateEnded)
}

// HandleItemClicked is the hit-test collaborator's report of a tap on a
// placed item.
func (s *Session) HandleItemClicked(itemID string) {
	if s.state != StatePlaying || !s.interactionEnabled {
		return
	}
	item := s.catalog.Item(itemID)
	if item == nil {
		s.log.Warn("click on unknown item", "item", itemID)
		return
	}
	if item.Collected {
		s.log.Debug("click on collected item ignored", "item", itemID)
		return
	}
	if s.interaction.Active() {
		s.log.Debug("interaction already active, click ignored", "item", itemID)
		return
	}
	placed := s.spawner.Placed(itemID)
	if placed == nil {
		s.log.Warn("clicked item has no placement", "item", itemID)
		return
	}
	if err := s.interaction.Start(item, placed); err != nil {
		s.log.Warn("interaction start rejected", "item", itemID, "error", err)
	}
}

// SubmitAnswer forwards a yes/no answer to the active quiz.
func (s *Session) SubmitAnswer(answer bool) {
	if s.state != StatePlaying {
		return
	}
	s.interaction.Submit(answer)
}

// RetryItemLoad re-requests the item catalog after a failed load. There is
// no meaningful default item set, so failures are not papered over.
func (s *Session) RetryItemLoad() {
	s.loadItems()
}

func (s *Session) setState(to State) {
	from := s.state
	s.state = to
	s.log.Info("state change", "from", from.String(), "to", to.String())
	s.events.StateChanged(from, to)

	switch to {
	case StatePlaying:
		s.enterPlaying()
	case StateEnded:
		s.enterEnded()
	}
}

func (s *Session) enterPlaying() {
	// Re-anchor to the player, keeping the floor height from the marker
	// anchor when one was established. The anchor is a plain world point
	// from here on: nothing the tracker does can move or scale it.
	floorY := s.playerPos.Y - playerEyeHeight
	if s.anchorSet {
		floorY = s.anchor.Y
	}
	s.anchor = Vec3{X: s.playerPos.X, Y: floorY, Z: s.playerPos.Z}
	s.anchorSet = true
	s.log.Info("play area re-anchored to player",
		"x", s.anchor.X, "y", s.anchor.Y, "z", s.anchor.Z)

	if lat, lng, ok := s.loc.Location(); ok {
		s.geo.SetOrigin(lat, lng)
	} else {
		s.log.Warn("location not ready, geographic origin not set")
	}

	s.trackingEnabled = false
	s.interactionEnabled = true
	s.interaction.Cancel()

	if s.catalog.Loaded() {
		s.spawnItems()
	} else {
		s.log.Info("catalog not loaded yet, spawn deferred")
	}
}

func (s *Session) spawnItems() {
	if s.state != StatePlaying || !s.catalog.Loaded() {
		return
	}
	if s.spawner.HasSpawned() {
		return
	}
	placed := s.spawner.Spawn(s.catalog.Items(), s.anchor, s.playerFwd)
	s.log.Info("items spawned", "placed", len(placed), "requested", s.catalog.Total())
}

func (s *Session) completeItem(item *Item) {
	s.catalog.MarkCollected(item.ID)
	s.spawner.Remove(item.ID)

	teamID := s.teamID
	if teamID == "" || s.globalEnded {
		return
	}
	go func() {
		rec, err := s.ledger.IncrementCollected(s.ctx, teamID)
		s.loop.Post(func() {
			if err != nil {
				s.log.Error("ledger increment failed", "team", teamID, "error", err)
				return
			}
			s.log.Debug("team count updated", "team", rec.ID, "collected", rec.Collected)
		})
	}()
}

func (s *Session) enterEnded() {
	s.interaction.Cancel()
	s.interactionEnabled = false
	s.reset()
}

// reset is the Ended to Idle transition: everything local is cleared, then
// the tracker is queried so a marker that never left view re-raises the
// found signal (edge-triggered trackers will not fire it again on their
// own).
func (s *Session) reset() {
	s.playRequested = false
	s.trackingStable = false
	s.teamID = ""
	s.teamName = ""
	s.teamPending = false
	s.stopTeamTimer()

	s.spawner.Reset()
	s.catalog.Reset()
	s.geo.Reset()

	s.roomID = ""
	s.cfg = RoomConfig{}
	s.cfgReady = false

	s.trackingEnabled = true
	s.setState(StateIdle)
	s.log.Info("session reset complete")

	if target, pos, ok := s.track.CurrentlyTracked(); ok {
		s.log.Info("marker still in view after reset, re-raising found signal", "target", target)
		s.HandleTrackingFound(target, pos)
	}
}

func (s *Session) loadRoomConfig(roomID string) {
	s.cfgLoading = true
	s.log.Info("loading room config", "room", roomID)

	go func() {
		cfg, err := s.config.RoomConfig(s.ctx, roomID)
		s.loop.Post(func() { s.onConfigLoaded(cfg, err) })
	}()
}

func (s *Session) onConfigLoaded(cfg RoomConfig, err error) {
	s.cfgLoading = false
	if err != nil {
		// Fail open: the game must be playable without connectivity to
		// the config source.
		s.log.Error("room config fetch failed, applying safe defaults", "error", err)
		cfg = SafeDefaults()
	}

	s.cfg = cfg
	s.cfgReady = true
	s.spawner.ApplyConfig(cfg)
	s.discovery.ApplyConfig(cfg)
	s.log.Info("room config ready", "room", s.roomID, "items", cfg.ItemCount)

	if s.playRequested && s.state == StateScanned {
		s.setState(StateReadyToPlay)
	}

	s.loadItems()
}

func (s *Session) loadItems() {
	if s.catalog.Loaded() && s.state == StatePlaying {
		// A mid-game marker re-scan must not wipe player progress.
		s.log.Info("game running, ignoring item reload request")
		return
	}
	if s.itemsLoading {
		return
	}
	s.itemsLoading = true

	go func() {
		defs, err := s.items.Items(s.ctx)
		s.loop.Post(func() { s.onItemsLoaded(defs, err) })
	}()
}

func (s *Session) onItemsLoaded(defs []ItemDef, err error) {
	s.itemsLoading = false
	if err != nil {
		s.log.Error("item catalog load failed", "error", err)
		s.events.CatalogLoadFailed(err.Error())
		return
	}

	s.catalog.SetItems(defs)

	// Whichever of catalog load and Playing entry completes last performs
	// the spawn.
	if s.state == StatePlaying {
		s.spawnItems()
	}
}

func (s *Session) onWinner(ev WinnerEvent) {
	if !ev.Found {
		if s.globalEnded {
			s.globalEnded = false
			s.log.Info("ledger cleared, team creation re-enabled")
		}
		return
	}

	s.globalEnded = true
	s.log.Info("global winner detected", "team", ev.TeamID, "name", ev.TeamName)

	if s.state == StatePlaying {
		won := s.teamID != "" && ev.TeamID == s.teamID
		s.events.GameEnded(ev.TeamID, won)
		s.setState(StateEnded)
	}
}
