package optimizer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"qbopt/db/models"
	"qbopt/qbt"
)

// Client is the slice of the qBittorrent Web API the engine drives.
type Client interface {
	Torrents() ([]qbt.Torrent, error)
	Files(hash string) ([]qbt.File, error)
	SetFilePriority(hash string, index int, prio qbt.Priority) error
	Pause(hash string) error
	Resume(hash string) error
	Delete(hash string, keepFiles bool) error
	Shutdown() error
}

// Journal receives a record of every action the engine issues. Journal
// failures must never influence scheduling, so it has no error return.
type Journal interface {
	Record(kind, hash, torrent, detail string)
}

type Options struct {
	PollInterval time.Duration
	StallWait    time.Duration
	StartWait    time.Duration
	ShutdownWait time.Duration
}

const (
	// startPollEvery keeps the startup countdown responsive.
	startPollEvery = 2 * time.Second
	// restartGrace is the pause/resume gap during a forced restart.
	restartGrace = 2 * time.Second
)

// Optimizer runs the poll loop: snapshot the client, decide, act. One
// tick completes fully before the next starts, so the state map needs
// no locking.
type Optimizer struct {
	client  Client
	journal Journal
	opts    Options
	states  stateMap
	stall   *StallMonitor

	// KeepMonitoring delivers the operator's "keep going" signal during
	// the termination window. A closed or nil channel means shut down.
	KeepMonitoring <-chan struct{}

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
	grace time.Duration
}

func New(client Client, journal Journal, opts Options) *Optimizer {
	return &Optimizer{
		client:  client,
		journal: journal,
		opts:    opts,
		states:  make(stateMap),
		stall:   NewStallMonitor(opts.StallWait),
		now:     time.Now,
		sleep:   sleepCtx,
		grace:   restartGrace,
	}
}

// Run drives the whole job: wait for activity, tick until everything is
// done, then shut the application down. It returns ctx.Err() when
// cancelled, nil otherwise.
func (o *Optimizer) Run(ctx context.Context) error {
	active := o.waitForActivity(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !active {
		o.shutdown("no torrent activity during the startup window")
		return nil
	}
	log.Info().Msg("Torrent activity detected. Proceeding...")
	return o.loop(ctx)
}

// waitForActivity blocks until some torrent needs managing or the
// startup window expires, re-checking every few seconds.
func (o *Optimizer) waitForActivity(ctx context.Context) bool {
	if !o.inactive() {
		return true
	}
	deadline := o.now().Add(o.opts.StartWait)
	log.Info().Msgf("No active torrents detected. Exiting in %s if no activity occurs", o.opts.StartWait)
	for {
		remaining := deadline.Sub(o.now())
		if remaining <= 0 {
			log.Info().Msg("No active torrents during the startup wait")
			return false
		}
		step := startPollEvery
		if remaining < step {
			step = remaining
		}
		if !o.sleep(ctx, step) {
			return false
		}
		if !o.inactive() {
			return true
		}
		remaining = deadline.Sub(o.now())
		log.Info().Msgf("Exiting in %02d:%02d if no activity occurs",
			int(remaining/time.Minute), int(remaining/time.Second)%60)
	}
}

func (o *Optimizer) loop(ctx context.Context) error {
	for {
		torrents, err := o.client.Torrents()
		if err != nil {
			log.Error().Err(err).Msg("Failed to list torrents")
		}
		for _, t := range torrents {
			o.tickTorrent(t)
		}

		if o.inactive() {
			if !o.awaitKeepMonitoring(ctx) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.shutdown("all downloads complete")
				return nil
			}
			log.Info().Msg("Continuing to monitor at operator request")
		}

		if !o.sleep(ctx, o.opts.PollInterval) {
			return ctx.Err()
		}
	}
}

// tickTorrent runs one torrent through the decision order: removal
// check first (it short-circuits the rest), then the priority plan,
// then the stall monitor.
func (o *Optimizer) tickTorrent(t qbt.Torrent) {
	st := o.states.get(t.Hash)
	if st.removed {
		return
	}
	if t.State.IsFetchingMetadata() {
		log.Info().Str("torrent", t.Name).Msg("Skipping torrent, metadata still downloading")
		return
	}
	files, err := o.client.Files(t.Hash)
	if err != nil {
		log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to list files")
		return
	}

	if allComplete(files) {
		o.removeCompleted(t, st)
		return
	}

	o.applyPriorities(t, st, files)

	wasWatching := !st.stalledSince.IsZero()
	if o.stall.Observe(st, t.State.IsStalled()) {
		o.restart(t)
	} else if t.State.IsStalled() && !wasWatching {
		log.Info().Str("torrent", t.Name).Msg("Torrent is stalled. Monitoring...")
	}
}

func (o *Optimizer) applyPriorities(t qbt.Torrent, st *torrentState, files []qbt.File) {
	for _, ch := range PlanPriorities(st, files) {
		if err := o.client.SetFilePriority(t.Hash, ch.Index, ch.Priority); err != nil {
			log.Error().Err(err).Str("torrent", t.Name).Str("file", ch.Name).
				Msg("Failed to set file priority")
			continue
		}
		switch {
		case ch.Promote:
			st.active = ch.Index
			st.hasActive = true
			log.Info().Str("torrent", t.Name).Str("file", ch.Name).Msg("Promoting episode")
			o.record(models.ActionPromote, t.Hash, t.Name, ch.Name)
		case ch.Priority == qbt.PrioSkip:
			log.Info().Str("file", ch.Name).Msg("Marking completed file as do-not-download")
			o.record(models.ActionSkip, t.Hash, t.Name, ch.Name)
		default:
			log.Debug().Str("file", ch.Name).Msg("Demoting file to normal priority")
		}
	}
}

func (o *Optimizer) removeCompleted(t qbt.Torrent, st *torrentState) {
	log.Info().Str("torrent", t.Name).Msg("All files completed. Removing torrent (keeping files)")
	if err := o.client.Delete(t.Hash, true); err != nil {
		log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to remove torrent")
		return
	}
	st.removed = true
	o.record(models.ActionRemove, t.Hash, t.Name, "")
}

// restart kicks a stalled torrent with a pause/resume cycle. The stall
// clock has already been reset, so a failure here is retried one full
// threshold window later rather than every tick.
func (o *Optimizer) restart(t qbt.Torrent) {
	log.Info().Str("torrent", t.Name).Msg("Forcing restart of stalled torrent")
	if err := o.client.Pause(t.Hash); err != nil {
		log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to pause stalled torrent")
		return
	}
	time.Sleep(o.grace)
	if err := o.client.Resume(t.Hash); err != nil {
		log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to resume stalled torrent")
		return
	}
	o.record(models.ActionRestart, t.Hash, t.Name, "")
}

// inactive reports whether nothing is left to manage. When every torrent
// is only seeding, their files are marked do-not-download and the
// torrents removed (keeping data) as a batch first.
func (o *Optimizer) inactive() bool {
	torrents, err := o.client.Torrents()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list torrents")
		return false
	}
	if len(torrents) == 0 {
		return true
	}
	if allSeeding(torrents) {
		o.closeSeeding(torrents)
		return true
	}
	for _, t := range torrents {
		if t.State.IsActive() {
			return false
		}
		files, err := o.client.Files(t.Hash)
		if err != nil {
			log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to list files")
			continue
		}
		for _, f := range files {
			if !f.Complete() {
				return false
			}
		}
	}
	return true
}

func (o *Optimizer) closeSeeding(torrents []qbt.Torrent) {
	log.Info().Msg("All torrents are seeding. Marking files as do-not-download and removing torrents (files kept)")
	for _, t := range torrents {
		st := o.states.get(t.Hash)
		if st.removed {
			continue
		}
		files, err := o.client.Files(t.Hash)
		if err != nil {
			log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to list files")
			continue
		}
		for _, f := range files {
			if f.Priority == qbt.PrioSkip {
				continue
			}
			if err := o.client.SetFilePriority(t.Hash, f.Index, qbt.PrioSkip); err != nil {
				log.Error().Err(err).Str("file", f.Name).Msg("Failed to set file priority")
			}
		}
		if err := o.client.Delete(t.Hash, true); err != nil {
			log.Error().Err(err).Str("torrent", t.Name).Msg("Failed to remove torrent")
			continue
		}
		st.removed = true
		log.Info().Str("torrent", t.Name).Msg("Closed torrent (files kept)")
		o.record(models.ActionRemove, t.Hash, t.Name, "seeding")
	}
}

// awaitKeepMonitoring runs the bounded termination wait: whichever of
// the operator signal, the timeout, or cancellation comes first wins.
// It returns true only when the operator asked to keep monitoring.
func (o *Optimizer) awaitKeepMonitoring(ctx context.Context) bool {
	if o.opts.ShutdownWait <= 0 {
		return false
	}
	log.Info().Msgf("All downloads complete. Send a line within %s to keep monitoring", o.opts.ShutdownWait)
	timer := time.NewTimer(o.opts.ShutdownWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	case _, ok := <-o.KeepMonitoring:
		return ok
	}
}

func (o *Optimizer) shutdown(reason string) {
	log.Info().Str("reason", reason).Msg("Shutting down qBittorrent")
	if err := o.client.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Failed to shut down qBittorrent")
		return
	}
	o.record(models.ActionShutdown, "", "", reason)
}

func (o *Optimizer) record(kind, hash, torrent, detail string) {
	if o.journal == nil {
		return
	}
	o.journal.Record(kind, hash, torrent, detail)
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
