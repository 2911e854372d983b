package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/narration"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

type batchOptions struct {
	party       string
	opponents   string
	runs        int
	concurrency int
	rounds      int
}

// batchResult tallies independent encounters
type batchResult struct {
	mu      sync.Mutex
	wins    map[string]int
	rounds  int
	actions int
	deaths  int
}

func (r *batchResult) record(winner string, rounds, actions int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wins[winner]++
	r.rounds += rounds
	r.actions += actions
}

// HandleEvent counts deaths across every encounter of the batch
func (r *batchResult) HandleEvent(events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deaths++
	return nil
}

func (r *batchResult) Priority() int { return events.PriorityStats }
func (r *batchResult) ID() string    { return "batch-stats" }

func newBatchCmd(opts *appOptions) *cobra.Command {
	batch := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Play many independent encounters and report win rates",
		Long: `Each run gets its own encounter, effects registry and dice seeded from the
base seed plus the run number, so a batch is reproducible with --seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			return runBatch(ctx, a, batch, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&batch.party, "party", "cleric,paladin,wizard", "party combatant IDs")
	flags.StringVar(&batch.opponents, "opponents", "goblin_shaman,orc_warrior,orc_warrior", "opponent combatant IDs")
	flags.IntVar(&batch.runs, "runs", 100, "number of encounters")
	flags.IntVar(&batch.concurrency, "concurrency", 8, "encounters played at once")
	flags.IntVar(&batch.rounds, "rounds", defaultMaxRounds, "round limit per encounter (0 for no limit)")
	return cmd
}

func runBatch(ctx context.Context, a *app, opts *batchOptions, out io.Writer) error {
	party, err := parseIDs("party", opts.party)
	if err != nil {
		return err
	}
	opponents, err := parseIDs("opponents", opts.opponents)
	if err != nil {
		return err
	}
	if opts.runs <= 0 {
		return errors.InvalidArgumentf("--runs must be positive")
	}

	result := &batchResult{wins: make(map[string]int)}
	bus := events.NewBus(&events.BusConfig{Logger: a.logger})
	bus.Subscribe(events.EventTypeCombatantDied, result)

	g, ctx := errgroup.WithContext(ctx)
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}

	for i := 0; i < opts.runs; i++ {
		i := i // per-iteration copy; go.mod targets go 1.21
		g.Go(func() error {
			enc, err := buildEncounter(a.catalog, &fight{
				name: fmt.Sprintf("batch-%d-%d", a.seed, i),
				seed: a.seed + int64(i),
				sides: []roster{
					{team: targeting.TeamParty, ids: party},
					{team: targeting.TeamOpponents, ids: opponents},
				},
				journal: a.journal,
				events:  bus,
				logger:  a.logger,
			})
			if err != nil {
				return err
			}

			reports, err := enc.Run(ctx, encounter.NewSimpleDecider(enc.Registry()), opts.rounds)
			if err != nil {
				return errors.Wrapf(err, "run %d", i)
			}

			actions := 0
			for _, r := range reports {
				if r.Outcome != nil {
					actions++
				}
			}

			winner, over := enc.Winner()
			label := narration.Result(winner, over)
			result.record(label, enc.Round, actions)
			a.logger.Debug("batch run finished", zap.Int("run", i), zap.String("result", label))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	labels := make([]string, 0, len(result.wins))
	for label := range result.wins {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintf(out, "%d encounters (seed %d)\n", opts.runs, a.seed)
	for _, label := range labels {
		n := result.wins[label]
		fmt.Fprintf(out, "  %-28s %5d  %5.1f%%\n", label, n, 100*float64(n)/float64(opts.runs))
	}
	fmt.Fprintf(out, "  average rounds %.1f, actions %.1f, deaths %.1f\n",
		float64(result.rounds)/float64(opts.runs),
		float64(result.actions)/float64(opts.runs),
		float64(result.deaths)/float64(opts.runs))
	return nil
}
