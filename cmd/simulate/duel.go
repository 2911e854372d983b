package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/narration"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

const defaultMaxRounds = 50

type duelOptions struct {
	party     string
	opponents string
	rounds    int
	name      string
}

func newDuelCmd(opts *appOptions) *cobra.Command {
	duel := &duelOptions{}

	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Play one encounter and narrate every turn",
		Example: `  simulate duel --party cleric,paladin --opponents goblin_shaman,orc_warrior
  simulate duel --seed 7 --rounds 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			return runDuel(ctx, a, duel, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&duel.party, "party", "cleric,paladin,wizard", "party combatant IDs")
	flags.StringVar(&duel.opponents, "opponents", "goblin_shaman,orc_warrior,orc_warrior", "opponent combatant IDs")
	flags.IntVar(&duel.rounds, "rounds", defaultMaxRounds, "stop after this many rounds (0 for no limit)")
	flags.StringVar(&duel.name, "name", "", "encounter ID and journal key (default duel-<seed>)")
	return cmd
}

func runDuel(ctx context.Context, a *app, opts *duelOptions, out io.Writer) error {
	party, err := parseIDs("party", opts.party)
	if err != nil {
		return err
	}
	opponents, err := parseIDs("opponents", opts.opponents)
	if err != nil {
		return err
	}

	name := opts.name
	if name == "" {
		name = fmt.Sprintf("duel-%d", a.seed)
	}

	bus := events.NewBus(&events.BusConfig{Logger: a.logger})
	log := narration.NewLog(0)
	bus.Subscribe(events.EventTypeTurnCompleted, &events.ListenerFunc{
		Name:  "narration",
		Order: events.PriorityNarration,
		Handle: func(e events.Event) error {
			report := e.(*encounter.TurnCompletedEvent).Report
			lines := narration.Turn(report)
			log.Add(report.Round, lines...)
			for _, line := range lines {
				if _, err := fmt.Fprintf(out, "Round %d: %s\n", report.Round, line); err != nil {
					return err
				}
			}
			return nil
		},
	})

	enc, err := buildEncounter(a.catalog, &fight{
		name: name,
		seed: a.seed,
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

	a.logger.Info("starting duel", zap.Int64("seed", a.seed), zap.Strings("party", party), zap.Strings("opponents", opponents))

	if _, err := enc.Run(ctx, encounter.NewSimpleDecider(enc.Registry()), opts.rounds); err != nil {
		a.logger.Error("duel aborted", zap.Strings("last_entries", log.Entries()), zap.Error(err))
		return err
	}

	winner, over := enc.Winner()
	fmt.Fprintln(out, narration.Result(winner, over))

	journaled, err := a.journal.List(ctx, enc.ID)
	if err != nil {
		a.logger.Warn("reading journal", zap.Error(err))
		return nil
	}
	fmt.Fprintf(out, "%d actions journaled under %s (seed %d)\n", len(journaled), enc.ID, a.seed)
	return nil
}
