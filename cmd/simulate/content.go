package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/content"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

func newContentCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect and validate content records",
	}
	cmd.AddCommand(newContentListCmd(opts), newContentCheckCmd())
	return cmd
}

func newContentListCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List actions and combatants in the loaded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.contentPath
			if path == "" {
				path = os.Getenv("CONTENT_PATH")
			}
			catalog, err := loadCatalog(path)
			if err != nil {
				return err
			}
			return listCatalog(catalog, cmd.OutOrStdout())
		},
	}
}

func newContentCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file-or-dir>...",
		Short: "Parse content files and report the first error in each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := checkPath(path); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s\n", path)
			}
			if failed > 0 {
				return errors.Newf(errors.CodeContent, "%d of %d paths failed", failed, len(args))
			}
			return nil
		},
	}
}

func checkPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		_, err = content.LoadDir(path)
	} else {
		_, err = content.LoadFile(path)
	}
	return err
}

func listCatalog(catalog *content.Catalog, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ACTION\tCLASS\tMIND\tCOOLDOWN\tPREVIEW")
	for _, def := range catalog.Actions() {
		base := actions.BaseOf(def)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", base.ID, actions.ClassOf(def), levels(base.MindCost), base.Cooldown, preview(def))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMBATANT\tTEAM\tHP\tAC\tACTIONS")
	for _, id := range catalog.CombatantIDs() {
		stats, err := catalog.Combatant(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", id, stats.Team, stats.HP, stats.AC, strings.Join(stats.Actions, ","))
	}
	return w.Flush()
}

func levels(costs []int) string {
	if len(costs) == 0 {
		return "-"
	}
	parts := make([]string, len(costs))
	for i, c := range costs {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, "/")
}

// preview shows the lowest level's range against a caster with zero stats
func preview(def actions.Definition) string {
	base := actions.BaseOf(def)
	level := 0
	if len(base.MindCost) > 0 {
		level = base.MindCost[0]
	}
	var expr *formula.Expression
	switch d := def.(type) {
	case *actions.SpellHeal:
		expr = d.HealRoll
	case *actions.SpellAttack:
		expr = d.Damage[0].Roll
	case *actions.WeaponAttack:
		expr = d.Damage[0].Roll
	default:
		return "-"
	}

	bindings := formula.Bindings{}
	for _, name := range expr.Variables() {
		bindings.Set(name, 0)
	}
	bindings.Set(formula.VarMind, level)

	lo, err := expr.Evaluate(bindings, nil, formula.WithMode(formula.ModeMinimum))
	if err != nil {
		return "-"
	}
	hi, err := expr.Evaluate(bindings, nil, formula.WithMode(formula.ModeMaximum))
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%d-%d", lo.Total, hi.Total)
}
