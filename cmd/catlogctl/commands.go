package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/propconfig"
)

type globalOptions struct {
	verbose  bool
	rollback bool
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "catlogctl",
		Short:         "Check and exercise catlog configuration files",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log configuration steps to stderr")
	root.PersistentFlags().BoolVar(&g.rollback, "rollback", false, "restore the previous configuration when a pass fails")

	root.AddCommand(
		newCheckCommand(g),
		newTreeCommand(g),
		newEmitCommand(g),
		newWatchCommand(g),
		newTypesCommand(),
	)
	return root
}

func (g *globalOptions) configurator(cmd *cobra.Command, h *catlog.Hierarchy, extra ...propconfig.Option) *propconfig.Configurator {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts := []propconfig.Option{propconfig.WithLogger(log)}
	if g.rollback {
		opts = append(opts, propconfig.WithRollback())
	}
	return propconfig.New(h, append(opts, extra...)...)
}

func newCheckCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Apply a configuration to an empty hierarchy and report the result",
		Long: "check runs a full configuration pass against a private hierarchy. " +
			"Appenders are really created, so file appenders create their files.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := catlog.NewHierarchy()
			c := g.configurator(cmd, h)
			if err := c.ConfigureFile(args[0]); err != nil {
				c.Close()
				return err
			}
			defer c.Close()

			apps := c.Appenders()
			names := make([]string, 0, len(apps))
			for n := range apps {
				names = append(names, n)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok, %d appenders, %d categories\n", args[0], len(apps), len(h.Categories()))
			for _, n := range names {
				fmt.Fprintf(out, "  %s\t%T\n", n, apps[n])
			}
			return nil
		},
	}
}

func newTreeCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the category tree a configuration produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := catlog.NewHierarchy()
			c := g.configurator(cmd, h)
			defer c.Close()
			if err := c.ConfigureFile(args[0]); err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func printTree(w io.Writer, h *catlog.Hierarchy) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPRIORITY\tADDITIVE\tAPPENDERS")
	for _, c := range h.Categories() {
		prio := c.Priority().String()
		if c.Priority() == catlog.PriorityNotSet {
			prio = fmt.Sprintf("(%s)", c.ChainedPriority())
		}
		var names []string
		for _, a := range c.Appenders() {
			names = append(names, a.Name())
		}
		indent := strings.Repeat("  ", strings.Count(c.Name(), "."))
		if !c.IsRoot() {
			indent += "  "
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%t\t%s\n", indent, c, prio, c.Additivity(), strings.Join(names, ","))
	}
	tw.Flush()
}

func newEmitCommand(g *globalOptions) *cobra.Command {
	var category, priority string
	cmd := &cobra.Command{
		Use:   "emit FILE MESSAGE...",
		Short: "Configure from FILE and log one message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := catlog.ParsePriority(priority)
			if err != nil {
				return err
			}
			h := catlog.NewHierarchy()
			c := g.configurator(cmd, h)
			if err := c.ConfigureFile(args[0]); err != nil {
				c.Close()
				return err
			}
			h.GetInstance(category).Log(p, strings.Join(args[1:], " "))
			return c.Close()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to log to (default root)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "INFO", "priority of the message")
	return cmd
}

func newWatchCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Configure from FILE and reconfigure whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			h := catlog.NewHierarchy()
			c := g.configurator(cmd, h, propconfig.WithOnReload(func(err error) {
				if err != nil {
					fmt.Fprintf(out, "reload failed: %v\n", err)
					return
				}
				fmt.Fprintln(out, "reloaded")
				printTree(out, h)
			}))
			defer h.Shutdown()

			return c.Watch(ctx, args[0])
		},
	}
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered appender and layout types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "appenders:")
			for _, t := range propconfig.AppenderTypes() {
				fmt.Fprintf(out, "  %s\n", t)
			}
			fmt.Fprintln(out, "layouts:")
			for _, t := range propconfig.LayoutTypes() {
				fmt.Fprintf(out, "  %s\n", t)
			}
		},
	}
}
