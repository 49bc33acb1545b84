package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
)

func (c *cli) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the research session over a local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := notifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			if port == "" {
				port = c.cfg.ListenPort
			}
			addr := ":" + port
			c.logger.Info("research API starting",
				zap.String("addr", addr),
				zap.String("service_url", c.cfg.ServiceURL),
				zap.String("runner", c.cfg.Runner),
			)
			if err := newServer(a).Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default LISTEN_PORT)")
	return cmd
}

func (c *cli) askCmd() *cobra.Command {
	var (
		mode    string
		breadth int
		depth   int
		answers []string
		raw     bool
	)
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Run one research cycle without the interactive UI",
		Long: `Run one research cycle and print the report.

Follow-up questions are answered in order with repeated --answer flags.
Questions left without an answer are sent as "No answer provided".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := notifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			if mode == "" {
				mode = c.cfg.DefaultMode
			}
			req := research.NewRequest(strings.Join(args, " "), research.ParseMode(mode))
			if cmd.Flags().Changed("breadth") {
				req.Breadth = breadth
			}
			if cmd.Flags().Changed("depth") {
				req.Depth = depth
			}

			snap, err := a.orch.Submit(ctx, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if snap.Phase == session.PhaseAwaitingFollowup {
				snap, err = a.orch.SubmitAnswers(ctx, answers)
				if err != nil {
					return err
				}
				for _, pair := range snap.Answers {
					fmt.Fprintf(out, "Q: %s\nA: %s\n", pair.Question, pair.Answer)
				}
				fmt.Fprintln(out)
			}
			if snap.Outcome.Failed() {
				return errors.New(snap.Outcome.Error)
			}
			return printReport(out, snap.Display, raw)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "research mode: fast, balanced or comprehensive (default DEFAULT_MODE)")
	cmd.Flags().IntVar(&breadth, "breadth", 0, "override the mode's breadth")
	cmd.Flags().IntVar(&depth, "depth", 0, "override the mode's depth")
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer to the next follow-up question (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the report without markdown rendering")
	return cmd
}

func printReport(out io.Writer, report string, raw bool) error {
	if raw {
		_, err := fmt.Fprintln(out, report)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(report)
	if err != nil {
		_, err = fmt.Fprintln(out, report)
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func (c *cli) modesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List research modes and their breadth/depth defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, info := range research.Modes() {
				fmt.Fprintf(out, "%s - %s\n", info.Mode, info.Label)
				fmt.Fprintf(out, "  %s\n", info.Description)
				fmt.Fprintf(out, "  breadth %d (max %d), depth %d (max %d)\n",
					info.DefaultBreadth, info.MaxBreadth, info.DefaultDepth, info.MaxDepth)
				for _, detail := range info.Details {
					fmt.Fprintf(out, "  - %s\n", detail)
				}
			}
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed research cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit == 0 {
				limit = c.cfg.HistoryLimit
			}
			if limit < 0 {
				return fmt.Errorf("limit must be zero or greater")
			}
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.store.ListRecords(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No research history.")
				return nil
			}
			for _, record := range records {
				fmt.Fprintf(out, "%s  %s  %-13s %s\n", record.ID, record.CreatedAt, record.Mode, record.Query)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum records to list (default HISTORY_LIMIT)")
	cmd.AddCommand(c.historyShowCmd(), c.historyDeleteCmd())
	return cmd
}

func (c *cli) historyShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored research report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			record, err := a.store.GetRecord(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get history record: %w", err)
			}
			if record == nil {
				return fmt.Errorf("history record %s not found", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, breadth %d, depth %d)\n", record.Query, record.Mode, record.Breadth, record.Depth)
			for _, pair := range record.Answers {
				fmt.Fprintf(out, "Q: %s\nA: %s\n", pair.Question, pair.Answer)
			}
			fmt.Fprintln(out)
			return printReport(out, record.Result, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the report without markdown rendering")
	return cmd
}

func (c *cli) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored research report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.DeleteRecord(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete history record: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
