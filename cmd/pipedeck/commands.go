package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/config"
	"github.com/hylla/pipedeck/internal/domain"
	"github.com/hylla/pipedeck/internal/tui"
)

// errUnknownSearchTarget reports an unsupported search command target.
var errUnknownSearchTarget = errors.New("unknown search target")

// errConfigExists reports that init-config would overwrite a file.
var errConfigExists = errors.New("config file already exists")

// searchTargets lists the accepted search command targets in help order.
var searchTargets = []string{"contacts", "accounts", "conversations", "leads", "opportunities"}

// commandFlow wraps one CLI flow with runtime setup and start/complete logging.
func commandFlow(opts *rootOptions, stderr io.Writer, name string, fn func(context.Context, *runtime, io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		rt, err := setupRuntime(cmd.Context(), *opts, stderr, false)
		if err != nil {
			return err
		}
		defer rt.close(stderr)

		rt.logger.Info("command flow start", "command", name)
		if err := fn(cmd.Context(), rt, cmd.OutOrStdout()); err != nil {
			rt.logger.Error("command flow failed", "command", name, "err", err)
			return fmt.Errorf("run %s command: %w", name, err)
		}
		rt.logger.Info("command flow complete", "command", name)
		return nil
	}
}

// newPathsCommand prints resolved config and data locations.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", resolveConfigPath(*opts, paths))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "seed: %s\n", strings.Join(paths.SeedCandidates, ", "))
			_, _ = fmt.Fprintf(out, "export_dir: %s\n", paths.ExportDir)
			return nil
		},
	}
}

// newInitConfigCommand writes the default config to the resolved config path.
func newInitConfigCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default config file to the resolved config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			path := resolveConfigPath(*opts, paths)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("save config %q: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// newBoardCommand renders one board as a table.
func newBoardCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var minPriority string
	cmd := &cobra.Command{
		Use:       "board [leads|opportunities]",
		Short:     "Render a pipeline board as a table",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"leads", "opportunities"},
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := parseMinPriority(minPriority)
			if err != nil {
				return err
			}
			boardID := ""
			if len(args) > 0 {
				boardID = args[0]
			}
			return commandFlow(opts, stderr, "board", func(ctx context.Context, rt *runtime, out io.Writer) error {
				if boardID == "" {
					boardID = rt.svc.LeadsBoardID()
				}
				board, err := rt.svc.GetBoard(ctx, boardID)
				if err != nil {
					return err
				}
				_, err = lipgloss.Fprintln(out, renderBoardTable(board.WithMinPriority(floor)))
				return err
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&minPriority, "min-priority", "", "only show cards at or above this priority ("+priorityNames()+")")
	return cmd
}

// parseMinPriority validates the --min-priority flag. Blank keeps every card.
func parseMinPriority(raw string) (domain.Priority, error) {
	p := domain.NormalizePriority(domain.Priority(raw))
	if !domain.IsValidPriority(p) {
		return "", fmt.Errorf("%w: %q (want %s)", domain.ErrInvalidPriority, raw, priorityNames())
	}
	return p, nil
}

// priorityNames joins the supported priorities for help and error text.
func priorityNames() string {
	names := make([]string, 0, 3)
	for _, p := range domain.Priorities() {
		names = append(names, string(p))
	}
	return strings.Join(names, "|")
}

// newMoveCommand drags one item onto a column of the seeded board and reports the outcome.
func newMoveCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "move <board> <item-id> <target-column>",
		Short: "Drop an item onto a column and print the result",
		Long:  "move runs one drag and drop against the seeded board and prints the resulting board.\nNothing is persisted between runs.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, itemID, columnID := args[0], args[1], args[2]
			return commandFlow(opts, stderr, "move", func(ctx context.Context, rt *runtime, out io.Writer) error {
				if err := rt.svc.BeginDrag(ctx, boardID, itemID); err != nil {
					return err
				}
				result, err := rt.svc.DropOnColumn(ctx, boardID, columnID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, describeDrop(result))
				_, err = lipgloss.Fprintln(out, renderBoardTable(result.Board))
				return err
			})(cmd, args)
		},
	}
}

// describeDrop renders a one-line summary of a drop result.
func describeDrop(result app.DropResult) string {
	if !result.Outcome.Applied() {
		return "drop skipped: " + strings.ReplaceAll(string(result.Outcome), "_", " ")
	}
	item, _, _ := result.Board.Item(result.ItemID)
	return fmt.Sprintf("moved %q from %s to %s",
		item.Title,
		columnTitle(result.Board, result.SourceColumnID),
		columnTitle(result.Board, result.TargetColumnID),
	)
}

// columnTitle returns the title of a column, or its id when the board lacks it.
func columnTitle(board domain.Board, columnID string) string {
	for _, column := range board.Columns {
		if column.ID == columnID {
			return column.Title
		}
	}
	return columnID
}

// newSearchCommand runs one search over contacts, accounts, conversations or a board.
func newSearchCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:       "search <" + strings.Join(searchTargets, "|") + "> [query]",
		Short:     "Search CRM records",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: searchTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.ToLower(args[0])
			query := strings.Join(args[1:], " ")
			return commandFlow(opts, stderr, "search", func(ctx context.Context, rt *runtime, out io.Writer) error {
				rendered, err := runSearch(ctx, rt.svc, target, query)
				if err != nil {
					return err
				}
				_, err = lipgloss.Fprintln(out, rendered)
				return err
			})(cmd, args)
		},
	}
}

// runSearch renders the matches of query for target as a table.
func runSearch(ctx context.Context, svc *app.Service, target, query string) (string, error) {
	switch target {
	case "contacts", "conversations":
		search := svc.SearchContacts
		if target == "conversations" {
			search = svc.SearchConversationContacts
		}
		contacts, err := search(ctx, query)
		if err != nil {
			return "", err
		}
		rows := make([][]string, 0, len(contacts))
		for _, c := range contacts {
			rows = append(rows, []string{c.ID, c.Name, c.Company, c.Email, string(c.Status)})
		}
		return renderTable([]string{"ID", "Name", "Company", "Email", "Status"}, rows), nil
	case "accounts":
		accounts, err := svc.SearchAccounts(ctx, query)
		if err != nil {
			return "", err
		}
		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, []string{a.ID, a.Name, a.Industry, string(a.Tier), a.Revenue})
		}
		return renderTable([]string{"ID", "Name", "Industry", "Tier", "Revenue"}, rows), nil
	case "leads", "opportunities":
		boardID := svc.LeadsBoardID()
		if target == "opportunities" {
			boardID = svc.OpportunitiesBoardID()
		}
		matches, err := svc.SearchItems(ctx, boardID, query)
		if err != nil {
			return "", err
		}
		rows := make([][]string, 0, len(matches))
		for _, match := range matches {
			rows = append(rows, []string{match.Item.ID, match.Item.Title, match.ColumnTitle, match.Item.Value, strings.Join(match.Item.Tags, ", ")})
		}
		return renderTable([]string{"ID", "Title", "Stage", "Value", "Tags"}, rows), nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %s)", errUnknownSearchTarget, target, strings.Join(searchTargets, ", "))
	}
}

// newExportCommand writes a snapshot of the seeded state as JSON or YAML.
func newExportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		format  string
		outPath string
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the seeded state as JSON or YAML",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().BoolVar(&save, "save", false, "write a timestamped file into the export dir instead of --out")
	cmd.MarkFlagsMutuallyExclusive("out", "save")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return commandFlow(opts, stderr, "export", func(ctx context.Context, rt *runtime, out io.Writer) error {
			target := outPath
			if save {
				target = rt.paths.ExportFile(format, time.Now())
			}
			if err := runExport(ctx, rt.svc, format, target, out); err != nil {
				return err
			}
			if save {
				_, _ = fmt.Fprintf(out, "wrote %s\n", target)
			}
			return nil
		})(c, args)
	}
	return cmd
}

// runExport encodes a snapshot and writes it to outPath or stdout.
func runExport(ctx context.Context, svc *app.Service, format, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	var encoded []byte
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		encoded, err = snap.MarshalJSONIndent()
		if err != nil {
			return fmt.Errorf("encode snapshot json: %w", err)
		}
		encoded = append(encoded, '\n')
	case "yaml", "yml":
		encoded, err = yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// newColorsCommand previews the column color palette.
func newColorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "Preview the column color palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(tui.Palette()))
			for _, entry := range tui.Palette() {
				swatch := lipgloss.NewStyle().
					Background(lipgloss.Color(entry.Hex)).
					Foreground(lipgloss.Color("#ffffff")).
					Padding(0, 1).
					Render(entry.Name)
				rows = append(rows, []string{swatch, entry.Name, entry.Hex})
			}
			_, err := lipgloss.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Swatch", "Name", "Hex"}, rows))
			return err
		},
	}
}

// renderBoardTable renders a board with one table column per board column.
func renderBoardTable(board domain.Board) string {
	headers := make([]string, 0, len(board.Columns))
	depth := 0
	for _, column := range board.Columns {
		headers = append(headers, column.Title+" ("+strconv.Itoa(len(column.Items))+")")
		depth = max(depth, len(column.Items))
	}
	rows := make([][]string, depth)
	for r := range rows {
		rows[r] = make([]string, len(board.Columns))
		for c, column := range board.Columns {
			if r >= len(column.Items) {
				continue
			}
			item := column.Items[r]
			cell := item.Title
			if item.Value != "" {
				cell += "\n" + item.Value
			}
			rows[r][c] = cell
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("239"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col < len(board.Columns) {
					return headerStyle.Foreground(tui.ColumnColor(board.Columns[col].Color))
				}
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1).Width(26)
		})
	return lipgloss.NewStyle().Bold(true).Render(board.Title) + "\n" + t.String()
}

// renderTable renders a plain bordered table with a bold header row.
func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "no matches"
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("239"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}
