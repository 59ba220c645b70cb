package cli

import (
	"fmt"
	"slices"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/io"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// eventsCommand creates the events command with its subcommands.
func (c *CLI) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"ev"},
		Short:   "Edit the events of a timeline document",
	}

	cmd.AddCommand(c.eventsAddCommand())
	cmd.AddCommand(c.eventsListCommand())
	cmd.AddCommand(c.eventsDeleteCommand())
	cmd.AddCommand(c.eventsClearCommand())

	return cmd
}

// =============================================================================
// add
// =============================================================================

type addOpts struct {
	title string
	place string
	start string
	end   string
}

func (c *CLI) eventsAddCommand() *cobra.Command {
	var opts addOpts

	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Append an event, creating the document if needed",
		Example: `  storyline events add day.toml --title Breakfast --place Home \
      --start "2024-05-01 08:00" --end "2024-05-01 09:00"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, n, err := addEvent(args[0], opts)
			if err != nil {
				return err
			}
			printSuccess("Added %s at %s", StyleValue.Render(e.Title), e.Place)
			printDetail("%s  %s", formatSpan(e), fmt.Sprintf("(%d events)", n))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "event title (required)")
	cmd.Flags().StringVar(&opts.place, "place", "", "event place (required)")
	cmd.Flags().StringVar(&opts.start, "start", "", "start time, e.g. 2024-05-01T08:00 (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "end time (required)")
	for _, name := range []string{"title", "place", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// addEvent validates the event, appends it to the document at path and
// saves. It returns the event and the new event count.
func addEvent(path string, opts addOpts) (timeline.Event, int, error) {
	start, err := timeline.ParseTime("start", opts.start)
	if err != nil {
		return timeline.Event{}, 0, err
	}
	end, err := timeline.ParseTime("end", opts.end)
	if err != nil {
		return timeline.Event{}, 0, err
	}
	e := timeline.NewEvent(opts.title, opts.place, start, end)
	if err := e.Validate(); err != nil {
		return timeline.Event{}, 0, err
	}

	doc, err := io.LoadOrNew(path)
	if err != nil {
		return timeline.Event{}, 0, err
	}
	table := doc.Table()
	e = table.Add(e)
	doc.SetEvents(table.Events())
	if err := io.Save(path, doc); err != nil {
		return timeline.Event{}, 0, err
	}
	return e, table.Len(), nil
}

// =============================================================================
// list
// =============================================================================

func (c *CLI) eventsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "list [file]",
		Aliases:           []string{"ls"},
		Short:             "List the events of a document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := io.Load(args[0])
			if err != nil {
				return err
			}
			events := doc.Table().Events()
			if len(events) == 0 {
				printWarning("%s", timeline.EmptyInputMessage)
				return nil
			}
			fmt.Println(renderTable([]string{"#", "Title", "Place", "Start", "End"}, eventRows(events)))
			return nil
		},
	}
}

func eventRows(events []timeline.Event) [][]string {
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Title,
			e.Place,
			e.Start.Format(timeLayout),
			e.End.Format(timeLayout),
		}
	}
	return rows
}

const timeLayout = "2006-01-02 15:04"

func formatSpan(e timeline.Event) string {
	return e.Start.Format(timeLayout) + " → " + e.End.Format(timeLayout)
}

// =============================================================================
// delete
// =============================================================================

func (c *CLI) eventsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [file] [index...]",
		Aliases: []string{"rm"},
		Short:   "Delete events by their 1-based list index",
		Long: `Delete events by the index shown by "events list".

Without indices an interactive picker is shown.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			indices, err := parseIndices(args[1:])
			if err != nil {
				return err
			}

			if len(indices) == 0 {
				doc, err := io.Load(path)
				if err != nil {
					return err
				}
				events := doc.Table().Events()
				if len(events) == 0 {
					printWarning("%s", timeline.EmptyInputMessage)
					return nil
				}
				picked, err := pickEvents(events)
				if err != nil {
					return err
				}
				if len(picked) == 0 {
					printInfo("Nothing deleted")
					return nil
				}
				indices = picked
			}

			deleted, err := deleteEvents(path, indices)
			if err != nil {
				return err
			}
			for _, e := range deleted {
				printSuccess("Deleted %s at %s", StyleValue.Render(e.Title), e.Place)
			}
			return nil
		},
	}
}

// parseIndices converts 1-based index arguments to 0-based positions.
func parseIndices(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "invalid event index %q", a)
		}
		out = append(out, n-1)
	}
	return out, nil
}

// pickEvents runs the interactive picker and returns the chosen positions.
func pickEvents(events []timeline.Event) ([]int, error) {
	final, err := tea.NewProgram(NewEventListModel(events)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(EventListModel)
	if !ok || !m.Confirmed {
		return nil, nil
	}
	return m.SelectedIndices(), nil
}

// deleteEvents removes the events at the 0-based positions and saves.
// Positions refer to the list before any deletion.
func deleteEvents(path string, indices []int) ([]timeline.Event, error) {
	doc, err := io.Load(path)
	if err != nil {
		return nil, err
	}
	table := doc.Table()

	order := slices.Clone(indices)
	slices.Sort(order)
	order = slices.Compact(order)
	slices.Reverse(order)

	var deleted []timeline.Event
	for _, i := range order {
		if i >= table.Len() {
			return nil, errs.New(errs.ErrCodeEventNotFound, "no event #%d (document has %d)", i+1, table.Len())
		}
		e, err := table.DeleteAt(i)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, e)
	}
	slices.Reverse(deleted)

	doc.SetEvents(table.Events())
	if err := io.Save(path, doc); err != nil {
		return nil, err
	}
	return deleted, nil
}

// =============================================================================
// clear
// =============================================================================

func (c *CLI) eventsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "clear [file]",
		Short:             "Remove every event from a document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := clearEvents(args[0])
			if err != nil {
				return err
			}
			printSuccess("Cleared %d events", n)
			return nil
		},
	}
}

func clearEvents(path string) (int, error) {
	doc, err := io.Load(path)
	if err != nil {
		return 0, err
	}
	n := len(doc.Events)
	doc.SetEvents(nil)
	if err := io.Save(path, doc); err != nil {
		return 0, err
	}
	return n, nil
}
