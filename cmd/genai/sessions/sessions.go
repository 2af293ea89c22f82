// Package sessionscmder provides the sessions command for inspecting
// recorded streams.
package sessionscmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/cmd/genai/sqlitepath"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/pkg/utils"
	"github.com/papercomputeco/genai/recorder"
)

const sessionsLongDesc string = `Inspect streams recorded with "genai chat --record".

Every streamed response is stored as a session: an ordered list of the
payloads and errors observed while decoding the stream.

Examples:
  genai sessions list
  genai sessions show 0b5c7c1e-...
  genai sessions show 0b5c7c1e-... --raw > stream.txt
  genai sessions list --storage postgres --postgres postgres://localhost/genai`

const sessionsShortDesc string = "Inspect recorded streams"

// payloadWidth is how much of a payload "show" prints without --full.
const payloadWidth = 96

type sessionsCommander struct {
	storage  string
	sqlite   string
	postgres string

	full bool
	raw  bool
	json bool
}

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
	}

	flags := cmd.PersistentFlags()
	for key, target := range map[string]*string{
		config.FlagStorageDriver: &cmder.storage,
		config.FlagSQLite:        &cmder.sqlite,
		config.FlagPostgres:      &cmder.postgres,
	} {
		f := config.Flags[key]
		flags.StringVar(target, f.Name, "", f.Description)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.withDriver(cmd, cmder.runList)
		},
	}

	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the records of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withDriver(cmd, func(cmd *cobra.Command, d storage.Driver) error {
				return cmder.runShow(cmd, d, args[0])
			})
		},
	}
	show.Flags().BoolVar(&cmder.full, "full", false, "Print payloads without truncation")
	show.Flags().BoolVar(&cmder.raw, "raw", false, "Print only the payloads, one per line")
	show.Flags().BoolVar(&cmder.json, "json", false, "Print records as JSON lines")
	show.MarkFlagsMutuallyExclusive("raw", "json")

	cmd.AddCommand(list, show)
	return cmd
}

func (c *sessionsCommander) withDriver(cmd *cobra.Command, fn func(*cobra.Command, storage.Driver) error) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := cmdutil.NewLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	sc := cfg.Storage
	if c.storage != "" {
		sc.Driver = c.storage
	}
	if c.sqlite != "" {
		sc.SQLitePath = c.sqlite
	}
	if c.postgres != "" {
		sc.PostgresDSN = c.postgres
	}

	if sc.Driver == recorder.DriverSQLite || sc.Driver == "" {
		sc.SQLitePath, err = sqlitepath.ResolveSQLitePath(sc.SQLitePath)
		if err != nil {
			return err
		}
	}

	log.Debug("opening storage", "driver", sc.Driver, "sqlite_path", sc.SQLitePath)

	driver, err := recorder.OpenDriver(cmd.Context(), sc, "")
	if err != nil {
		return err
	}
	defer driver.Close()

	return fn(cmd, driver)
}

func (c *sessionsCommander) runList(cmd *cobra.Command, d storage.Driver) error {
	sessions, err := d.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmdutil.Printf(cmd, "  %s\n", cliui.DimStyle.Render("No recorded sessions."))
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.Provider,
			s.Model,
			strconv.Itoa(s.Records),
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			cliui.FormatDuration(s.LastAt.Sub(s.StartedAt)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SESSION", "PROVIDER", "MODEL", "RECORDS", "STARTED", "DURATION").
		Rows(rows...)

	cmdutil.Println(cmd, t.String())
	return nil
}

func (c *sessionsCommander) runShow(cmd *cobra.Command, d storage.Driver, id string) error {
	records, err := d.Records(cmd.Context(), id)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Errorf("no recorded session %q", id)
		}
		return fmt.Errorf("reading session: %w", err)
	}

	switch {
	case c.raw:
		for _, r := range records {
			if r.Kind == storage.KindEvent || r.Kind == storage.KindDecodeError {
				cmdutil.Println(cmd, r.Payload)
			}
		}
		return nil

	case c.json:
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	first := records[0]
	cmdutil.Printf(cmd, "\n  %s %s\n", cliui.KeyStyle.Render("Session:"), cliui.NameStyle.Render(first.SessionID))
	cmdutil.Printf(cmd, "  %s %s %s\n\n", cliui.KeyStyle.Render("Model:"),
		cliui.ValueStyle.Render(first.Model), cliui.DimStyle.Render("("+first.Provider+")"))

	for _, r := range records {
		text := r.Payload
		if r.Kind != storage.KindEvent {
			text = strings.TrimSpace(string(r.Kind) + ": " + r.Error + " " + r.Payload)
		}
		if !c.full {
			text = utils.Truncate(text, payloadWidth)
		}

		mark := cliui.SuccessMark
		if r.Kind != storage.KindEvent {
			mark = cliui.FailMark
			text = cliui.ErrorStyle.Render(text)
		}
		cmdutil.Printf(cmd, "  %s %s %s\n", mark, cliui.DimStyle.Render(fmt.Sprintf("%4d", r.Sequence)), text)
	}
	cmdutil.Println(cmd)
	return nil
}
