package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"moviesalon/backend/internal/app"
	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/session"
	"moviesalon/backend/pkg/logger"
)

type runOptions struct {
	characters string
	genres     string
	seen       string
	note       string
	topic      string
	maxTurns   int
	jsonOutput bool
}

func newRunCmd(profilesPath *string) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one discussion and print it",
		Long: `Runs a full discussion. The first character moderates, the rest are guests.

Example:
  salon run --characters "司会,ルフィ,ナルト" --genres "SF,アクション" --seen "インセプション"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscussion(cmd, *profilesPath, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.characters, "characters", "c", "", "comma separated character names, moderator first")
	cmd.Flags().StringVarP(&opts.genres, "genres", "g", "", "comma separated favourite genres")
	cmd.Flags().StringVarP(&opts.seen, "seen", "s", "", "recently watched movies")
	cmd.Flags().StringVarP(&opts.note, "note", "n", "", "free-form note from the user")
	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "discussion topic")
	cmd.Flags().IntVar(&opts.maxTurns, "max-turns", 0, "turn ceiling (overrides MAX_TURNS)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print one JSON frame per line")
	_ = cmd.MarkFlagRequired("characters")

	return cmd
}

func runDiscussion(cmd *cobra.Command, profilesPath string, opts *runOptions) error {
	cfg, err := loadConfig(profilesPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if opts.maxTurns > 0 {
		cfg.MaxTurns = opts.maxTurns
	}

	salon, err := app.New(cfg)
	if err != nil {
		return err
	}

	params := session.Params{
		Topic:        opts.topic,
		UserNote:     opts.note,
		Genres:       session.ParseGenres(opts.genres),
		SeenItems:    opts.seen,
		Participants: session.ParseParticipants(opts.characters),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var emit session.Emitter = newPrinter(cmd.OutOrStdout())
	if opts.jsonOutput {
		emit = newJSONPrinter(cmd.OutOrStdout())
	}
	return salon.Streamer.Stream(ctx, params, emit)
}

// printer renders frames for a terminal
type printer struct {
	out     io.Writer
	speaker *color.Color
	summary *color.Color
	failure *color.Color
	done    *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:     out,
		speaker: color.New(color.FgCyan, color.Bold),
		summary: color.New(color.Faint),
		failure: color.New(color.FgRed),
		done:    color.New(color.FgGreen),
	}
}

func (p *printer) Emit(event string, data interface{}) error {
	var err error
	switch event {
	case constants.StreamMessageEvent:
		msg, ok := data.(session.Message)
		if !ok {
			return fmt.Errorf("unexpected message payload %T", data)
		}
		speaker := "?"
		if msg.LastSpeaker != nil {
			speaker = *msg.LastSpeaker
		}
		if msg.IsSummary {
			_, err = p.summary.Fprintf(p.out, "  (要約) %s：%s\n\n", speaker, msg.Text)
		} else {
			_, err = fmt.Fprintf(p.out, "%s\n%s\n\n", p.speaker.Sprint(speaker), msg.Text)
		}
	case constants.StreamErrEvent:
		_, err = p.failure.Fprintf(p.out, "✗ %v\n", data)
	case constants.StreamEndEvent:
		_, err = p.done.Fprintln(p.out, "✓ 座談会が終了しました")
	}
	return err
}

// jsonPrinter writes {"event": ..., "data": ...} lines for scripting
type jsonPrinter struct {
	enc *json.Encoder
}

func newJSONPrinter(out io.Writer) *jsonPrinter {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return &jsonPrinter{enc: enc}
}

func (p *jsonPrinter) Emit(event string, data interface{}) error {
	return p.enc.Encode(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{Event: event, Data: data})
}

var _ session.Emitter = (*printer)(nil)
var _ session.Emitter = (*jsonPrinter)(nil)
