package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qtrinova/eactranslator/internal/language"
	"github.com/qtrinova/eactranslator/internal/route"
	"github.com/qtrinova/eactranslator/internal/tone"
	grpctransport "github.com/qtrinova/eactranslator/internal/transport/grpc"
	"github.com/qtrinova/eactranslator/internal/translator"
	"github.com/qtrinova/eactranslator/internal/tts"
)

// directionAliases are short command-line names for the direction labels.
var directionAliases = map[string]route.Direction{
	"en-sw": route.EnglishToSwahili,
	"en-fr": route.EnglishToFrench,
	"fr-en": route.FrenchToEnglish,
	"fr-sw": route.FrenchToSwahili,
}

// parseDirection accepts a full label or one of the short aliases.
func parseDirection(s string) (route.Direction, error) {
	if d, ok := directionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return route.Parse(s)
}

func parseLabels(direction, toneLabel string) (route.Direction, tone.Tone, error) {
	d, err := parseDirection(direction)
	if err != nil {
		return "", "", err
	}
	t, err := tone.Parse(toneLabel)
	if err != nil {
		return "", "", err
	}
	return d, t, nil
}

func newTranslateCmd() *cobra.Command {
	var (
		direction string
		toneLabel string
		remote    string
	)

	cmd := &cobra.Command{
		Use:   "translate [flags] TEXT...",
		Short: "Translate text",
		Example: `  eactranslator translate --direction en-sw "Good morning"
  eactranslator translate --direction fr-sw --tone Formal "Bonjour"
  eactranslator translate --remote localhost:50051 -d en-fr "Hello"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, t, err := parseLabels(direction, toneLabel)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			ctx := cmd.Context()

			if remote != "" {
				return translateRemote(ctx, remote, text, d, t)
			}

			cfg, logCloser, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.translator.Translate(ctx, translator.Request{Text: text, Direction: d, Tone: t})
			if err != nil {
				return err
			}
			fmt.Println(res.Output())
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "en-sw", "direction label or alias (en-sw, en-fr, fr-en, fr-sw)")
	cmd.Flags().StringVarP(&toneLabel, "tone", "t", string(tone.Neutral), "tone label (Neutral, Romantic, Formal, Casual)")
	cmd.Flags().StringVar(&remote, "remote", "", "translate through a running daemon's gRPC endpoint (host:port)")
	return cmd
}

func translateRemote(ctx context.Context, target, text string, d route.Direction, t tone.Tone) error {
	client, err := grpctransport.Dial(target)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Translate(ctx, &grpctransport.TranslateRequest{
		Text:      text,
		Direction: string(d),
		Tone:      string(t),
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Output)
	return nil
}

func newTranscribeCmd() *cobra.Command {
	var (
		direction string
		toneLabel string
	)

	cmd := &cobra.Command{
		Use:   "transcribe [flags] FILE.wav",
		Short: "Transcribe a WAV recording and translate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, t, err := parseLabels(direction, toneLabel)
			if err != nil {
				return err
			}

			cfg, logCloser, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.voice == nil {
				return errors.New("speech input is disabled (speech.input.enabled)")
			}

			out, err := a.voice.TranscribeAndTranslate(cmd.Context(), args[0], d, t)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "en-sw", "direction label or alias (en-sw, en-fr, fr-en, fr-sw)")
	cmd.Flags().StringVarP(&toneLabel, "tone", "t", string(tone.Neutral), "tone label (Neutral, Romantic, Formal, Casual)")
	return cmd
}

func newSpeakCmd() *cobra.Command {
	var (
		lang  string
		voice string
	)

	cmd := &cobra.Command{
		Use:   "speak [flags] TEXT...",
		Short: "Synthesize speech and print the audio file path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logCloser, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			cfg.Speech.Input.Enabled = false
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.speaker == nil {
				return errors.New("speech output is disabled (speech.output.enabled)")
			}

			path, ok := a.speaker.Speak(cmd.Context(), strings.Join(args, " "), tts.Options{Language: lang, Voice: voice})
			if !ok {
				return errors.New("no audio produced")
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", string(language.English), "language code (en, fr, sw)")
	cmd.Flags().StringVar(&voice, "voice", "", "backend voice name, overrides the language default")
	return cmd
}

func newDirectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directions",
		Short: "List translation directions and the models behind them",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			aliases := make(map[route.Direction]string, len(directionAliases))
			for alias, d := range directionAliases {
				aliases[d] = alias
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALIAS\tDIRECTION\tROUTE\tMODELS")
			for _, d := range route.Directions() {
				r := route.Resolve(d)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", aliases[d], d, r.Kind, strings.Join(r.Models, " → "))
			}
			_ = w.Flush()
		},
	}
}

func newTonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tones",
		Short: "List tones and their prefixes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TONE\tPREFIX")
			for _, t := range tone.Tones() {
				fmt.Fprintf(w, "%s\t%q\n", t, tone.Prefix(t))
			}
			_ = w.Flush()
		},
	}
}
