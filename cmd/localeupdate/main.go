// Command localeupdate merges i18next-scanner templates with the previous
// translations: the current locale files are archived, then every
// <ns>-<lng>-empty.json template is filled from the archived <ns>.<lng>.json.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/pricofy/shortlink/internal/locales"
	"github.com/pricofy/shortlink/internal/logging"
)

var opts struct {
	ArchiveDir       string `short:"a" long:"archive" description:"directory receiving the previous locale files" default:"locales/origLocals"`
	InputDir         string `short:"i" long:"input" description:"directory with <ns>-<lng>-empty.json templates" default:"locales/empty"`
	OutputDir        string `short:"o" long:"output" description:"directory for merged <ns>.<lng>.json files" default:"locales"`
	Pattern          string `short:"p" long:"pattern" description:"glob selecting template files" default:"*"`
	Placeholder      string `long:"placeholder" description:"value for untranslated keys" default:"__ TO BE TRANSLATED __"`
	AllowMissingOrig bool   `long:"allow-missing-orig" description:"treat a missing original as empty instead of failing"`
	LogLevel         string `short:"l" long:"log-level" description:"debug, info, warn or error" default:"info"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log := logging.New(opts.LogLevel, true)

	merger, err := locales.New(locales.Config{
		ArchiveDir:       opts.ArchiveDir,
		InputDir:         opts.InputDir,
		OutputDir:        opts.OutputDir,
		Placeholder:      opts.Placeholder,
		InputPattern:     opts.Pattern,
		AllowMissingOrig: opts.AllowMissingOrig,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().Msg("compare & combine started")
	stats, err := merger.Run()
	printStats(os.Stdout, stats)
	if err != nil {
		log.Fatal().Err(err).Msg("locale update aborted")
	}
	log.Info().Int("files", len(stats)).Msg("done")
}

func printStats(w io.Writer, stats []locales.FileStats) {
	for _, st := range stats {
		fmt.Fprintf(w, "%s-%s: orig=%d new=%d untranslated=%d\n",
			st.Namespace, st.Language, st.OrigCount, st.NewCount, st.Untranslated)
	}
}
