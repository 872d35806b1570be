package locales

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// ErrMalformedName is returned for input files whose name has no "-" separator.
var ErrMalformedName = errors.New("malformed empty translation file name")

const archivePattern = "*.json"

// Config describes where a run reads and writes its files.
type Config struct {
	// ArchiveDir receives the previous output and is read as the originals.
	ArchiveDir string
	// InputDir holds the scanner output, <ns>-<lng>-empty.json.
	InputDir string
	// OutputDir receives the merged <ns>.<lng>.json files.
	OutputDir string

	Placeholder string

	// InputPattern selects which files of InputDir are processed.
	InputPattern string

	// AllowMissingOrig treats a missing original as an empty map instead of
	// aborting the run.
	AllowMissingOrig bool
}

// DefaultConfig returns the directory layout used by the UI project:
// locales/, locales/empty/ and locales/origLocals/.
func DefaultConfig() Config {
	return Config{
		ArchiveDir:   filepath.Join("locales", "origLocals"),
		InputDir:     filepath.Join("locales", "empty"),
		OutputDir:    "locales",
		Placeholder:  DefaultPlaceholder,
		InputPattern: "*",
	}
}

// Target is one input file and the namespace and language parsed from its name.
type Target struct {
	File      string
	Namespace string
	Language  string
}

// FileStats reports the outcome of merging one target.
type FileStats struct {
	Target
	OrigCount    int
	NewCount     int
	Untranslated int
}

// Merger runs the archive and merge steps over a Config.
type Merger struct {
	cfg          Config
	log          zerolog.Logger
	inputMatch   glob.Glob
	archiveMatch glob.Glob
}

// New validates cfg and creates a Merger.
func New(cfg Config, log zerolog.Logger) (*Merger, error) {
	if cfg.ArchiveDir == "" || cfg.InputDir == "" || cfg.OutputDir == "" {
		return nil, errors.New("archive, input and output directories are required")
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if cfg.InputPattern == "" {
		cfg.InputPattern = "*"
	}

	inputMatch, err := glob.Compile(cfg.InputPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", cfg.InputPattern, err)
	}

	return &Merger{
		cfg:          cfg,
		log:          log,
		inputMatch:   inputMatch,
		archiveMatch: glob.MustCompile(archivePattern),
	}, nil
}

// Run discovers the input files, archives the previous output and merges
// every target in turn. The first failure aborts the run; stats for the
// targets merged so far are returned alongside the error.
func (m *Merger) Run() ([]FileStats, error) {
	targets, err := m.Discover()
	if err != nil {
		return nil, err
	}
	m.log.Info().Int("files", len(targets)).Msg("files to translate")

	moved, err := m.Archive()
	if err != nil {
		return nil, err
	}
	m.log.Info().Strs("files", moved).Msg("previous output archived")

	stats := make([]FileStats, 0, len(targets))
	for _, t := range targets {
		st, err := m.MergeTarget(t)
		if err != nil {
			return stats, fmt.Errorf("merge %s: %w", t.File, err)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// Discover lists the input directory and parses every matching file name.
func (m *Merger) Discover() ([]Target, error) {
	entries, err := os.ReadDir(m.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.cfg.InputDir, err)
	}

	files := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && m.inputMatch.Match(e.Name())
	})

	targets := make([]Target, 0, len(files))
	for _, e := range files {
		ns, lng, err := ParseEmptyName(e.Name())
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{File: e.Name(), Namespace: ns, Language: lng})
	}
	return targets, nil
}

// Archive moves every *.json file of the output directory into the archive
// directory, replacing files of the same name. It returns the moved names.
func (m *Merger) Archive() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.cfg.OutputDir, err)
	}
	if err := os.MkdirAll(m.cfg.ArchiveDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", m.cfg.ArchiveDir, err)
	}

	var moved []string
	for _, e := range entries {
		if e.IsDir() || !m.archiveMatch.Match(e.Name()) {
			continue
		}
		src := filepath.Join(m.cfg.OutputDir, e.Name())
		dst := filepath.Join(m.cfg.ArchiveDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return moved, fmt.Errorf("move %s: %w", src, err)
		}
		m.log.Debug().Str("file", e.Name()).Msg("moved")
		moved = append(moved, e.Name())
	}
	return moved, nil
}

// MergeTarget merges one namespace/language pair and writes the result.
func (m *Merger) MergeTarget(t Target) (FileStats, error) {
	log := m.log.With().Str("ns", t.Namespace).Str("lng", t.Language).Logger()
	log.Info().Str("file", t.File).Msg("working on")

	if _, err := language.Parse(t.Language); err != nil {
		log.Warn().Err(err).Msg("language is not a valid BCP 47 tag")
	}

	origPath := filepath.Join(m.cfg.ArchiveDir, OrigName(t.Namespace, t.Language))
	orig, err := readMap(origPath)
	if err != nil {
		if !m.cfg.AllowMissingOrig || !errors.Is(err, fs.ErrNotExist) {
			return FileStats{}, fmt.Errorf("read original: %w", err)
		}
		log.Warn().Str("path", origPath).Msg("no original translation, starting empty")
		orig = TranslationMap{}
	}

	empty, err := readMap(filepath.Join(m.cfg.InputDir, EmptyName(t.Namespace, t.Language)))
	if err != nil {
		return FileStats{}, fmt.Errorf("read template: %w", err)
	}

	missing := Untranslated(orig, empty)
	for _, key := range missing {
		log.Debug().Str("key", key).Msg("not existing")
	}

	outPath := filepath.Join(m.cfg.OutputDir, OrigName(t.Namespace, t.Language))
	if err := writeMap(outPath, Merge(orig, empty, m.cfg.Placeholder)); err != nil {
		return FileStats{}, err
	}

	st := FileStats{
		Target:       t,
		OrigCount:    len(orig),
		NewCount:     len(empty),
		Untranslated: len(missing),
	}
	log.Info().
		Int("orig", st.OrigCount).
		Int("new", st.NewCount).
		Int("untranslated", st.Untranslated).
		Msg("merged")
	return st, nil
}

// ParseEmptyName splits "<ns>-<lng>-empty.json" into namespace and language:
// the namespace is the text before the first "-" and the language the text
// between the first and second "-". The rest of the name is not checked.
func ParseEmptyName(name string) (ns, lng string, err error) {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	return parts[0], parts[1], nil
}

// EmptyName is the scanner's file name for a namespace and language.
func EmptyName(ns, lng string) string {
	return ns + "-" + lng + "-empty.json"
}

// OrigName is the file name of an archived or merged translation.
func OrigName(ns, lng string) string {
	return ns + "." + lng + ".json"
}
