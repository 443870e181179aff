package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/match"
	"github.com/3leaps/objfs/pkg/objfs"
	"github.com/3leaps/objfs/pkg/output"
)

var findCmd = &cobra.Command{
	Use:   "find <uri>",
	Short: "Find files by pattern and filters",
	Long: `Walk a directory tree and report the files that match glob patterns
and metadata filters.

The URI may carry a glob pattern directly (s3://bucket/data/**/*.csv)
or name a directory to walk with --include/--exclude patterns. Size and
date filters need per-object metadata, which costs one stat round trip
per candidate; pure path filters do not.

Examples:
  objfs find s3://bucket/logs/**/*.gz
  objfs find s3://bucket/data/ --include "**/*.parquet" --exclude "**/tmp/**"
  objfs find s3://bucket/data/ --min-size 1MB --newer-than 2026-01-01
  objfs find s3://bucket/data/ --regex 'part-\d{5}' --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

var (
	findIncludes      []string
	findExcludes      []string
	findIncludeHidden bool
	findMinSize       string
	findMaxSize       string
	findNewerThan     string
	findOlderThan     string
	findRegex         string
	findJSON          bool
	findLong          bool
)

func init() {
	rootCmd.AddCommand(findCmd)
	addBackendFlags(findCmd)

	findCmd.Flags().StringArrayVar(&findIncludes, "include", nil, "Include glob pattern (repeatable)")
	findCmd.Flags().StringArrayVar(&findExcludes, "exclude", nil, "Exclude glob pattern (repeatable)")
	findCmd.Flags().BoolVar(&findIncludeHidden, "include-hidden", false, "Match dotfiles and dot-directories")
	findCmd.Flags().StringVar(&findMinSize, "min-size", "", `Minimum size, e.g. "1KB", "100MiB"`)
	findCmd.Flags().StringVar(&findMaxSize, "max-size", "", `Maximum size, e.g. "1GB"`)
	findCmd.Flags().StringVar(&findNewerThan, "newer-than", "", `Modified at or after, e.g. "2026-01-15"`)
	findCmd.Flags().StringVar(&findOlderThan, "older-than", "", `Modified before, e.g. "2026-06-01T00:00:00Z"`)
	findCmd.Flags().StringVar(&findRegex, "regex", "", "Regex applied to paths after glob matching")
	findCmd.Flags().BoolVar(&findJSON, "json", false, "Emit matches as JSONL records with a trailing summary")
	findCmd.Flags().BoolVarP(&findLong, "long", "l", false, "Long format with size and modification time")
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}

	includes := findIncludes
	root := parsed.Key
	if parsed.IsPattern() {
		if len(includes) > 0 {
			return exitError(foundry.ExitInvalidArgument, "Pattern URI and --include are mutually exclusive",
				fmt.Errorf("put the pattern in the URI or in --include, not both"))
		}
		includes = []string{parsed.Pattern}
	} else if len(includes) == 0 {
		includes = []string{"**"}
	}

	matcher, err := match.New(match.Config{
		Includes:      includes,
		Excludes:      findExcludes,
		IncludeHidden: findIncludeHidden,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid include/exclude patterns", err)
	}

	filter, err := buildFindFilter()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid filter flags", err)
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	// NewFilterFromConfig returns nil when no filter flags are set.
	needStat := findLong || (filter != nil && filter.RequiresStat())

	start := time.Now()
	matches, found, statErrs, err := collectMatches(ctx, fs, root, matcher, filter, needStat)
	if err != nil {
		if objfs.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "No such directory", err)
		}
		observability.CLILogger.Error("Find failed", zap.String("path", root), zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Find failed", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })

	observability.CLILogger.Info("Find complete",
		zap.String("job_id", jobID),
		zap.String("root", root),
		zap.Int("matched", len(matches)),
		zap.Bool("stat_enriched", needStat))

	if findJSON {
		return writeFindJSONL(ctx, parsed.Provider, root, matches, found, statErrs, needStat, time.Since(start))
	}

	for _, m := range matches {
		if findLong {
			fmt.Printf("%s\t%s\t%s\n", match.FormatSize(m.Size), m.ModTime.UTC().Format(time.RFC3339), m.Path)
			continue
		}
		fmt.Println(m.Path)
	}
	return nil
}

func buildFindFilter() (*match.CompositeFilter, error) {
	cfg := &match.FilterConfig{PathRegex: findRegex}
	if findMinSize != "" || findMaxSize != "" {
		cfg.Size = &match.SizeFilterConfig{Min: findMinSize, Max: findMaxSize}
	}
	if findNewerThan != "" || findOlderThan != "" {
		cfg.Modified = &match.DateFilterConfig{After: findNewerThan, Before: findOlderThan}
	}
	return match.NewFilterFromConfig(cfg)
}

// writeFindJSONL emits matches as typed JSONL records followed by a
// summary line.
func writeFindJSONL(ctx context.Context, provider, root string, matches []match.ObjectInfo, found, statErrs int64, enriched bool, dur time.Duration) error {
	w := output.NewJSONLWriter(os.Stdout, jobID, provider)
	defer func() { _ = w.Close() }()

	var bytesTotal int64
	for i := range matches {
		m := &matches[i]
		rec := &output.EntryRecord{Path: m.Path}
		if enriched {
			size, mtime := m.Size, m.ModTime
			rec.Size = &size
			rec.ModTime = &mtime
			bytesTotal += size
		}
		if err := w.WriteEntry(ctx, rec); err != nil {
			return err
		}
	}

	return w.WriteSummary(ctx, &output.SummaryRecord{
		EntriesFound:   found,
		EntriesMatched: int64(len(matches)),
		BytesTotal:     bytesTotal,
		Duration:       dur,
		DurationHuman:  dur.Round(time.Millisecond).String(),
		Errors:         statErrs,
		Root:           root,
	})
}

// collectMatches walks the tree under root and applies the matcher and
// filter to every file. Patterns match against the full path from the
// bucket root. Listings carry names only, so metadata is fetched per
// candidate only when something actually reads it.
func collectMatches(ctx context.Context, fs *objfs.FileSystem, root string, matcher *match.Matcher, filter *match.CompositeFilter, needStat bool) (matches []match.ObjectInfo, found, statErrs int64, err error) {
	children, err := fs.ListChildren(ctx, root, true)
	if err != nil {
		return nil, 0, 0, err
	}

	for _, c := range children {
		if c.IsDirectory {
			continue
		}
		found++
		full := joinPath(root, c.Name)
		if !matcher.Match(full) {
			continue
		}

		info := match.ObjectInfo{Path: full}
		if needStat {
			size, err := fs.FileSize(ctx, info.Path)
			if err != nil {
				observability.CLILogger.Warn("Failed to stat candidate",
					zap.String("path", info.Path), zap.Error(err))
				statErrs++
				continue
			}
			mtime, err := fs.ModificationTime(ctx, info.Path)
			if err != nil {
				observability.CLILogger.Warn("Failed to stat candidate",
					zap.String("path", info.Path), zap.Error(err))
				statErrs++
				continue
			}
			info.Size = size
			info.ModTime = mtime
		}

		if filter != nil && !filter.Match(&info) {
			continue
		}
		matches = append(matches, info)
	}
	return matches, found, statErrs, nil
}
