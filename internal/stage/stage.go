// Package stage copies the vehicle template tree shipped with the
// application into the shared application-data directory.
package stage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/VoxDroid/amcsetup/internal/fsutil"
)

// Options controls a staging run.
type Options struct {
	Source    string
	Dest      string
	Overwrite bool
	DryRun    bool
	Logger    *zerolog.Logger
}

// Result summarises a staging run.
type Result struct {
	Actions []string
	Copied  int
	Skipped int
}

// Plan returns the actions Templates would perform without touching Dest.
func Plan(opts Options) (*Result, error) {
	opts.DryRun = true
	return Templates(opts)
}

// Templates mirrors Source into Dest. Files already present in Dest are kept
// unless Overwrite is set, since users edit their copies of the templates.
func Templates(opts Options) (*Result, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Source == "" || opts.Dest == "" {
		return nil, fmt.Errorf("template source and destination are required")
	}
	info, err := os.Stat(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("template source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template source %s is not a directory", opts.Source)
	}

	res := &Result{}
	res.Actions = append(res.Actions, fmt.Sprintf("Ensure directory exists: %s", opts.Dest))
	err = filepath.WalkDir(opts.Source, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(opts.Source, p)
		if err != nil {
			return err
		}
		target := filepath.Join(opts.Dest, rel)
		if d.IsDir() {
			if opts.DryRun {
				return nil
			}
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, err := os.Stat(target); err == nil && !opts.Overwrite {
			res.Skipped++
			log.Debug().Str("file", target).Msg("Keeping existing template file")
			return nil
		}
		res.Copied++
		res.Actions = append(res.Actions, fmt.Sprintf("Copy %s -> %s", p, target))
		if opts.DryRun {
			return nil
		}
		return copyFile(p, target)
	})
	if err != nil {
		return res, fmt.Errorf("stage templates: %w", err)
	}
	if res.Skipped > 0 {
		res.Actions = append(res.Actions, fmt.Sprintf("Keep %d existing file(s) in %s", res.Skipped, opts.Dest))
	}
	log.Info().Int("copied", res.Copied).Int("skipped", res.Skipped).Str("dest", opts.Dest).Bool("dryRun", opts.DryRun).Msg("Vehicle templates staged")
	return res, nil
}

// LeafDirs lists directories under root that have no subdirectories; each
// is one vehicle template.
func LeafDirs(root string) ([]string, error) {
	var leaves []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				return nil
			}
		}
		if p != root {
			leaves = append(leaves, p)
		}
		return nil
	})
	sort.Strings(leaves)
	return leaves, err
}

// copyFile writes src to a temp file next to dst and renames it into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()
	return fsutil.WriteFile(dst, in)
}
