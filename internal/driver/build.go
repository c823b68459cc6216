package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"metabin/internal/hexpat"
	"metabin/internal/meta"
	"metabin/internal/observ"
	"metabin/internal/script"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// BuildOptions controls BuildFiles.
type BuildOptions struct {
	Target   typecode.Target
	Emit     hexpat.Options
	OutDir   string // empty: next to each script
	Snapshot bool   // also write <name>.mp
	Jobs     int    // <= 0: GOMAXPROCS
}

// BuildResult describes the files written for one script.
type BuildResult struct {
	Script       string
	Name         string
	PatternPath  string
	BinaryPath   string
	SnapshotPath string
	Bytes        int
	Segments     int
	Timings      observ.Report
}

// ErrOutputConflict is returned when two scripts would write the same
// output files.
var ErrOutputConflict = errors.New("output conflict")

// BuildFiles builds every script concurrently. Each script gets its own
// document; results are returned in input order. Scripts are loaded first so
// that two scripts resolving to the same output files are rejected before
// anything is written. The first failure cancels the remaining builds.
func BuildFiles(ctx context.Context, paths []string, opts BuildOptions) ([]BuildResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDocument, "build-files", 0)
	defer span.End("")

	loaded := make([]loadedScript, len(paths))
	owners := make(map[string]string, len(paths))
	for i, path := range paths {
		ls, err := loadScript(path)
		if err != nil {
			return nil, err
		}
		stem := outputStem(ls.script.Name(), path, opts)
		if prev, dup := owners[stem]; dup {
			return nil, fmt.Errorf("%w: %s and %s both write %s.*", ErrOutputConflict, prev, path, stem)
		}
		owners[stem] = path
		loaded[i] = ls
	}

	// indices are unique per goroutine, no mutex needed
	results := make([]BuildResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			res, err := buildLoaded(gctx, loaded[i], path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildFile builds one script and writes its outputs. The result carries
// the duration of the load, pack and write phases.
func BuildFile(ctx context.Context, path string, opts BuildOptions) (BuildResult, error) {
	ls, err := loadScript(path)
	if err != nil {
		return BuildResult{}, err
	}
	return buildLoaded(ctx, ls, path, opts)
}

type loadedScript struct {
	script *script.Script
	timer  *observ.Timer
}

func loadScript(path string) (loadedScript, error) {
	ls := loadedScript{timer: observ.NewTimer()}
	err := ls.timer.Measure("load", func() (err error) {
		ls.script, err = script.Load(path)
		return err
	})
	return ls, err
}

func buildLoaded(ctx context.Context, ls loadedScript, path string, opts BuildOptions) (BuildResult, error) {
	var (
		m   *meta.MetaBin
		res BuildResult
	)
	err := ls.timer.Measure("pack", func() (err error) {
		m, err = ls.script.Build(ctx, opts.Target, opts.Emit)
		return err
	})
	if err != nil {
		return BuildResult{}, err
	}
	err = ls.timer.Measure("write", func() (err error) {
		res, err = WriteOutputs(m, path, opts)
		return err
	})
	if err != nil {
		return BuildResult{}, err
	}
	res.Timings = ls.timer.Report()
	return res, nil
}

// outputStem is the path of the output files of a document without their
// extension.
func outputStem(name, scriptPath string, opts BuildOptions) string {
	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(scriptPath)
	}
	return filepath.Join(dir, outputName(name))
}

// WriteOutputs writes the pattern, payload and optional snapshot of m.
func WriteOutputs(m *meta.MetaBin, scriptPath string, opts BuildOptions) (BuildResult, error) {
	stem := outputStem(m.Name, scriptPath, opts)
	if err := os.MkdirAll(filepath.Dir(stem), 0o755); err != nil {
		return BuildResult{}, err
	}
	res := BuildResult{
		Script:      scriptPath,
		Name:        m.Name,
		PatternPath: stem + ".hexpat",
		BinaryPath:  stem + ".bin",
		Segments:    len(m.Segments),
	}

	pattern, err := m.Pattern()
	if err != nil {
		return BuildResult{}, fmt.Errorf("%s: %w", scriptPath, err)
	}
	data := m.Data()
	res.Bytes = len(data)

	if err := os.WriteFile(res.PatternPath, []byte(pattern), 0o644); err != nil {
		return BuildResult{}, err
	}
	if err := os.WriteFile(res.BinaryPath, data, 0o644); err != nil {
		return BuildResult{}, err
	}
	if opts.Snapshot {
		res.SnapshotPath = stem + ".mp"
		if err := meta.SaveSnapshot(res.SnapshotPath, m); err != nil {
			return BuildResult{}, err
		}
	}
	return res, nil
}

func outputName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
