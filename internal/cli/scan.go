package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/config"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/entrypoint"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/project"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/runcmd"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

// runReport is one entry point with the command that runs it.
type runReport struct {
	// Line is 1-based.
	Line     int    `json:"line" yaml:"line"`
	Function string `json:"function" yaml:"function"`
	Class    string `json:"class,omitempty" yaml:"class,omitempty"`
	Command  string `json:"command" yaml:"command"`
	Dir      string `json:"dir" yaml:"dir"`
}

// fileReport is the detection result for one file.
type fileReport struct {
	Path        string      `json:"path" yaml:"path"`
	Language    string      `json:"language" yaml:"language"`
	Root        string      `json:"root" yaml:"root"`
	EntryPoints []runReport `json:"entryPoints" yaml:"entryPoints"`
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"out":          true,
	"__pycache__":  true,
}

// scanner runs entry point detection and command synthesis over files.
type scanner struct {
	content  *host.LocalContent
	resolver *project.Resolver
	synth    *runcmd.Synthesizer
}

// detectFile reads path and reports its entry points.
func (s *scanner) detectFile(path string) (fileReport, []entrypoint.EntryPoint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileReport{}, nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	src, err := s.content.Read(abs)
	if err != nil {
		return fileReport{}, nil, err
	}
	l := lang.Detect(abs, []byte(src))
	eps := entrypoint.Detect(src, l, abs)
	root := s.resolver.Resolve(abs)

	rep := fileReport{Path: abs, Language: l.String(), Root: root, EntryPoints: []runReport{}}
	for _, ep := range eps {
		cmd := s.synth.Synthesize(ep, root)
		rep.EntryPoints = append(rep.EntryPoints, runReport{
			Line:     ep.Line + 1,
			Function: ep.FunctionName,
			Class:    ep.Class,
			Command:  cmd.Line,
			Dir:      cmd.Dir,
		})
	}
	return rep, eps, nil
}

// collect expands the arguments into files. Directories are walked for files
// in languages with entry point rules; hidden and build directories are
// skipped. Files named directly are always kept.
func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == arg {
				if !d.IsDir() {
					files = append(files, path)
				}
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if strings.HasPrefix(name, ".") || skipDirs[name] {
					return filepath.SkipDir
				}
				return nil
			}
			if entrypoint.Supported(lang.FromPath(path)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
	}
	return files, nil
}

// detectAll scans files concurrently. Unreadable files are logged and left
// out; the order of files is kept.
func (s *scanner) detectAll(ctx context.Context, files []string, keepEmpty bool) ([]fileReport, error) {
	reports := make([]*fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, _, err := s.detectFile(path)
			if err != nil {
				logger.Warnf("detect: skipping %s: %v", path, err)
				return nil
			}
			if len(rep.EntryPoints) > 0 || keepEmpty {
				reports[i] = &rep
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]fileReport, 0, len(files))
	for _, r := range reports {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// newScanner builds the detection pipeline from the configuration. The
// settings file only contributes the size limit.
func newScanner(cfg *config.Config) (*scanner, error) {
	st, err := settings.Load(cfg.SettingsPath())
	if err != nil {
		logger.Warnf("settings: %v; using defaults", err)
	}
	resolver, err := project.NewResolver(project.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}
	return &scanner{
		content:  host.NewLocalContent(st.MaxFileSizeBytes),
		resolver: resolver,
		synth:    cfg.Synthesizer(),
	}, nil
}

func (s *scanner) Close() { s.resolver.Close() }
