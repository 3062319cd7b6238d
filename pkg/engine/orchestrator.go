// Package engine coordinates one full sync pass: it validates the
// configured folder pairs, scans both sides of each valid pair, diffs
// the results, and feeds the corrective commands into the pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/paulschiretz/pgl-mirror/pkg/fsmodel"
	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
	"github.com/paulschiretz/pgl-mirror/pkg/pathcmd"
	"github.com/paulschiretz/pgl-mirror/pkg/pathdiff"
	"github.com/paulschiretz/pgl-mirror/pkg/pathresolve"
	"github.com/paulschiretz/pgl-mirror/pkg/pathscan"
	"github.com/paulschiretz/pgl-mirror/pkg/preflight"
	"github.com/paulschiretz/pgl-mirror/pkg/progress"
)

// ErrNoValidPairs is fatal at startup: a run configured with zero
// usable folder pairs has nothing to do and must not keep polling.
var ErrNoValidPairs = errors.New("no valid folder pairs")

// Options tunes a sync pass.
type Options struct {
	// Overwrite carries the PreserveAttrs flag onto copy commands.
	PreserveAttrs bool
	// PruneEmptyDirs enables ancestor pruning on delete commands.
	PruneEmptyDirs bool
}

// Orchestrator runs sync passes over a fixed set of folder pairs. The
// pair set is validated once, on the first pass, and reused afterwards;
// the heavyweight collaborators (scanner, pipeline environment) are
// shared across passes.
type Orchestrator struct {
	resolver *pathresolve.Resolver
	scanner  *pathscan.Scanner
	env      *pathcmd.Env
	sink     progress.Sink
	metrics  metrics.Metrics
	opts     Options
	log      *slog.Logger
}

// New assembles an Orchestrator from its collaborators.
func New(
	resolver *pathresolve.Resolver,
	scanner *pathscan.Scanner,
	env *pathcmd.Env,
	sink progress.Sink,
	m metrics.Metrics,
	opts Options,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		scanner:  scanner,
		env:      env,
		sink:     sink,
		metrics:  m,
		opts:     opts,
		log:      log,
	}
}

// ValidatePairs resolves and checks every raw source/target pair.
// Invalid pairs are dropped with a logged reason; duplicate sources are
// dropped keeping the first occurrence. Zero surviving pairs is fatal.
func (o *Orchestrator) ValidatePairs(rawPairs [][2]string) ([]fsmodel.FolderPair, error) {
	seenSources := mapset.NewThreadUnsafeSet[string]()
	var valid []fsmodel.FolderPair

	for _, raw := range rawPairs {
		src, err := o.resolver.ResolveFolder(raw[0])
		if err != nil {
			o.log.Warn("folder pair dropped, source did not resolve", "source", raw[0], "error", err)
			continue
		}
		trg, err := o.resolver.ResolveFolder(raw[1])
		if err != nil {
			o.log.Warn("folder pair dropped, target did not resolve", "target", raw[1], "error", err)
			continue
		}

		pair, err := fsmodel.NewFolderPair(fsmodel.NewFolder(src.FullPath), fsmodel.NewFolder(trg.FullPath))
		if err != nil {
			o.log.Warn("folder pair dropped", "error", err)
			continue
		}

		if err := preflight.CheckSourceAccessible(pair.Source.FullPath()); err != nil {
			o.log.Warn("folder pair dropped, source not accessible", "pair", pair.String(), "error", err)
			continue
		}
		if err := preflight.EnsureTargetWritable(pair.Target.FullPath()); err != nil {
			o.log.Warn("folder pair dropped, target not usable", "pair", pair.String(), "error", err)
			continue
		}

		if !seenSources.Add(pair.Source.FullPath()) {
			o.log.Warn("folder pair dropped, duplicate source folder", "pair", pair.String())
			continue
		}

		valid = append(valid, pair)
		o.log.Info("folder pair accepted", "pair", pair.String())
	}

	if len(valid) == 0 {
		return nil, ErrNoValidPairs
	}
	return valid, nil
}

// SyncAll runs one sync pass over the given pairs. Each pair is scanned
// on both sides, diffed, and its commands fully drained through the
// pipeline before the next pair starts.
func (o *Orchestrator) SyncAll(ctx context.Context, pairs []fsmodel.FolderPair) error {
	pipeline := pathcmd.NewPipeline(ctx, o.env, o.sink)
	defer func() {
		pipeline.Close()
		pipeline.Wait()
	}()

	start := time.Now()
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.syncPair(ctx, pipeline, pair); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// A broken pair (e.g. unreadable source root) is recovered
			// locally; the remaining pairs still sync.
			o.log.Error("folder pair failed", "pair", pair.String(), "error", err)
			continue
		}
	}

	o.metrics.Log(o.log)
	o.log.Info("sync pass finished", "pairs", len(pairs), "duration", time.Since(start).Round(time.Millisecond))
	return ctx.Err()
}

// syncPair scans both sides concurrently, diffs, enqueues all three
// command categories, and drains the pipeline for this pair.
func (o *Orchestrator) syncPair(ctx context.Context, pipeline *pathcmd.Pipeline, pair fsmodel.FolderPair) error {
	o.log.Info("SYNC", "from", pair.Source.FullPath(), "to", pair.Target.FullPath())

	var sourceFiles, targetFiles []fsmodel.File
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := o.scanner.Scan(gctx, pair.Source)
		if err != nil {
			return fmt.Errorf("scan source %s: %w", pair.Source.FullPath(), err)
		}
		sourceFiles = files
		return nil
	})
	g.Go(func() error {
		files, err := o.scanner.Scan(gctx, pair.Target)
		if err != nil {
			return fmt.Errorf("scan target %s: %w", pair.Target.FullPath(), err)
		}
		targetFiles = files
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	changes := pathdiff.Diff(sourceFiles, targetFiles)
	o.log.Info("DIFF",
		"pair", pair.String(),
		"source", len(sourceFiles),
		"target", len(targetFiles),
		"create", len(changes.ToCreate),
		"update", len(changes.ToUpdate),
		"delete", len(changes.ToDelete),
	)

	for _, f := range changes.ToCreate {
		if err := pipeline.Enqueue(pathcmd.Copy(f, pair.Target, false, o.opts.PreserveAttrs)); err != nil {
			o.log.Error("enqueue failed", "op", "copy", "path", f.Key(), "error", err)
		}
	}
	for _, f := range changes.ToUpdate {
		if err := pipeline.Enqueue(pathcmd.Copy(f, pair.Target, true, o.opts.PreserveAttrs)); err != nil {
			o.log.Error("enqueue failed", "op", "copy", "path", f.Key(), "error", err)
		}
	}
	for _, f := range changes.ToDelete {
		if err := pipeline.Enqueue(pathcmd.Delete(f, pair.Target, o.opts.PruneEmptyDirs)); err != nil {
			o.log.Error("enqueue failed", "op", "delete", "path", f.Key(), "error", err)
		}
	}

	// The pipeline must be empty before the next pair's scan starts.
	if err := pipeline.Flush(ctx); err != nil {
		return err
	}
	o.sink.Done()
	return nil
}
