// Package pathdiff partitions two scanned metadata sets into the
// corrective operations one-way mirroring needs. Matching is purely by
// (name, relative path) string equality; there is no rename detection
// and content never participates in identity.
package pathdiff

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/paulschiretz/pgl-mirror/pkg/fsmodel"
)

// Changes is the three-way partition of a folder pair's diff. The three
// sets are disjoint by construction.
type Changes struct {
	// ToCreate are source files with no counterpart in the target.
	ToCreate []fsmodel.File
	// ToUpdate are source files whose target counterpart differs in
	// size or modification time. A matching identity is a candidate for
	// update regardless of hash; the pipeline's tie-break may still
	// cancel the copy.
	ToUpdate []fsmodel.File
	// ToDelete are target files with no counterpart in the source.
	ToDelete []fsmodel.File
}

// Empty reports whether the diff found nothing to do.
func (c Changes) Empty() bool {
	return len(c.ToCreate) == 0 && len(c.ToUpdate) == 0 && len(c.ToDelete) == 0
}

// Diff compares source against target. Both slices must contain only
// files whose relative path has been set by a scan.
func Diff(source, target []fsmodel.File) Changes {
	targetByKey := make(map[string]fsmodel.File, len(target))
	targetKeys := mapset.NewThreadUnsafeSetWithSize[string](len(target))
	for _, f := range target {
		targetByKey[f.Key()] = f
		targetKeys.Add(f.Key())
	}

	var changes Changes
	sourceKeys := mapset.NewThreadUnsafeSetWithSize[string](len(source))
	for _, src := range source {
		key := src.Key()
		sourceKeys.Add(key)

		dst, ok := targetByKey[key]
		if !ok {
			changes.ToCreate = append(changes.ToCreate, src)
			continue
		}
		if modified(src, dst) {
			changes.ToUpdate = append(changes.ToUpdate, src)
		}
	}

	// Target-only keys, in the target's scan order for deterministic
	// command ordering.
	onlyInTarget := targetKeys.Difference(sourceKeys)
	for _, dst := range target {
		if onlyInTarget.Contains(dst.Key()) {
			changes.ToDelete = append(changes.ToDelete, dst)
		}
	}
	return changes
}

// modified reports whether size or modification time differ. Timestamps
// compare by instant (zone-preserving values of the same instant are
// equal). A content change that alters neither size nor timestamp is
// intentionally invisible here: hashing only ever cancels updates, it
// never detects them.
func modified(src, dst fsmodel.File) bool {
	if src.Meta == nil || dst.Meta == nil {
		return true
	}
	return src.Meta.Size != dst.Meta.Size || !src.Meta.ModTime.Equal(dst.Meta.ModTime)
}
