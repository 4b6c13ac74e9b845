package dupes

import (
	"cmp"
	"errors"
	"slices"
)

// Group is a set of at least two canonical paths whose contents share a digest.
type Group struct {
	// Digest is the shared content hash.
	Digest Digest `json:"digest"`
	// Size is the size of each file in bytes.
	Size int64 `json:"size"`
	// Paths are the canonical paths, in job completion order.
	Paths []string `json:"paths"`
	// Wasted is the number of bytes taken by all but one copy.
	Wasted int64 `json:"wasted"`
}

// Result is the aggregated outcome of a scan.
type Result struct {
	// Mapping holds every digest, singletons included.
	Mapping map[Digest][]string `json:"-"`
	// Groups are the mapping entries with two or more paths, sorted by digest.
	Groups []Group `json:"groups"`
	// FileCount is the number of eligible files hashed successfully.
	FileCount int `json:"file_count"`
	// Errors are the per-entry failures, sorted by path.
	Errors []*ScanError `json:"errors"`
	// Wasted is the total number of reclaimable bytes across all groups.
	Wasted int64 `json:"wasted"`
}

// Aggregate waits for every job in set, then builds the digest mapping.
// Nothing is recorded before the last job has resolved.
func Aggregate(set *JobSet) *Result {
	set.wait()

	type completed struct {
		record FileRecord
		seq    int64
	}

	records := make([]completed, 0, len(set.jobs))
	errs := slices.Clone(set.errs)

	for _, job := range set.jobs {
		record, err := job.Wait()
		if err != nil {
			errs = append(errs, asScanError(job.Path, err))

			continue
		}

		records = append(records, completed{record: record, seq: job.seq})
	}

	slices.SortFunc(records, func(a, b completed) int {
		return cmp.Compare(a.seq, b.seq)
	})

	ordered := make([]FileRecord, len(records))
	for i, c := range records {
		ordered[i] = c.record
	}

	return Build(ordered, errs)
}

// Build groups records by digest. Records are taken in the given order;
// a record whose canonical path was already seen is dropped, so one
// filesystem object never appears twice.
func Build(records []FileRecord, errs []*ScanError) *Result {
	result := &Result{
		Mapping: make(map[Digest][]string),
		Groups:  []Group{},
		Errors:  append([]*ScanError{}, errs...),
	}

	seen := make(map[string]struct{}, len(records))
	sizes := make(map[Digest]int64)

	for _, record := range records {
		if _, ok := seen[record.Path]; ok {
			continue
		}

		seen[record.Path] = struct{}{}

		result.Mapping[record.Digest] = append(result.Mapping[record.Digest], record.Path)
		sizes[record.Digest] = record.Size
		result.FileCount++
	}

	for digest, paths := range result.Mapping {
		if len(paths) < 2 {
			continue
		}

		group := Group{
			Digest: digest,
			Size:   sizes[digest],
			Paths:  paths,
			Wasted: sizes[digest] * int64(len(paths)-1),
		}

		result.Groups = append(result.Groups, group)
		result.Wasted += group.Wasted
	}

	slices.SortFunc(result.Groups, func(a, b Group) int {
		return cmp.Compare(a.Digest, b.Digest)
	})

	slices.SortStableFunc(result.Errors, func(a, b *ScanError) int {
		return cmp.Compare(a.Path, b.Path)
	})

	return result
}

func asScanError(path string, err error) *ScanError {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr
	}

	return newScanError(KindRead, path, err)
}
