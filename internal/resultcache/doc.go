// Package resultcache persists per-video intermediate results so a rerun
// over the same recording can skip sampling and classification.
//
// Each video key owns a directory holding two independent JSON entries:
// frames.json (the sampled frame list) and screens.json (the classified
// sequence and its match count). Entries are reused on key alone; the
// recorded source size and modification time let callers detect a
// recording that changed under the same name. An entry that exists but
// cannot be read is reported as ErrCorruptEntry and never silently
// recomputed. Writers hold a per-key file lock so concurrent runs over the
// same recording do not interleave.
package resultcache
