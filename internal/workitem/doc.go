// Package workitem owns the branch-to-work-item mapping machinery:
// extracting identifiers from branch names, the generation-tracked fetch
// cache, and the coordinator that issues at most one concurrent fetch per
// identifier.
package workitem
