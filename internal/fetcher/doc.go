// Package fetcher implements the bulk fetch and range filter stage.
//
// The actor paginates internally and only accepts an overall ceiling
// (total_posts), so the fetcher cannot ask for "everything since date X".
// It asks for the configured target first and, when that batch looks
// truncated before the range start (or carries no usable dates at all),
// asks once more with a larger ceiling:
//
//	ceiling = max(RetryFloor, TargetTotal*RetryMultiplier)
//
// There are never more than two actor calls per run. The final batch is
// filtered to the inclusive DateRange and sorted newest first; posts with
// unparseable timestamps stay in Result.All but never in Result.InRange.
package fetcher
