// Package probe runs ffprobe against a media file and returns its stream and
// format report as plain text. The report is returned unparsed;
// classification heuristics in the planner package search it directly.
package probe
