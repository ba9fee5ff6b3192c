// Package pipeline walks a tree of video files and shrinks them in place.
//
// Run processes one file at a time: classify it from ffprobe output, encode
// it to a single scratch file through the codec ladder, judge the result,
// and replace the original only when the saving is large enough. Scan runs
// the same classification without encoding and prints a report.
package pipeline
