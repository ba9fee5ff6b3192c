// Package planner holds the pure decision logic of a compression run:
// whether a probed file is already efficiently encoded (Classify) and
// whether an encoded result is worth keeping (Judge). Nothing here touches
// the filesystem or runs a process.
package planner
