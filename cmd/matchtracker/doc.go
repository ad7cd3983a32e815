// Command matchtracker finds the matches in a gameplay recording and writes
// one CSV row per match with the players, their units, and the outcome.
//
//	matchtracker analyze recording.mp4 --with-ocr
//	matchtracker timestamps recording.mp4
//	matchtracker history list
//	matchtracker cache clear recording
package main
