package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
)

// The leaderboard lives in a single JSON file holding at most MaxLeaderboard
// entries sorted by percentage descending. Storage failures never surface to
// the player: unreadable data degrades to an empty board and writes are
// best-effort. Declared as function variables so tests can substitute them.

// loadHighScores reads the persisted leaderboard. Missing or malformed data
// yields an empty board, never an error.
var loadHighScores = func(path string) []HighScoreEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logWarn("Failed to read high score file %s: %v", path, err)
		}
		return []HighScoreEntry{}
	}

	var entries []HighScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logWarn("High score file %s is corrupted, treating as empty: %v", path, err)
		return []HighScoreEntry{}
	}
	return entries
}

// isHighScore reports whether a finished quiz earns a leaderboard spot: the
// board has room, or the percentage strictly beats the current lowest entry.
var isHighScore = func(path string, percentage int) bool {
	entries := loadHighScores(path)
	if len(entries) < MaxLeaderboard {
		return true
	}
	lowest := lo.MinBy(entries, func(a, b HighScoreEntry) bool {
		return a.Percentage < b.Percentage
	})
	return percentage > lowest.Percentage
}

// saveHighScore appends an entry, re-sorts by percentage descending (stable,
// so entries already on the board win ties against the newcomer), trims to
// MaxLeaderboard, and writes the file.
var saveHighScore = func(path string, entry HighScoreEntry) error {
	entries := append(loadHighScores(path), entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	if len(entries) > MaxLeaderboard {
		entries = entries[:MaxLeaderboard]
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logWarn("Failed to create high score directory %s: %v", dir, err)
			return err
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logWarn("Failed to write high score file %s: %v", path, err)
		return err
	}
	logInfo("Saved high score for %s (%d%%), board size %d", entry.Name, entry.Percentage, len(entries))
	return nil
}
