// Package main prints a summary of a Cadence database: users, catalog size
// and each user's playlists.
//
// Usage:
//
//	DATA_PATH=~/.cadence go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cadenceapp/cadence-server/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/.cadence")
	}

	dbPath := filepath.Join(dataPath, "cadence.db")
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("Database not found at %s: %v", dbPath, err)
	}

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	songCount, err := s.CountSongs(ctx)
	if err != nil {
		log.Fatalf("Failed to count songs: %v", err)
	}
	fmt.Printf("Songs: %d\n\n", songCount)

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tPLAYLISTS\tSONGS IN PLAYLISTS\tSIGNED IN")

	totalPlaylists := 0
	for _, u := range users {
		playlists, err := s.ListPlaylistsByOwner(ctx, u.ID)
		if err != nil {
			log.Fatalf("Failed to list playlists for user %d: %v", u.ID, err)
		}

		songs := 0
		for _, p := range playlists {
			songs += len(p.SongIDs)
		}
		totalPlaylists += len(playlists)

		signedIn := "no"
		if u.RefreshTokenHash != "" {
			signedIn = "yes"
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			u.ID, u.Username, u.Email, u.Role, len(playlists), songs, signedIn)
	}
	_ = w.Flush()

	fmt.Printf("\nUsers: %d, playlists: %d\n", len(users), totalPlaylists)
}
