// Package main seeds the database with a demo song catalog and, optionally,
// demo users with playlists.
//
// The server rebuilds its search index on the next start when the catalog
// and the index disagree, so the index needs no separate seeding.
//
// Usage:
//
//	DATA_PATH=~/.cadence go run ./cmd/seed
//	DATA_PATH=~/.cadence go run ./cmd/seed --create-users  # Also create demo users
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/cadenceapp/cadence-server/internal/auth"
	"github.com/cadenceapp/cadence-server/internal/domain"
	"github.com/cadenceapp/cadence-server/internal/store"
	"github.com/cadenceapp/cadence-server/internal/store/sqlite"
)

var createUsers = flag.Bool("create-users", false, "Create demo users, each with a random playlist")

// demoCatalog is a small catalog with repeated artists so search facets have something to show.
var demoCatalog = []domain.Song{
	{Title: "Yesterday", Artist: "The Beatles", Duration: 125},
	{Title: "Let It Be", Artist: "The Beatles", Duration: 243},
	{Title: "Here Comes the Sun", Artist: "The Beatles", Duration: 185},
	{Title: "Bohemian Rhapsody", Artist: "Queen", Duration: 354},
	{Title: "Don't Stop Me Now", Artist: "Queen", Duration: 209},
	{Title: "Under Pressure", Artist: "Queen", Duration: 248},
	{Title: "Halo", Artist: "Beyoncé", Duration: 261},
	{Title: "Formation", Artist: "Beyoncé", Duration: 206},
	{Title: "Clair de Lune", Artist: "Claude Debussy", Duration: 300},
	{Title: "Gymnopédie No. 1", Artist: "Erik Satie", Duration: 190},
	{Title: "So What", Artist: "Miles Davis", Duration: 562},
	{Title: "Blue in Green", Artist: "Miles Davis", Duration: 337},
	{Title: "Hurt", Artist: "Johnny Cash", Duration: 218},
	{Title: "Jolene", Artist: "Dolly Parton", Duration: 161},
	{Title: "Smells Like Teen Spirit", Artist: "Nirvana", Duration: 301},
}

var demoUsers = []string{"alice", "bob", "carol"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/.cadence")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "cadence.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	songs := seedSongs(ctx, s)
	fmt.Printf("Catalog has %d demo songs\n", len(songs))

	if *createUsers {
		seedUsers(ctx, s, songs)
	}

	fmt.Println("Done.")
}

// seedSongs inserts the demo catalog, skipping it when the catalog is not empty.
func seedSongs(ctx context.Context, s *sqlite.Store) []*domain.Song {
	count, err := s.CountSongs(ctx)
	if err != nil {
		log.Fatalf("Failed to count songs: %v", err)
	}
	if count > 0 {
		fmt.Printf("Catalog already has %d songs, not adding demo songs\n", count)
		songs, err := s.ListAllSongs(ctx)
		if err != nil {
			log.Fatalf("Failed to list songs: %v", err)
		}
		return songs
	}

	songs := make([]*domain.Song, 0, len(demoCatalog))
	for _, demo := range demoCatalog {
		song := demo
		if err := s.CreateSong(ctx, &song); err != nil {
			log.Fatalf("Failed to create song %q: %v", demo.Title, err)
		}
		songs = append(songs, &song)
	}
	return songs
}

// seedUsers creates demo users with password "secret", each owning one
// playlist of random songs. Existing users are left alone.
func seedUsers(ctx context.Context, s *sqlite.Store, songs []*domain.Song) {
	passwordHash, err := auth.HashPassword("secret")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, username := range demoUsers {
		user := &domain.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: passwordHash,
			Role:         domain.RoleUser,
		}
		if err := s.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				fmt.Printf("User %s already exists, skipping\n", username)
				continue
			}
			log.Fatalf("Failed to create user %s: %v", username, err)
		}

		playlist := &domain.Playlist{
			OwnerID:     user.ID,
			Name:        username + "'s mix",
			Description: "Seeded demo playlist",
		}
		if err := s.CreatePlaylist(ctx, playlist); err != nil {
			log.Fatalf("Failed to create playlist for %s: %v", username, err)
		}

		picked := 0
		for _, i := range rand.Perm(len(songs))[:min(5, len(songs))] {
			added, err := s.AddSongToPlaylist(ctx, playlist.ID, songs[i].ID)
			if err != nil {
				log.Fatalf("Failed to add song to playlist: %v", err)
			}
			if added {
				picked++
			}
		}

		fmt.Printf("Created user %s (password: secret) with a %d-song playlist\n", username, picked)
	}
}
