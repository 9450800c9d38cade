package profile

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

const (
	WinXP          = 50
	LossXP         = 10
	initialLevelXP = 100
	levelXPGrowth  = 1.2
)

type Profile struct {
	PlayerID    string `json:"playerId"`
	Username    string `json:"username,omitempty"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	RankTitle   string `json:"rankTitle"`
	NextLevelXP int    `json:"nextLevelXp"`
}

func newProfile(playerID string) Profile {
	return Profile{
		PlayerID:    playerID,
		Level:       1,
		RankTitle:   RankTitle(1),
		NextLevelXP: initialLevelXP,
	}
}

func RankTitle(level int) string {
	switch {
	case level >= 50:
		return "Grandmaster"
	case level >= 30:
		return "Warlord"
	case level >= 20:
		return "Master"
	case level >= 10:
		return "Expert"
	case level >= 5:
		return "Warrior"
	}
	return "Novice"
}

// WithResult returns p after one finished game and the XP it earned.
func (p Profile) WithResult(won bool) (Profile, int) {
	gained := LossXP
	if won {
		gained = WinXP
		p.Wins++
	} else {
		p.Losses++
	}
	p.XP += gained
	for p.XP >= p.NextLevelXP {
		p.XP -= p.NextLevelXP
		p.Level++
		p.NextLevelXP = int(float64(p.NextLevelXP) * levelXPGrowth)
	}
	p.RankTitle = RankTitle(p.Level)
	return p, gained
}

func (p Profile) standing() int {
	return p.Level*500 + p.XP
}

type Store struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]Profile)}
}

func key(playerID string) string {
	return strings.ToLower(playerID)
}

// Get returns the stored profile, or a fresh one for unknown players.
func (s *Store) Get(playerID string) Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[key(playerID)]; ok {
		return p
	}
	return newProfile(playerID)
}

func (s *Store) RecordResult(playerID string, won bool) (Profile, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[key(playerID)]
	if !ok {
		p = newProfile(playerID)
	}
	p, gained := p.WithResult(won)
	s.profiles[key(playerID)] = p
	return p, gained
}

func (s *Store) SetUsername(playerID, username string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[key(playerID)]
	if !ok {
		p = newProfile(playerID)
	}
	p.Username = username
	s.profiles[key(playerID)] = p
	return p
}

var seededPlayers = []Profile{
	{PlayerID: "bot-damaking", Username: "DamaKing", Level: 42, XP: 15400, Wins: 312, Losses: 98},
	{PlayerID: "bot-satoshi", Username: "Satoshi", Level: 35, XP: 12100, Wins: 245, Losses: 112},
	{PlayerID: "bot-proplayer", Username: "ProPlayer", Level: 28, XP: 8500, Wins: 180, Losses: 60},
	{PlayerID: "bot-bluefalcon", Username: "BlueFalcon", Level: 19, XP: 5200, Wins: 120, Losses: 85},
	{PlayerID: "bot-player99", Username: "Player_99", Level: 12, XP: 3100, Wins: 65, Losses: 40},
}

// Leaderboard ranks the seeded players, every stored profile and the
// requesting player by level*500+xp, highest first.
func (s *Store) Leaderboard(playerID string) []Profile {
	s.mu.RLock()
	stored := maps.Clone(s.profiles)
	s.mu.RUnlock()
	if _, ok := stored[key(playerID)]; !ok && playerID != "" {
		stored[key(playerID)] = newProfile(playerID)
	}

	board := make([]Profile, 0, len(seededPlayers)+len(stored))
	for _, p := range seededPlayers {
		p.RankTitle = RankTitle(p.Level)
		p.NextLevelXP = 99999
		board = append(board, p)
	}
	board = append(board, maps.Values(stored)...)
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].standing() != board[j].standing() {
			return board[i].standing() > board[j].standing()
		}
		return board[i].PlayerID < board[j].PlayerID
	})
	return board
}
