package model

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Queue is the matchmaking line, oldest first. A player appears at most once.
type Queue struct {
	mu      sync.Mutex
	waiting []string
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) indexLocked(playerID string) int {
	return slices.IndexFunc(q.waiting, func(id string) bool { return id == playerID })
}

func (q *Queue) AddPlayer(playerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexLocked(playerID) >= 0 {
		return ErrAlreadyQueued
	}
	q.waiting = append(q.waiting, playerID)
	return nil
}

// NextPair pops the two players who have been waiting longest.
func (q *Queue) NextPair() (first, second string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) < 2 {
		return "", "", false
	}
	first, second = q.waiting[0], q.waiting[1]
	q.waiting = slices.Delete(q.waiting, 0, 2)
	return first, second, true
}

func (q *Queue) Remove(playerID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexLocked(playerID); i >= 0 {
		q.waiting = slices.Delete(q.waiting, i, i+1)
	}
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
