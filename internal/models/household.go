package models

import (
	"encoding/json"
	"sort"
	"time"
)

// MaxMatchedMeals caps the matched set of a session.
const MaxMatchedMeals = 7

// Slot names one of the two member positions of a household.
type Slot string

const (
	SlotUser1 Slot = "user1"
	SlotUser2 Slot = "user2"
)

// Valid reports whether s is user1 or user2.
func (s Slot) Valid() bool {
	return s == SlotUser1 || s == SlotUser2
}

// Other returns the counterpart slot.
func (s Slot) Other() Slot {
	if s == SlotUser1 {
		return SlotUser2
	}
	return SlotUser1
}

// Decision is a member's recorded verdict on one recipe.
type Decision string

const (
	DecisionLiked    Decision = "liked"
	DecisionDisliked Decision = "disliked"
)

// Direction is the raw swipe gesture.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Valid reports whether d is left or right.
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// Decision maps a swipe to the decision it records.
func (d Direction) Decision() Decision {
	if d == DirectionRight {
		return DecisionLiked
	}
	return DecisionDisliked
}

// Choice is the latest decision a member made on a recipe.
type Choice struct {
	Decision  Decision  `json:"decision"`
	DecidedAt time.Time `json:"decidedAt"`
	Seq       int64     `json:"seq"`
}

// MealPreferences holds one decision per recipe id; the most recent one wins.
// The liked and disliked lists are derived from it in decision order.
type MealPreferences struct {
	Decisions map[string]Choice
	NextSeq   int64
}

// Record stores decision for recipeID. It returns false when the same decision
// was already the current one.
func (p *MealPreferences) Record(recipeID string, decision Decision, at time.Time) bool {
	if p.Decisions == nil {
		p.Decisions = make(map[string]Choice)
	}
	if current, ok := p.Decisions[recipeID]; ok && current.Decision == decision {
		return false
	}
	p.NextSeq++
	p.Decisions[recipeID] = Choice{Decision: decision, DecidedAt: at, Seq: p.NextSeq}
	return true
}

// Decided reports whether the member already decided on recipeID.
func (p MealPreferences) Decided(recipeID string) bool {
	_, ok := p.Decisions[recipeID]
	return ok
}

// Likes reports whether the current decision on recipeID is a like.
func (p MealPreferences) Likes(recipeID string) bool {
	c, ok := p.Decisions[recipeID]
	return ok && c.Decision == DecisionLiked
}

// Liked returns liked recipe ids in the order they were decided.
func (p MealPreferences) Liked() []string {
	return p.list(DecisionLiked)
}

// Disliked returns disliked recipe ids in the order they were decided.
func (p MealPreferences) Disliked() []string {
	return p.list(DecisionDisliked)
}

func (p MealPreferences) list(d Decision) []string {
	ids := make([]string, 0, len(p.Decisions))
	for id, c := range p.Decisions {
		if c.Decision == d {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return p.Decisions[ids[i]].Seq < p.Decisions[ids[j]].Seq
	})
	return ids
}

type mealPreferencesJSON struct {
	Liked     []string          `json:"liked"`
	Disliked  []string          `json:"disliked"`
	Decisions map[string]Choice `json:"decisions,omitempty"`
	NextSeq   int64             `json:"nextSeq,omitempty"`
}

// MarshalJSON emits the derived liked/disliked lists next to the decisions.
func (p MealPreferences) MarshalJSON() ([]byte, error) {
	return json.Marshal(mealPreferencesJSON{
		Liked:     p.Liked(),
		Disliked:  p.Disliked(),
		Decisions: p.Decisions,
		NextSeq:   p.NextSeq,
	})
}

// UnmarshalJSON reads decisions. Documents written with only liked/disliked
// lists are imported with likes first, then dislikes, each in list order.
func (p *MealPreferences) UnmarshalJSON(data []byte) error {
	var raw mealPreferencesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Decisions = raw.Decisions
	p.NextSeq = raw.NextSeq
	if len(p.Decisions) > 0 {
		return nil
	}
	for _, id := range raw.Liked {
		p.Record(id, DecisionLiked, time.Time{})
	}
	for _, id := range raw.Disliked {
		p.Record(id, DecisionDisliked, time.Time{})
	}
	return nil
}

// Member is one of the two household slots. An empty UID means the slot is free.
type Member struct {
	UID             string          `json:"uid"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	MealPreferences MealPreferences `json:"mealPreferences"`
}

// Occupied reports whether a user holds the slot.
func (m Member) Occupied() bool {
	return m.UID != ""
}

// Members are the two slots of a household.
type Members struct {
	User1 Member `json:"user1"`
	User2 Member `json:"user2"`
}

// Get returns a pointer to the member in slot, or nil for an unknown slot.
func (m *Members) Get(slot Slot) *Member {
	switch slot {
	case SlotUser1:
		return &m.User1
	case SlotUser2:
		return &m.User2
	}
	return nil
}

// SlotOf returns the slot held by uid.
func (m Members) SlotOf(uid string) (Slot, bool) {
	if uid == "" {
		return "", false
	}
	switch uid {
	case m.User1.UID:
		return SlotUser1, true
	case m.User2.UID:
		return SlotUser2, true
	}
	return "", false
}

// SessionStatus is the state of the current planning session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
)

// Session is the shared weekly planning session of a household.
type Session struct {
	MatchedMeals []Recipe      `json:"matchedMeals"`
	Status       SessionStatus `json:"status"`
	StartedAt    time.Time     `json:"startDate"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	ShoppingList *ShoppingList `json:"shoppingList,omitempty"`
}

// NewSession returns an empty pending session.
func NewSession(now time.Time) Session {
	return Session{
		MatchedMeals: []Recipe{},
		Status:       SessionPending,
		StartedAt:    now,
	}
}

// HasMatch reports whether recipeID is already in the matched set.
func (s Session) HasMatch(recipeID string) bool {
	for _, r := range s.MatchedMeals {
		if r.ID == recipeID {
			return true
		}
	}
	return false
}

// FindMatch returns the matched snapshot of recipeID.
func (s Session) FindMatch(recipeID string) (Recipe, bool) {
	for _, r := range s.MatchedMeals {
		if r.ID == recipeID {
			return r, true
		}
	}
	return Recipe{}, false
}

// Household is the shared planning unit of two collaborating users.
type Household struct {
	ID             string      `json:"id"`
	Name           string      `json:"householdName"`
	InviteCode     string      `json:"inviteCode"`
	Status         string      `json:"status"`
	Version        int64       `json:"version"`
	Users          Members     `json:"users"`
	CurrentSession Session     `json:"currentSession"`
	WeeklyPlans    WeeklyPlans `json:"weeklyPlans"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// MemberCount returns how many slots are occupied.
func (h *Household) MemberCount() int {
	n := 0
	if h.Users.User1.Occupied() {
		n++
	}
	if h.Users.User2.Occupied() {
		n++
	}
	return n
}
