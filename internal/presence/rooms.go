package presence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const roomIDLength = 8

// RoomSnapshot is a copy of a room's state, safe to hand out of the lock.
type RoomSnapshot struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// RoomLeave reports the outcome of removing a member from one room.
// Members is empty when Deleted is true.
type RoomLeave struct {
	RoomID   string
	RoomName string
	Members  []string
	Deleted  bool
}

type room struct {
	id      string
	name    string
	members []string
}

func (r *room) snapshot() RoomSnapshot {
	return RoomSnapshot{
		ID:      r.id,
		Name:    r.name,
		Members: append([]string{}, r.members...),
	}
}

// IDGenerator produces candidate room identifiers. Candidates may collide.
type IDGenerator func() string

// ShortUUID returns the first eight characters of a random UUID.
func ShortUUID() string {
	return uuid.NewString()[:roomIDLength]
}

// RoomRegistry tracks rooms and their members. A room never exists with an
// empty member set. It is not safe for concurrent use; the Directory lock
// guards it.
type RoomRegistry struct {
	rooms map[string]*room
	newID IDGenerator
}

// NewRoomRegistry returns an empty registry. A nil generator selects ShortUUID.
func NewRoomRegistry(newID IDGenerator) *RoomRegistry {
	if newID == nil {
		newID = ShortUUID
	}
	return &RoomRegistry{
		rooms: make(map[string]*room),
		newID: newID,
	}
}

// Create opens a new room with creator as its only member.
func (r *RoomRegistry) Create(displayName, creator string) (RoomSnapshot, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return RoomSnapshot{}, fmt.Errorf("room name: %w", ErrNameEmpty)
	}
	if creator == "" {
		return RoomSnapshot{}, fmt.Errorf("room creator: %w", ErrNameEmpty)
	}

	id := r.newID()
	for {
		if _, exists := r.rooms[id]; !exists && id != "" {
			break
		}
		id = r.newID()
	}

	created := &room{id: id, name: displayName, members: []string{creator}}
	r.rooms[id] = created
	return created.snapshot(), nil
}

// Join adds member to the room. Joining a room twice keeps a single entry.
func (r *RoomRegistry) Join(roomID, member string) (RoomSnapshot, error) {
	found, ok := r.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, fmt.Errorf("join %q: %w", roomID, ErrRoomNotFound)
	}
	if !lo.Contains(found.members, member) {
		found.members = append(found.members, member)
	}
	return found.snapshot(), nil
}

// Leave removes member from the room and deletes the room once it is empty.
// It reports false when the room does not exist or member was not in it.
func (r *RoomRegistry) Leave(roomID, member string) (RoomLeave, bool) {
	found, ok := r.rooms[roomID]
	if !ok || !lo.Contains(found.members, member) {
		return RoomLeave{}, false
	}
	return r.remove(found, member), true
}

// LeaveAll removes member from every room it belongs to, in room id order.
func (r *RoomRegistry) LeaveAll(member string) []RoomLeave {
	var left []RoomLeave
	for _, id := range r.sortedIDs() {
		found := r.rooms[id]
		if lo.Contains(found.members, member) {
			left = append(left, r.remove(found, member))
		}
	}
	return left
}

func (r *RoomRegistry) remove(found *room, member string) RoomLeave {
	found.members = lo.Without(found.members, member)
	result := RoomLeave{RoomID: found.id, RoomName: found.name}
	if len(found.members) == 0 {
		delete(r.rooms, found.id)
		result.Deleted = true
		return result
	}
	result.Members = append([]string{}, found.members...)
	return result
}

// Get returns a snapshot of the room.
func (r *RoomRegistry) Get(roomID string) (RoomSnapshot, bool) {
	found, ok := r.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, false
	}
	return found.snapshot(), true
}

// All returns every room in id order.
func (r *RoomRegistry) All() []RoomSnapshot {
	return lo.Map(r.sortedIDs(), func(id string, _ int) RoomSnapshot {
		return r.rooms[id].snapshot()
	})
}

func (r *RoomRegistry) Len() int {
	return len(r.rooms)
}

func (r *RoomRegistry) sortedIDs() []string {
	ids := lo.Keys(r.rooms)
	sort.Strings(ids)
	return ids
}
