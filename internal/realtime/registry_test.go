package realtime

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestRegistry_JoinIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", UserRoom("alice"))
	r.Join("conn-1", UserRoom("alice"))

	members := r.MembersOf(UserRoom("alice"))
	if len(members) != 1 || members[0] != "conn-1" {
		t.Fatalf("expected single membership, got: %v", members)
	}
	if room, ok := r.RoomOf("conn-1"); !ok || room != "user-alice" {
		t.Fatalf("expected conn-1 in user-alice, got: %q %v", room, ok)
	}
}

func TestRegistry_JoinMovesRooms(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", UserRoom("alice"))
	r.Join("conn-1", UserRoom("bob"))

	if r.RoomExists(UserRoom("alice")) {
		t.Fatalf("expected alice's room to be empty after move")
	}
	members := r.MembersOf(UserRoom("bob"))
	if len(members) != 1 || members[0] != "conn-1" {
		t.Fatalf("expected conn-1 solely in bob's room, got: %v", members)
	}
}

func TestRegistry_MultipleConnectionsSameUser(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", UserRoom("alice"))
	r.Join("conn-2", UserRoom("alice"))

	members := r.MembersOf(UserRoom("alice"))
	sort.Strings(members)
	if len(members) != 2 || members[0] != "conn-1" || members[1] != "conn-2" {
		t.Fatalf("expected both connections in the room, got: %v", members)
	}
}

func TestRegistry_LeaveCleansUp(t *testing.T) {
	r := NewRegistry()

	r.Join("conn-1", UserRoom("alice"))
	r.Join("conn-2", UserRoom("alice"))
	r.Leave("conn-1")

	members := r.MembersOf(UserRoom("alice"))
	if len(members) != 1 || members[0] != "conn-2" {
		t.Fatalf("expected only conn-2 to remain, got: %v", members)
	}
	if _, ok := r.RoomOf("conn-1"); ok {
		t.Fatalf("expected conn-1 to have no room after leave")
	}

	r.Leave("conn-2")
	if r.RoomExists(UserRoom("alice")) {
		t.Fatalf("expected room to disappear when last member leaves")
	}
}

func TestRegistry_LeaveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Leave("never-joined") // must not panic
}

func TestRegistry_MembersOfReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Join("conn-1", UserRoom("alice"))

	members := r.MembersOf(UserRoom("alice"))
	members[0] = "mutated"

	fresh := r.MembersOf(UserRoom("alice"))
	if len(fresh) != 1 || fresh[0] != "conn-1" {
		t.Fatalf("mutating a snapshot must not affect the registry, got: %v", fresh)
	}
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()
	const workers = 64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := fmt.Sprintf("conn-%d", i)
			for j := 0; j < 100; j++ {
				r.Join(conn, UserRoom(fmt.Sprintf("user-%d", j%3)))
			}
			r.Leave(conn)
		}(i)
	}
	wg.Wait()

	for j := 0; j < 3; j++ {
		if got := r.MembersOf(UserRoom(fmt.Sprintf("user-%d", j))); len(got) != 0 {
			t.Fatalf("expected empty rooms after all leaves, room %d has: %v", j, got)
		}
	}
}
