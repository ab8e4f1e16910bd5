package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/avstrong/staybook/internal/calendar"
)

func left(n int) *int { return &n }

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		check RoomCheck
		units int
		want  State
	}{
		{name: "available without count", check: RoomCheck{Available: true}, units: 3, want: StateAvailable},
		{name: "enough units", check: RoomCheck{Available: true, UnitsLeft: left(3)}, units: 3, want: StateAvailable},
		{name: "too few units", check: RoomCheck{Available: true, UnitsLeft: left(1)}, units: 2, want: StateUnavailable},
		{name: "sold out", check: RoomCheck{Available: false, Message: "Sold out"}, units: 1, want: StateUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.check, tc.units)
			if got.State != tc.want {
				t.Fatalf("expected %v, got %+v", tc.want, got)
			}
			if got.State == StateUnavailable && got.Message == "" {
				t.Fatal("unavailable results must explain why")
			}
		})
	}
}

func TestEvaluate_ExplainsShortfall(t *testing.T) {
	got := Evaluate(RoomCheck{Available: true, UnitsLeft: left(1)}, 2)
	if got.Message != "Only 1 left for the selected dates" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestReduceRoomResults(t *testing.T) {
	results := []RoomCheck{
		{RoomTypeID: "std", Available: false},
		{RoomTypeID: "dlx", Available: true, UnitsLeft: left(4)},
	}

	if got := ReduceRoomResults(results, "dlx", 2); got.State != StateAvailable || *got.UnitsLeft != 4 {
		t.Fatalf("expected dlx to be available, got %+v", got)
	}
	if got := ReduceRoomResults(results, "std", 1); got.State != StateUnavailable {
		t.Fatalf("expected std to be unavailable, got %+v", got)
	}
	if got := ReduceRoomResults(results, "suite", 1); got.State != StateFailed || got.Bookable() {
		t.Fatalf("a missing room must fail closed, got %+v", got)
	}
	if got := ReduceRoomResults(nil, "suite", 1); got.State != StateFailed {
		t.Fatalf("empty answer must fail closed, got %+v", got)
	}
	if got := ReduceRoomResults([]RoomCheck{{Available: true}}, "suite", 1); got.State != StateAvailable {
		t.Fatalf("single untagged answer applies to the requested room, got %+v", got)
	}
}

func TestFromError(t *testing.T) {
	got := FromError(errors.New("dial tcp: timeout"))
	if got.State != StateFailed || got.Message != MsgVerifyFailed || got.Bookable() {
		t.Fatalf("unexpected result %+v", got)
	}
	if FromError(nil).Bookable() {
		t.Fatal("an unchecked result must not be bookable")
	}
}

func TestQueryKey(t *testing.T) {
	q := Query{
		PropertyID: "p1",
		RoomTypeID: "r1",
		CheckIn:    calendar.New(2024, time.March, 1),
		CheckOut:   calendar.New(2024, time.March, 3),
		Rooms:      2,
	}

	if q.Key() != "p1/r1/2024-03-01/2024-03-03/2" {
		t.Fatalf("unexpected key %q", q.Key())
	}

	other := q
	other.Rooms = 3
	if other.Key() == q.Key() {
		t.Fatal("different unit counts must produce different keys")
	}
}
