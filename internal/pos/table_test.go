package pos

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var baseTime = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func tableOrder(table string, status OrderStatus, at time.Time) Order {
	o := testOrder(status)
	o.TableNumber = table
	o.CreatedAt = at
	return o
}

func TestDecideAction_NoActiveOrders(t *testing.T) {
	table := Table{Number: "T1", Status: TableAvailable}
	orders := []Order{
		tableOrder("T1", StatusServed, baseTime),
		tableOrder("T1", StatusCancelled, baseTime.Add(time.Minute)),
		tableOrder("T2", StatusPending, baseTime),
	}

	d := DecideAction(table, orders)
	if len(d.Choices) != 1 || d.Choices[0] != ActionStartNewOrder {
		t.Fatalf("choices: got %v, want [start-new-order]", d.Choices)
	}
	if d.Latest != nil {
		t.Errorf("latest should be nil, got %+v", d.Latest)
	}
	if d.Inconsistent {
		t.Error("available table with no orders flagged inconsistent")
	}
}

func TestDecideAction_ActiveOrders(t *testing.T) {
	table := Table{Number: "T3", Status: TableOccupied}
	older := tableOrder("T3", StatusCooking, baseTime)
	newer := tableOrder("T3", StatusReady, baseTime.Add(5*time.Minute))
	orders := []Order{newer, tableOrder("T3", StatusServed, baseTime.Add(time.Hour)), older}

	d := DecideAction(table, orders)
	want := []Action{ActionGenerateBillForLatest, ActionViewOrders}
	if len(d.Choices) != 2 || d.Choices[0] != want[0] || d.Choices[1] != want[1] {
		t.Fatalf("choices: got %v, want %v", d.Choices, want)
	}
	if d.Latest == nil || d.Latest.ID != newer.ID {
		t.Fatalf("latest: got %+v, want %s", d.Latest, newer.ID)
	}
	if len(d.Active) != 2 || d.Active[0].ID != newer.ID || d.Active[1].ID != older.ID {
		t.Errorf("active not newest first: %+v", d.Active)
	}
	if table.Status != TableOccupied || d.Table.Status != TableOccupied {
		t.Error("table status was rewritten")
	}
}

func TestDecideAction_IgnoresStoredStatus(t *testing.T) {
	order := tableOrder("T4", StatusPending, baseTime)
	for _, status := range []TableStatus{TableAvailable, TableReserved, TableCleaning} {
		d := DecideAction(Table{Number: "T4", Status: status}, []Order{order})
		if d.Choices[0] != ActionGenerateBillForLatest {
			t.Errorf("%s: choices %v, want bill/view", status, d.Choices)
		}
		if d.Table.Status != status {
			t.Errorf("%s: status rewritten to %s", status, d.Table.Status)
		}
	}
}

func TestDecideAction_OccupiedWithoutOrdersIsFlagged(t *testing.T) {
	d := DecideAction(Table{Number: "T5", Status: TableOccupied}, nil)
	if !d.Inconsistent {
		t.Error("expected inconsistency flag")
	}
	if d.Choices[0] != ActionStartNewOrder {
		t.Errorf("choices: got %v", d.Choices)
	}
}

func TestDecideAction_TakeawayOrdersNeverMatch(t *testing.T) {
	d := DecideAction(Table{Number: "", Status: TableAvailable}, []Order{tableOrder("", StatusPending, baseTime)})
	if len(d.Active) != 0 {
		t.Errorf("takeaway order attached to a table: %+v", d.Active)
	}
}

func TestDecision_Resolve(t *testing.T) {
	d := DecideAction(Table{Number: "T1"}, []Order{tableOrder("T1", StatusPending, baseTime)})

	got, err := d.Resolve(ActionViewOrders)
	if err != nil || got != ActionViewOrders {
		t.Fatalf("resolve view: got %v, %v", got, err)
	}
	if _, err := d.Resolve(ActionStartNewOrder); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestLatestOrder_TieBreaksByID(t *testing.T) {
	low := tableOrder("T1", StatusPending, baseTime)
	high := tableOrder("T1", StatusPending, baseTime)
	low.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high.ID = uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	for _, in := range [][]Order{{low, high}, {high, low}} {
		got := LatestOrder(in)
		if got == nil || got.ID != high.ID {
			t.Errorf("latest: got %v, want %s", got, high.ID)
		}
	}
	if LatestOrder(nil) != nil {
		t.Error("latest of empty slice should be nil")
	}
}
