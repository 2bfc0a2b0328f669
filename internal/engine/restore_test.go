package engine

import (
	"context"
	"testing"

	"oiobot/internal/models"
)

func pendingRes(ref, linkID string, direction models.Direction, price, stopLoss, takeProfit float64) models.Resolution {
	return models.Resolution{
		Ref:    ref,
		Status: models.RefStatusPending,
		Tag:    "oio-bot",
		LinkID: linkID,
		Pending: &models.PendingOrder{
			Ref:        ref,
			LinkID:     linkID,
			Direction:  direction,
			Price:      price,
			StopLoss:   stopLoss,
			TakeProfit: takeProfit,
			Tag:        "oio-bot",
		},
	}
}

func positionRes(ref, linkID string, direction models.Direction, entry, volume, stopLoss, takeProfit float64) models.Resolution {
	return models.Resolution{
		Ref:    ref,
		Status: models.RefStatusPosition,
		Tag:    "oio-bot",
		LinkID: linkID,
		Position: &models.Position{
			Ref:        ref,
			LinkID:     linkID,
			Direction:  direction,
			EntryPrice: entry,
			Volume:     volume,
			StopLoss:   stopLoss,
			TakeProfit: takeProfit,
			Tag:        "oio-bot",
		},
	}
}

func TestRestoreNoOpenRefs(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	e.restoreCycle(context.Background())

	if e.cycle.Active {
		t.Error("expected idle start without open refs")
	}
}

func TestRestorePendingEntryPair(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	gw.openRefs = []models.Resolution{
		pendingRes("t1", "oio-bot-100-buy", models.DirectionLong, 10.00001, 8, 10.00031),
		pendingRes("t2", "oio-bot-100-sell", models.DirectionShort, 7.99999, 10, 7.99969),
	}

	e.restoreCycle(context.Background())

	if !e.cycle.Active || e.cycle.ID != 100 {
		t.Fatalf("expected active cycle 100, got active=%v id=%d", e.cycle.Active, e.cycle.ID)
	}
	if e.cycle.BuyRef != "t1" || e.cycle.SellRef != "t2" {
		t.Errorf("expected refs t1/t2, got %s/%s", e.cycle.BuyRef, e.cycle.SellRef)
	}
	if e.cycle.EntryHigh != 10 || e.cycle.EntryLow != 8 {
		t.Errorf("expected pattern bounds 10/8, got %v/%v", e.cycle.EntryHigh, e.cycle.EntryLow)
	}
	if e.cycle.Midpoint != 9 {
		t.Errorf("expected midpoint 9, got %v", e.cycle.Midpoint)
	}
	if e.cycle.State() != StatePendingEntry {
		t.Errorf("expected PENDING_ENTRY, got %s", e.cycle.State())
	}
}

func TestRestoreChasePending(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	gw.openRefs = []models.Resolution{
		positionRes("t1", "oio-bot-100-buy", models.DirectionLong, 10.00001, 0.1, 8, 10.00031),
		pendingRes("t3", "oio-bot-100-chase", models.DirectionLong, 9, 8, 9.0003),
	}

	e.restoreCycle(context.Background())

	if e.cycle.FirstFilledRef != "t1" || e.cycle.FirstFilledDirection != models.DirectionLong {
		t.Errorf("expected first leg t1 LONG, got %s %s", e.cycle.FirstFilledRef, e.cycle.FirstFilledDirection)
	}
	if e.cycle.ChaseRef != "t3" {
		t.Errorf("expected chase ref t3, got %s", e.cycle.ChaseRef)
	}
	if e.cycle.Midpoint != 9 {
		t.Errorf("expected midpoint 9 from chase price, got %v", e.cycle.Midpoint)
	}
	if e.cycle.TakeProfitsAdjusted {
		t.Error("expected tp adjustment flag false with pending chase")
	}
	if e.cycle.State() != StateChasePending {
		t.Errorf("expected CHASE_PENDING, got %s", e.cycle.State())
	}
}

func TestRestoreBothLegsWithSharedTP(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	gw.openRefs = []models.Resolution{
		positionRes("t1", "oio-bot-100-buy", models.DirectionLong, 10.00001, 0.1, 8, 9.50031),
		positionRes("t3", "oio-bot-100-chase", models.DirectionLong, 9.00001, 0.1, 8, 9.50031),
	}

	e.restoreCycle(context.Background())

	if !e.cycle.TakeProfitsAdjusted {
		t.Error("expected shared TP to restore the adjusted flag")
	}
	if e.cycle.State() != StateBothLegsFilled {
		t.Errorf("expected BOTH_LEGS_FILLED, got %s", e.cycle.State())
	}
}

func TestRestoreDivergentTPStaysUnadjusted(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	gw.openRefs = []models.Resolution{
		positionRes("t1", "oio-bot-100-buy", models.DirectionLong, 10.00001, 0.1, 8, 10.00031),
		positionRes("t3", "oio-bot-100-chase", models.DirectionLong, 9.00001, 0.1, 8, 9.0003),
	}

	e.restoreCycle(context.Background())

	if e.cycle.TakeProfitsAdjusted {
		t.Error("expected divergent TPs to leave the adjusted flag false")
	}
	if e.cycle.State() != StateChasePending {
		t.Errorf("expected CHASE_PENDING, got %s", e.cycle.State())
	}
}

func TestRestorePicksNewestCycle(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	gw.openRefs = []models.Resolution{
		pendingRes("t1", "oio-bot-100-buy", models.DirectionLong, 10.00001, 8, 10.00031),
		pendingRes("t5", "oio-bot-200-buy", models.DirectionLong, 11.00001, 9, 11.00031),
		pendingRes("t6", "oio-bot-200-sell", models.DirectionShort, 8.99999, 11, 8.99969),
	}

	e.restoreCycle(context.Background())

	if e.cycle.ID != 200 {
		t.Errorf("expected newest cycle 200 restored, got %d", e.cycle.ID)
	}
	if e.cycle.BuyRef != "t5" || e.cycle.SellRef != "t6" {
		t.Errorf("expected refs t5/t6, got %s/%s", e.cycle.BuyRef, e.cycle.SellRef)
	}
}

func TestRestoreSkipsForeignLinkIDs(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(gw, &fakeAnnotator{})

	foreign := pendingRes("t9", "another-bot-300-buy", models.DirectionLong, 12, 11, 13)
	foreign.Tag = "another-bot"
	gw.openRefs = []models.Resolution{foreign}

	e.restoreCycle(context.Background())

	if e.cycle.Active {
		t.Error("expected foreign link ids to be ignored on restore")
	}
}
