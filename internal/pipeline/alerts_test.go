package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

func TestBudgetAlerts(t *testing.T) {
	budgets := []model.Budget{
		{Category: "Food", Limit: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(650)},
		{Category: "Transport", Limit: decimal.NewFromInt(500), Spent: decimal.NewFromInt(460)},
		{Category: "Rent", Limit: decimal.NewFromInt(1200), Spent: decimal.NewFromInt(1200)},
	}
	got := BudgetAlerts(budgets)
	if len(got) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(got), got)
	}
	if got[0].Message != "Transport budget at 92%" || got[0].Kind != model.NotifyInfo {
		t.Errorf("got %+v", got[0])
	}
	if got[1].Message != "Rent budget exceeded!" || got[1].Kind != model.NotifyWarning {
		t.Errorf("got %+v", got[1])
	}
}

func TestGoalMilestonesAndMerge(t *testing.T) {
	goals := []model.Goal{
		{ID: "101", Name: "Emergency Fund", Target: decimal.NewFromInt(5000), Current: decimal.NewFromInt(5000)},
		{ID: "102", Name: "Vacation", Target: decimal.NewFromInt(2000), Current: decimal.NewFromInt(850)},
	}
	milestones := GoalMilestones(goals)
	if len(milestones) != 1 || milestones[0].ID != "goal:101" {
		t.Fatalf("got %+v", milestones)
	}

	stored := []model.Notification{{ID: "goal:101", Message: "Emergency Fund goal reached!", Read: true}}
	merged := MergeNotifications(stored, milestones)
	if len(merged) != 1 || !merged[0].Read {
		t.Errorf("merge should keep the stored read flag, got %+v", merged)
	}
	if Unread(merged) != 0 {
		t.Errorf("Unread = %d, want 0", Unread(merged))
	}
}

func TestMergeNotificationsRefreshesText(t *testing.T) {
	stored := []model.Notification{
		{ID: "budget:transport:warning", Message: "Transport budget at 85%", Kind: model.NotifyInfo, Read: true},
		{ID: "welcome", Message: "Welcome!", Kind: model.NotifySuccess},
	}
	generated := BudgetAlerts([]model.Budget{
		{Category: "Transport", Limit: decimal.NewFromInt(100), Spent: decimal.NewFromInt(93)},
	})

	merged := MergeNotifications(stored, generated)
	if len(merged) != 2 {
		t.Fatalf("merged = %+v", merged)
	}
	if merged[0].Message != "Transport budget at 93%" || !merged[0].Read {
		t.Errorf("refreshed alert = %+v", merged[0])
	}
	if stored[0].Message != "Transport budget at 85%" {
		t.Error("merge must not modify the stored slice")
	}
	if merged[1] != stored[1] {
		t.Errorf("unrelated notification changed: %+v", merged[1])
	}
}
