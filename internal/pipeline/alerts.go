package pipeline

import (
	"fmt"
	"math"

	"github.com/theirongolddev/rupee/internal/model"
)

// BudgetAlerts emits one notification per budget at warning or danger.
func BudgetAlerts(budgets []model.Budget) []model.Notification {
	var out []model.Notification
	for _, b := range budgets {
		st := BudgetStatus(b)
		switch st.Severity {
		case model.SeverityDanger:
			out = append(out, model.Notification{
				ID:      "budget:" + b.Key() + ":danger",
				Message: b.Category + " budget exceeded!",
				Kind:    model.NotifyWarning,
			})
		case model.SeverityWarning:
			out = append(out, model.Notification{
				ID:      "budget:" + b.Key() + ":warning",
				Message: fmt.Sprintf("%s budget at %d%%", b.Category, int(math.Round(st.Percentage))),
				Kind:    model.NotifyInfo,
			})
		}
	}
	return out
}

// GoalMilestones emits a success notification for every achieved goal.
func GoalMilestones(goals []model.Goal) []model.Notification {
	var out []model.Notification
	for _, g := range goals {
		if GoalProgress(g).Achieved {
			out = append(out, model.Notification{
				ID:      "goal:" + g.ID,
				Message: g.Name + " goal reached!",
				Kind:    model.NotifySuccess,
			})
		}
	}
	return out
}

// MergeNotifications appends generated alerts to stored ones. A generated
// alert whose id is already stored refreshes that entry's message and kind
// but keeps its read flag, so "Transport budget at 85%" tracks the spend.
func MergeNotifications(stored []model.Notification, generated ...[]model.Notification) []model.Notification {
	index := make(map[string]int, len(stored))
	out := append([]model.Notification(nil), stored...)
	for i, n := range out {
		index[n.ID] = i
	}
	for _, group := range generated {
		for _, n := range group {
			if i, ok := index[n.ID]; ok {
				out[i].Message = n.Message
				out[i].Kind = n.Kind
				continue
			}
			index[n.ID] = len(out)
			out = append(out, n)
		}
	}
	return out
}

// Unread counts notifications not yet marked read.
func Unread(ns []model.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}
