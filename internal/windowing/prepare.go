package windowing

import "github.com/petasbytes/go-swarm/message"

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for included groups only.
// - Budget: the input token budget used.
// - IncludedGroups: number of groups included.
// - SkippedGroups: total groups minus IncludedGroups.
// - OverBudgetNewest: true when the newest single group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns a suffix of msgs (oldest→newest) that fits within
// budget using the TokenCounter, without splitting groups.
//
// Rules:
// - Include whole groups scanning newest→oldest while total ≤ budget.
// - If the newest group alone exceeds budget, return an empty window and set OverBudgetNewest.
// - If budget ≤ 0, return an empty window (OverBudgetNewest set when any groups exist).
// - A function_call_output left at the head of the window without its call is dropped.
func PrepareSendWindow(msgs []message.Message, budget int, c TokenCounter) ([]message.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupBlocks(msgs)

	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	total := 0
	startIdx := len(groups) // exclusive sentinel; lowered as groups are included
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if startIdx == len(groups) && cost > budget {
			return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
		}
		if total+cost > budget {
			break
		}
		total += cost
		startIdx = gi
	}

	// Orphaned outputs would reference calls outside the window.
	for startIdx < len(groups)-1 && isOrphanOutput(groups[startIdx], msgs) {
		total -= c.CountGroup(groups[startIdx], msgs)
		startIdx++
	}

	included := len(groups) - startIdx
	return msgs[groups[startIdx].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}

func isOrphanOutput(g Group, msgs []message.Message) bool {
	return g.Kind == GroupSingleton && msgs[g.Start].IsFunctionCallOutput()
}
