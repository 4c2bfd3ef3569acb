// Package mining looks for applications that are opened together within a
// phone session. Every session is one transaction; its applications are the
// items.
package mining

import (
	"context"
	"fmt"

	"github.com/jengzang/mobiledna-go/internal/dataset"
)

// OrderedStatistic is one direction of a rule: having Base, the session also
// contains Add.
type OrderedStatistic struct {
	Base       []string `json:"base"`
	Add        []string `json:"add"`
	Confidence float64  `json:"confidence"`
	Lift       float64  `json:"lift"`
}

// Rule is a frequent itemset together with the orderings that passed the
// confidence and lift thresholds
type Rule struct {
	Items      []string           `json:"items"`
	Support    float64            `json:"support"`
	Statistics []OrderedStatistic `json:"ordered_statistics"`
}

// Miner turns transactions into association rules
type Miner interface {
	Mine(ctx context.Context, transactions [][]string) ([]Rule, error)
}

// Transactions returns the application list of every session, one entry per
// subject and session
func Transactions(ae *dataset.AppEvents) [][]string {
	_, seqs := ae.SessionSequences()
	return seqs
}

// AssociationRules mines rules and keeps those spanning at least minLength
// applications. A minLength of zero or less keeps everything.
func AssociationRules(ctx context.Context, m Miner, transactions [][]string, minLength int) ([]Rule, error) {
	if m == nil {
		return nil, fmt.Errorf("no miner configured")
	}
	rules, err := m.Mine(ctx, transactions)
	if err != nil {
		return nil, fmt.Errorf("mine association rules: %w", err)
	}
	if minLength <= 0 {
		return rules, nil
	}
	out := rules[:0]
	for _, r := range rules {
		if len(r.Items) >= minLength {
			out = append(out, r)
		}
	}
	return out, nil
}
