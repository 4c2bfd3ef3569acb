package mining

import (
	"context"
	"sort"
	"strings"
)

// Apriori is a level-wise frequent itemset miner
type Apriori struct {
	MinSupport    float64
	MinConfidence float64
	MinLift       float64
	// MaxLength caps the itemset size; zero means unbounded
	MaxLength int
}

// NewApriori returns a miner with the usual thresholds: support 0.005,
// confidence 0.5, lift 1.
func NewApriori() *Apriori {
	return &Apriori{MinSupport: 0.005, MinConfidence: 0.5, MinLift: 1}
}

type itemset []string

func (s itemset) key() string { return strings.Join(s, "\x00") }

type index struct {
	sets []map[string]bool
}

func newIndex(transactions [][]string) *index {
	ix := &index{sets: make([]map[string]bool, 0, len(transactions))}
	for _, t := range transactions {
		set := make(map[string]bool, len(t))
		for _, item := range t {
			set[item] = true
		}
		ix.sets = append(ix.sets, set)
	}
	return ix
}

// support is the share of transactions holding every item; the empty set has support 1
func (ix *index) support(items itemset) float64 {
	if len(ix.sets) == 0 {
		return 0
	}
	if len(items) == 0 {
		return 1
	}
	n := 0
	for _, set := range ix.sets {
		all := true
		for _, item := range items {
			if !set[item] {
				all = false
				break
			}
		}
		if all {
			n++
		}
	}
	return float64(n) / float64(len(ix.sets))
}

func (ix *index) items() []string {
	seen := make(map[string]bool)
	for _, set := range ix.sets {
		for item := range set {
			seen[item] = true
		}
	}
	out := make([]string, 0, len(seen))
	for item := range seen {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Mine implements Miner
func (a *Apriori) Mine(ctx context.Context, transactions [][]string) ([]Rule, error) {
	ix := newIndex(transactions)
	if len(ix.sets) == 0 {
		return nil, nil
	}

	supports := make(map[string]float64)
	var candidates []itemset
	for _, item := range ix.items() {
		candidates = append(candidates, itemset{item})
	}

	var rules []Rule
	for k := 1; len(candidates) > 0; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.MaxLength > 0 && k > a.MaxLength {
			break
		}

		var frequent []itemset
		for _, c := range candidates {
			s := ix.support(c)
			if s < a.MinSupport {
				continue
			}
			supports[c.key()] = s
			frequent = append(frequent, c)
		}
		for _, f := range frequent {
			if stats := a.orderedStatistics(ix, f, supports[f.key()]); len(stats) > 0 {
				rules = append(rules, Rule{Items: f, Support: supports[f.key()], Statistics: stats})
			}
		}
		candidates = nextCandidates(frequent, supports)
	}
	return rules, nil
}

// orderedStatistics evaluates every proper subset of items, the empty one
// included, as the base of a rule
func (a *Apriori) orderedStatistics(ix *index, items itemset, support float64) []OrderedStatistic {
	var out []OrderedStatistic
	for size := 0; size < len(items); size++ {
		for _, base := range combinations(items, size) {
			add := difference(items, base)
			confidence := support / ix.support(base)
			lift := confidence / ix.support(add)
			if confidence < a.MinConfidence || lift < a.MinLift {
				continue
			}
			out = append(out, OrderedStatistic{Base: base, Add: add, Confidence: confidence, Lift: lift})
		}
	}
	return out
}

// nextCandidates joins frequent k-itemsets into k+1-itemsets whose every
// k-subset is frequent
func nextCandidates(frequent []itemset, supports map[string]float64) []itemset {
	seen := make(map[string]bool)
	var out []itemset
	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			merged := union(frequent[i], frequent[j])
			if len(merged) != len(frequent[i])+1 || seen[merged.key()] {
				continue
			}
			seen[merged.key()] = true
			if allSubsetsFrequent(merged, supports) {
				out = append(out, merged)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

func allSubsetsFrequent(items itemset, supports map[string]float64) bool {
	for _, sub := range combinations(items, len(items)-1) {
		if _, ok := supports[sub.key()]; !ok {
			return false
		}
	}
	return true
}

// combinations returns the size-k subsets of sorted items, in lexical order
func combinations(items itemset, k int) []itemset {
	if k == 0 {
		return []itemset{{}}
	}
	var out []itemset
	var walk func(start int, acc itemset)
	walk = func(start int, acc itemset) {
		if len(acc) == k {
			out = append(out, append(itemset(nil), acc...))
			return
		}
		for i := start; i < len(items); i++ {
			walk(i+1, append(acc, items[i]))
		}
	}
	walk(0, make(itemset, 0, k))
	return out
}

func union(a, b itemset) itemset {
	set := make(map[string]bool, len(a)+len(b))
	for _, x := range a {
		set[x] = true
	}
	for _, x := range b {
		set[x] = true
	}
	out := make(itemset, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

func difference(items, remove itemset) itemset {
	drop := make(map[string]bool, len(remove))
	for _, x := range remove {
		drop[x] = true
	}
	out := make(itemset, 0, len(items)-len(remove))
	for _, x := range items {
		if !drop[x] {
			out = append(out, x)
		}
	}
	return out
}
