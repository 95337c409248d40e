package ngram

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// profileFrom builds a finalized profile from raw grams, skipping empty ones.
func profileFrom(label string, grams []string) *Profile {
	p := NewProfile(label)
	for _, g := range grams {
		if g == "" {
			continue
		}
		_, _ = p.Add(g)
	}
	p.Finalize()
	return p
}

// genGrams produces up to 1200 short lowercase strings: enough distinct ones
// to push a profile past Cutoff, with frequent repeats among the short ones.
func genGrams() gopter.Gen {
	return gen.IntRange(0, 1200).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), gen.RegexMatch(`[a-z]{1,3}`))
	}, reflect.TypeOf([]string{}))
}

func distinct(grams []string) int {
	seen := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		if g != "" {
			seen[g] = struct{}{}
		}
	}
	return len(seen)
}

func TestProfile_DistanceProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("distance is never negative", prop.ForAll(
		func(a, b []string) bool {
			d, err := profileFrom("a", a).Distance(profileFrom("b", b))
			return err == nil && d >= 0
		},
		genGrams(), genGrams(),
	))

	properties.Property("distance to itself is zero", prop.ForAll(
		func(a []string) bool {
			p := profileFrom("a", a)
			d, err := p.Distance(p)
			return err == nil && d == 0
		},
		genGrams(),
	))

	properties.Property("distance is bounded by size times penalty", prop.ForAll(
		func(a, b []string) bool {
			p := profileFrom("a", a)
			d, err := p.Distance(profileFrom("b", b))
			return err == nil && d <= p.Size()*MaxOutOfPlace
		},
		genGrams(), genGrams(),
	))

	properties.TestingRun(t)
}

func TestProfile_RankingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ranks are 0..size-1 with non-increasing counts", prop.ForAll(
		func(grams []string) bool {
			p := profileFrom("", grams)
			ranked := p.Ranked()
			if len(ranked) != p.Size() || p.Size() > Cutoff {
				return false
			}
			for i, g := range ranked {
				if g.Rank() != i {
					return false
				}
				if i > 0 && g.Count() > ranked[i-1].Count() {
					return false
				}
			}
			return true
		},
		genGrams(),
	))

	properties.Property("size is min(distinct, Cutoff)", prop.ForAll(
		func(grams []string) bool {
			return profileFrom("", grams).Size() == min(distinct(grams), Cutoff)
		},
		genGrams(),
	))

	properties.Property("pruned n-grams are never more frequent than kept ones", prop.ForAll(
		func(grams []string) bool {
			counts := make(map[string]int)
			for _, g := range grams {
				if g != "" {
					counts[g]++
				}
			}
			p := profileFrom("", grams)
			ranked := p.Ranked()
			if len(ranked) == 0 {
				return true
			}
			lowest := ranked[len(ranked)-1].Count()
			for g, c := range counts {
				if _, kept, _ := p.RankOf(g); !kept && c > lowest {
					return false
				}
			}
			return true
		},
		genGrams(),
	))

	properties.Property("finalize is idempotent", prop.ForAll(
		func(grams []string) bool {
			p := profileFrom("", grams)
			before := p.String()
			p.Finalize()
			return before == p.String()
		},
		genGrams(),
	))

	properties.TestingRun(t)
}
