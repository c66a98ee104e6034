package trophy

import (
	"sort"
	"time"

	"gh-trophy/internal/stats"
)

// Rank is the achievement tier shown on a trophy card.
type Rank string

const (
	RankSecret  Rank = "SECRET"
	RankSSS     Rank = "SSS"
	RankSS      Rank = "SS"
	RankS       Rank = "S"
	RankAAA     Rank = "AAA"
	RankAA      Rank = "AA"
	RankA       Rank = "A"
	RankB       Rank = "B"
	RankC       Rank = "C"
	RankUnknown Rank = "?"
)

// rankPriority orders ranks for display, best first. Secret trophies lead the
// grid when earned.
var rankPriority = map[Rank]int{
	RankSecret:  0,
	RankSSS:     1,
	RankSS:      2,
	RankS:       3,
	RankAAA:     4,
	RankAA:      5,
	RankA:       6,
	RankB:       7,
	RankC:       8,
	RankUnknown: 9,
}

// Trophy is one scored achievement.
type Trophy struct {
	Title  string
	Rank   Rank
	Score  int
	Hidden bool
}

// rankStep pairs a rank with the minimum score that earns it.
type rankStep struct {
	rank Rank
	min  int
}

// definition describes a base trophy category and its rank thresholds,
// listed best to worst.
type definition struct {
	title string
	steps []rankStep
}

var definitions = []definition{
	{
		title: "Commits",
		steps: []rankStep{
			{RankSSS, 4000}, {RankSS, 2000}, {RankS, 1000}, {RankAAA, 500},
			{RankAA, 200}, {RankA, 100}, {RankB, 50}, {RankC, 1},
		},
	},
	{
		title: "Followers",
		steps: []rankStep{
			{RankSSS, 1000}, {RankSS, 400}, {RankS, 200}, {RankAAA, 100},
			{RankAA, 50}, {RankA, 20}, {RankB, 10}, {RankC, 1},
		},
	},
	{
		title: "Stars",
		steps: []rankStep{
			{RankSSS, 2000}, {RankSS, 700}, {RankS, 200}, {RankAAA, 100},
			{RankAA, 50}, {RankA, 30}, {RankB, 10}, {RankC, 1},
		},
	},
	{
		title: "PullRequests",
		steps: []rankStep{
			{RankSSS, 1000}, {RankSS, 500}, {RankS, 200}, {RankAAA, 100},
			{RankAA, 50}, {RankA, 20}, {RankB, 10}, {RankC, 1},
		},
	},
	{
		title: "Issues",
		steps: []rankStep{
			{RankSSS, 1000}, {RankSS, 500}, {RankS, 200}, {RankAAA, 100},
			{RankAA, 50}, {RankA, 20}, {RankB, 10}, {RankC, 1},
		},
	},
	{
		title: "Reviews",
		steps: []rankStep{
			{RankSSS, 70}, {RankSS, 57}, {RankS, 45}, {RankAAA, 30},
			{RankAA, 20}, {RankA, 8}, {RankB, 3}, {RankC, 1},
		},
	},
	{
		title: "Repositories",
		steps: []rankStep{
			{RankSSS, 100}, {RankSS, 90}, {RankS, 80}, {RankAAA, 50},
			{RankAA, 30}, {RankA, 20}, {RankB, 10}, {RankC, 1},
		},
	},
}

// Secret trophy gates.
const (
	multiLanguageMin = 10
	organizationsMin = 3
	ancientYearsMin  = 10
	hoursPerYear     = 24 * 365
)

// Evaluate scores every trophy category against the profile stats and returns
// the trophies sorted best rank first. Secret trophies appear only when
// earned; base trophies always appear, at rank "?" when the score is zero.
func Evaluate(s *stats.Stats, now time.Time) []Trophy {
	scores := map[string]int{
		"Commits":      s.Commits,
		"Followers":    s.Followers,
		"Stars":        s.Stargazers,
		"PullRequests": s.PullRequests,
		"Issues":       s.Issues,
		"Reviews":      s.Reviews,
		"Repositories": s.Repositories,
	}

	trophies := make([]Trophy, 0, len(definitions)+3)
	for _, def := range definitions {
		score := scores[def.title]
		trophies = append(trophies, Trophy{
			Title: def.title,
			Rank:  rankFor(def.steps, score),
			Score: score,
		})
	}

	if s.Languages >= multiLanguageMin {
		trophies = append(trophies, Trophy{Title: "MultiLanguage", Rank: RankSecret, Score: s.Languages, Hidden: true})
	}
	if s.Organizations >= organizationsMin {
		trophies = append(trophies, Trophy{Title: "Organizations", Rank: RankSecret, Score: s.Organizations, Hidden: true})
	}
	if !s.CreatedAt.IsZero() {
		years := int(now.Sub(s.CreatedAt).Hours() / hoursPerYear)
		if years >= ancientYearsMin {
			trophies = append(trophies, Trophy{Title: "AncientUser", Rank: RankSecret, Score: years, Hidden: true})
		}
	}

	sort.SliceStable(trophies, func(i, j int) bool {
		return rankPriority[trophies[i].Rank] < rankPriority[trophies[j].Rank]
	})
	return trophies
}

// rankFor resolves a score against descending thresholds.
func rankFor(steps []rankStep, score int) Rank {
	for _, step := range steps {
		if score >= step.min {
			return step.rank
		}
	}
	return RankUnknown
}

// filterByTitle keeps only the trophies whose title appears in the requested
// list. Matching is case-insensitive.
func filterByTitle(trophies []Trophy, titles map[string]bool) []Trophy {
	var out []Trophy
	for _, t := range trophies {
		if titles[normalizeKey(t.Title)] {
			out = append(out, t)
		}
	}
	return out
}

// filterByRank keeps only the trophies whose rank appears in the requested
// list.
func filterByRank(trophies []Trophy, ranks map[string]bool) []Trophy {
	var out []Trophy
	for _, t := range trophies {
		if ranks[normalizeKey(string(t.Rank))] {
			out = append(out, t)
		}
	}
	return out
}
