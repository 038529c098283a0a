package optimizer

import (
	"regexp"
	"strconv"
)

// EpisodeKey orders a file within its torrent. Files without a key do
// not take part in the episode ordering at all.
type EpisodeKey struct {
	Season  int
	Episode int
}

// A strategy is one naming convention the extractor understands. The
// group fields are submatch indices; a season of 0 means the convention
// carries no season and it defaults to 1.
type strategy struct {
	re      *regexp.Regexp
	season  int
	episode int
}

var strategies = []strategy{
	// S01E02
	{re: regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,3})`), season: 1, episode: 2},
	// 1x02
	{re: regexp.MustCompile(`(\d{1,2})[xX](\d{1,3})`), season: 1, episode: 2},
	// Season 1 Episode 2, Season 1 Ep. 2
	{re: regexp.MustCompile(`(?i)Season\s*(\d{1,2})(?:\s*Episode|\s*Ep\.?)\s*(\d{1,3})`), season: 1, episode: 2},
	// Ep 12, Episode 12
	{re: regexp.MustCompile(`(?i)Ep(?:isode)?\.?\s*(\d{1,3})`), episode: 1},
	// Anime releases like "[Subs] Title - 12": a bare number after a
	// separator, not itself followed by another digit.
	{re: regexp.MustCompile(`[\s\-_.]\(?(\d{1,3})(\D|$)`), episode: 1},
}

// ExtractEpisode parses a release file name into its ordering key.
// Strategies are tried in declaration order and the first match wins; a
// capture that does not parse as an integer counts as no match for that
// strategy.
func ExtractEpisode(name string) (EpisodeKey, bool) {
	for _, s := range strategies {
		m := s.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		episode, err := strconv.Atoi(m[s.episode])
		if err != nil {
			continue
		}
		season := 1
		if s.season > 0 {
			season, err = strconv.Atoi(m[s.season])
			if err != nil {
				continue
			}
		}
		return EpisodeKey{Season: season, Episode: episode}, true
	}
	return EpisodeKey{}, false
}
