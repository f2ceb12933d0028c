package reddit

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Submission holds thread-level metrics from the first listing.
type Submission struct {
	Score       *int
	NumComments *int
	UpvoteRatio *float64
	CreatedUTC  *float64
	Permalink   string
	Title       string
	Selftext    string
}

// RawComment is one comment from the second listing.
type RawComment struct {
	Score      int
	CreatedUTC *float64
	Author     string
	Body       string
	Permalink  string
}

// Thread is a parsed thread payload. Submission is nil when the payload had
// no usable first listing.
type Thread struct {
	Submission *Submission
	Comments   []RawComment
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submissionData struct {
	Score       *int     `json:"score"`
	NumComments *int     `json:"num_comments"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	CreatedUTC  *float64 `json:"created_utc"`
	Permalink   string   `json:"permalink"`
	Title       string   `json:"title"`
	Selftext    string   `json:"selftext"`
}

type commentData struct {
	Score      int      `json:"score"`
	CreatedUTC *float64 `json:"created_utc"`
	Author     *string  `json:"author"`
	Body       string   `json:"body"`
	Permalink  string   `json:"permalink"`
}

const (
	selftextLimit = 500
	bodyLimit     = 300
)

// ParseThread decodes the two-listing thread payload. Malformed parts are
// skipped rather than reported.
func ParseThread(raw json.RawMessage) Thread {
	var th Thread
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
		return th
	}

	var sub listing
	if err := json.Unmarshal(parts[0], &sub); err == nil && len(sub.Data.Children) > 0 {
		var d submissionData
		if err := json.Unmarshal(sub.Data.Children[0].Data, &d); err == nil {
			th.Submission = &Submission{
				Score:       d.Score,
				NumComments: d.NumComments,
				UpvoteRatio: d.UpvoteRatio,
				CreatedUTC:  d.CreatedUTC,
				Permalink:   d.Permalink,
				Title:       d.Title,
				Selftext:    truncRunes(d.Selftext, selftextLimit),
			}
		}
	}

	if len(parts) < 2 {
		return th
	}
	var com listing
	if err := json.Unmarshal(parts[1], &com); err != nil {
		return th
	}
	for _, ch := range com.Data.Children {
		if ch.Kind != "t1" {
			continue
		}
		var d commentData
		if err := json.Unmarshal(ch.Data, &d); err != nil || d.Body == "" {
			continue
		}
		author := "[deleted]"
		if d.Author != nil {
			author = *d.Author
		}
		th.Comments = append(th.Comments, RawComment{
			Score:      d.Score,
			CreatedUTC: d.CreatedUTC,
			Author:     author,
			Body:       truncRunes(d.Body, bodyLimit),
			Permalink:  d.Permalink,
		})
	}
	return th
}

// TopComments drops deleted authors and returns the n highest-scored
// comments, keeping input order among equal scores.
func TopComments(comments []RawComment, n int) []RawComment {
	valid := make([]RawComment, 0, len(comments))
	for _, c := range comments {
		if c.Author == "[deleted]" || c.Author == "[removed]" {
			continue
		}
		valid = append(valid, c)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Score > valid[j].Score })
	if n >= 0 && len(valid) > n {
		valid = valid[:n]
	}
	return valid
}

var boilerplate = []*regexp.Regexp{
	regexp.MustCompile(`^(this|same|agreed|exactly|yep|nope|yes|no|thanks|thank you)\.?$`),
	regexp.MustCompile(`^lol|lmao|haha`),
	regexp.MustCompile(`^\[deleted\]`),
	regexp.MustCompile(`^\[removed\]`),
}

const (
	minInsightLen  = 30
	insightLen     = 150
	sentenceMinCut = 50
	sentenceEnders = ".!?"
)

// ExtractInsights picks up to limit substantive comment excerpts, scanning
// at most 2*limit comments.
func ExtractInsights(comments []RawComment, limit int) []string {
	insights := []string{}
	scan := comments
	if len(scan) > 2*limit {
		scan = scan[:2*limit]
	}
	for _, c := range scan {
		body := strings.TrimSpace(c.Body)
		if len([]rune(body)) < minInsightLen {
			continue
		}
		if isBoilerplate(strings.ToLower(body)) {
			continue
		}
		insights = append(insights, clipInsight(body))
		if len(insights) >= limit {
			break
		}
	}
	return insights
}

func isBoilerplate(lower string) bool {
	for _, re := range boilerplate {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// clipInsight cuts body to insightLen runes, preferring the first sentence
// end past sentenceMinCut.
func clipInsight(body string) string {
	r := []rune(body)
	if len(r) <= insightLen {
		return body
	}
	head := r[:insightLen]
	for i, ch := range head {
		if i > sentenceMinCut && strings.ContainsRune(sentenceEnders, ch) {
			return string(head[:i+1])
		}
	}
	return strings.TrimRightFunc(string(head), isSpace) + "..."
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func truncRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
