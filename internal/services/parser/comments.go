package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

const (
	uploaderMarker   = "Uploader Comment"
	commentIDPrefix  = "comment_"
	basePrefix       = "Base +"
	editControlLabel = "Edit"
	lastEditedLabel  = "Last edited on"
)

var (
	voterPattern      = regexp.MustCompile(`^(.+?)\s+([+-]\d+)$`)
	moreVotersPattern = regexp.MustCompile(`and\s+(\d+)\s+more`)
	signedIntPattern  = regexp.MustCompile(`[+-]?\d+`)
)

// parseComments decodes every comment block in document order.
func (p *Parser) parseComments(blocks *goquery.Selection, log *logrus.Entry) []types.Comment {
	comments := make([]types.Comment, 0, blocks.Length())
	blocks.Each(func(_ int, block *goquery.Selection) {
		comments = append(comments, p.parseComment(block))
	})
	log.WithField("comments", len(comments)).Debug("Parsed comment thread")
	return comments
}

// parseComment decodes one comment. Uploader comments carry no id and no
// voting data; the discriminant is the marker phrase in the control cell.
func (p *Parser) parseComment(block *goquery.Selection) types.Comment {
	c := types.Comment{}

	header := block.Find(".c3").First()
	if t, ok := extract.ParseCommentTime(header.Text(), p.opts.Location); ok {
		c.PostedAt = t
	}
	if links := header.Find("a"); links.Length() > 0 {
		if name := extract.CleanText(links.First().Text()); name != "" {
			c.Commenter = strPtr(name)
		}
	}
	if edited := block.Find(".c8").First(); strings.Contains(edited.Text(), lastEditedLabel) {
		if t, ok := extract.ParseCommentTime(edited.Text(), p.opts.Location); ok {
			c.LastEditedAt = &t
		}
	}

	body := block.Find(".c6").First()
	c.Body = strings.TrimSpace(body.Text())

	controls := block.Find(".c4").First()
	if strings.Contains(controls.Text(), uploaderMarker) {
		c.IsUploader = true
		return c
	}

	if id, ok := body.Attr("id"); ok {
		if n, err := strconv.ParseInt(strings.TrimPrefix(id, commentIDPrefix), 10, 64); err == nil {
			c.ID = &n
		}
	}

	c.Votes = commentVotes(block)
	applyVoteControls(controls, &c)
	return c
}

// commentVotes decodes the score and the vote breakdown.
func commentVotes(block *goquery.Selection) *types.CommentVotes {
	votes := &types.CommentVotes{Voters: []types.Voter{}}
	votes.Score = int(extract.ParseInt(block.Find(".c5 span").First().Text()))

	breakdown := block.Find(".c7").First()
	text := extract.CleanText(breakdown.Text())
	votes.Base = ParseVoteBase(text)

	breakdown.Find("span").Each(func(_ int, span *goquery.Selection) {
		m := voterPattern.FindStringSubmatch(extract.CleanText(span.Text()))
		if m == nil {
			return
		}
		score, _ := strconv.Atoi(m[2])
		votes.Voters = append(votes.Voters, types.Voter{Name: m[1], Score: score})
	})

	if m := moreVotersPattern.FindStringSubmatch(text); m != nil {
		votes.MoreVoters, _ = strconv.Atoi(m[1])
	}
	return votes
}

// ParseVoteBase reads the base score from a vote breakdown. "Base +N" yields
// N; otherwise the last signed integer of the first comma-separated segment
// is used with any unit suffix ignored, so "Score +120%" yields 120.
func ParseVoteBase(text string) int {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, basePrefix); i >= 0 {
		return int(extract.ParseInt(text[i+len(basePrefix):]))
	}
	first, _, _ := strings.Cut(text, ",")
	nums := signedIntPattern.FindAllString(first, -1)
	if len(nums) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(nums[len(nums)-1], "+"))
	if err != nil {
		return 0
	}
	return n
}

// applyVoteControls classifies voting capability: no controls means not
// voteable, a lone "Edit" control means the viewer's own comment, anything
// else is voteable with the active direction marked by a style attribute.
func applyVoteControls(controls *goquery.Selection, c *types.Comment) {
	if controls.Length() == 0 {
		return
	}
	links := controls.Find("a")
	if links.Length() == 1 && strings.TrimSpace(links.Text()) == editControlLabel {
		c.IsMyComment = true
		return
	}
	if links.Length() == 0 {
		return
	}

	c.Voteable = true
	if isActiveControl(links.Eq(0)) {
		c.MyVote = intPtr(types.VoteUp)
	} else if isActiveControl(links.Eq(1)) {
		c.MyVote = intPtr(types.VoteDown)
	}
}

// isActiveControl reports whether a vote link carries a non-empty style.
func isActiveControl(link *goquery.Selection) bool {
	style, _ := link.Attr("style")
	return strings.TrimSpace(style) != ""
}
