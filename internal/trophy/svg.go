package trophy

import (
	"fmt"
	"strconv"
	"strings"

	"gh-trophy/internal/template"
)

// Grid geometry. Cards are fixed-size squares laid out row-major.
const (
	cardWidth  = 110
	cardHeight = 110

	// DefaultColumn and DefaultRow apply when the request does not override
	// the layout.
	DefaultColumn = 6
	DefaultRow    = 3
)

const fontFamily = "Segoe UI, Ubuntu, Sans-Serif"

// cardTemplate renders one trophy panel at its grid offset.
const cardTemplate = `<g transform="translate({{.X}}, {{.Y}})">
<rect x="4" y="4" width="102" height="102" rx="6" fill="{{.Background}}" stroke="{{.FrameColor}}" stroke-width="{{.FrameWidth}}"/>
<circle cx="55" cy="40" r="20" fill="none" stroke="{{.RankColor}}" stroke-width="3"/>
<text x="55" y="47" text-anchor="middle" font-family="` + fontFamily + `" font-size="16" font-weight="bold" fill="{{.RankColor}}">{{.Rank}}</text>
<text x="55" y="80" text-anchor="middle" font-family="` + fontFamily + `" font-size="13" font-weight="bold" fill="{{.TitleColor}}">{{.Title}}</text>
<text x="55" y="97" text-anchor="middle" font-family="` + fontFamily + `" font-size="10" fill="{{.TextColor}}">{{.Score}} pt</text>
</g>
`

// emptyTemplate is shown when filtering leaves nothing to display.
const emptyTemplate = `<g>
<rect x="4" y="4" width="102" height="102" rx="6" fill="{{.Background}}" stroke="{{.FrameColor}}" stroke-width="{{.FrameWidth}}"/>
<text x="55" y="58" text-anchor="middle" font-family="` + fontFamily + `" font-size="11" fill="{{.TextColor}}">No trophies</text>
</g>
`

// RenderOptions controls the grid layout and palette.
type RenderOptions struct {
	Theme        Theme
	Column       int
	Row          int
	MarginWidth  int
	MarginHeight int
	NoBackground bool
	NoFrame      bool
}

// RenderGrid lays the trophies out row-major and returns the SVG document.
// The grid shows at most Column*Row trophies; the canvas shrinks to fit when
// fewer are available.
func RenderGrid(trophies []Trophy, opts RenderOptions) (string, error) {
	column := opts.Column
	if column < 1 {
		column = DefaultColumn
	}
	row := opts.Row
	if row < 1 {
		row = DefaultRow
	}
	if max := column * row; len(trophies) > max {
		trophies = trophies[:max]
	}

	background := opts.Theme.Background
	if opts.NoBackground {
		background = "none"
	}
	frameWidth := "2"
	if opts.NoFrame {
		frameWidth = "0"
	}

	if len(trophies) == 0 {
		return renderEmpty(opts.Theme, background, frameWidth)
	}

	cols := len(trophies)
	if cols > column {
		cols = column
	}
	rows := (len(trophies) + column - 1) / column
	width := cols*cardWidth + (cols-1)*opts.MarginWidth
	height := rows*cardHeight + (rows-1)*opts.MarginHeight

	var b strings.Builder
	fmt.Fprintf(&b, "<svg width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\" fill=\"none\" xmlns=\"http://www.w3.org/2000/svg\">\n",
		width, height, width, height)
	for i, t := range trophies {
		x := (i % column) * (cardWidth + opts.MarginWidth)
		y := (i / column) * (cardHeight + opts.MarginHeight)
		card, err := template.Render("trophy card", cardTemplate, map[string]string{
			"X":          strconv.Itoa(x),
			"Y":          strconv.Itoa(y),
			"Background": background,
			"FrameColor": opts.Theme.Frame,
			"FrameWidth": frameWidth,
			"RankColor":  rankColor(t.Rank),
			"Rank":       string(t.Rank),
			"TitleColor": opts.Theme.Title,
			"Title":      t.Title,
			"TextColor":  opts.Theme.Text,
			"Score":      strconv.Itoa(t.Score),
		})
		if err != nil {
			return "", fmt.Errorf("failed to render trophy card '%s': %w", t.Title, err)
		}
		b.WriteString(card)
	}
	b.WriteString("</svg>\n")
	return b.String(), nil
}

// renderEmpty produces a single placeholder panel.
func renderEmpty(theme Theme, background, frameWidth string) (string, error) {
	card, err := template.Render("empty panel", emptyTemplate, map[string]string{
		"Background": background,
		"FrameColor": theme.Frame,
		"FrameWidth": frameWidth,
		"TextColor":  theme.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render empty panel: %w", err)
	}
	return fmt.Sprintf("<svg width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\" fill=\"none\" xmlns=\"http://www.w3.org/2000/svg\">\n%s</svg>\n",
		cardWidth, cardHeight, cardWidth, cardHeight, card), nil
}
