package output

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/vsinha/capplan/pkg/application/dto"
)

// CapacityChartFile is written next to the CSV results when charts are enabled
const CapacityChartFile = "capacity_timeline.svg"

// CapacityChart lays out an SVG timeline of a plan: one row per committed
// expansion showing its build window, above a panel comparing available
// capacity with demand for every year
type CapacityChart struct {
	Width        int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	PanelHeight  int
	FirstYear    int
	LastYear     int
}

// NewCapacityChart sizes a chart for result
func NewCapacityChart(result *dto.PlanResult) *CapacityChart {
	last := result.LastYear
	for _, c := range result.Commitments {
		if c.AvailableYear > last {
			last = c.AvailableYear
		}
	}
	return &CapacityChart{
		Width:        1200,
		MarginLeft:   200,
		MarginTop:    60,
		MarginRight:  60,
		MarginBottom: 50,
		RowHeight:    28,
		PanelHeight:  220,
		FirstYear:    result.FirstYear,
		LastYear:     last,
	}
}

// Height is the total drawing height for the given number of commitments
func (cc *CapacityChart) Height(rows int) int {
	return cc.MarginTop + rows*cc.RowHeight + 40 + cc.PanelHeight + cc.MarginBottom
}

// GenerateSVG renders the chart
func (cc *CapacityChart) GenerateSVG(result *dto.PlanResult) string {
	if len(result.Plans) == 0 {
		return cc.generateEmptyChart()
	}

	rows := len(result.Commitments)
	height := cc.Height(rows)

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, cc.Width, height))
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.year-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.build-bar { fill: #f39c12; stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.online-bar { fill: #27ae60; stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.capacity-bar { fill: #3498db; }`)
	svg.WriteString(`.demand-line { stroke: #c0392b; stroke-width: 2; fill: none; }`)
	svg.WriteString(`</style></defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, cc.Width, height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Capacity Expansion Timeline (initial capacity %s)</text>`,
		cc.Width/2, humanize.Comma(int64(result.InitialCapacity))))

	cc.drawYearGrid(&svg, height)
	cc.drawCommitments(&svg, result.Commitments)
	cc.drawCapacityPanel(&svg, result, cc.MarginTop+rows*cc.RowHeight+40)
	cc.drawLegend(&svg, height)

	svg.WriteString(`</svg>`)
	return svg.String()
}

// yearX maps the start of a year to an x coordinate
func (cc *CapacityChart) yearX(year int) int {
	span := cc.LastYear - cc.FirstYear + 1
	chartWidth := cc.Width - cc.MarginLeft - cc.MarginRight
	return cc.MarginLeft + (year-cc.FirstYear)*chartWidth/span
}

func (cc *CapacityChart) yearWidth() int {
	span := cc.LastYear - cc.FirstYear + 1
	return (cc.Width - cc.MarginLeft - cc.MarginRight) / span
}

func (cc *CapacityChart) drawYearGrid(svg *strings.Builder, height int) {
	bottom := height - cc.MarginBottom
	for y := cc.FirstYear; y <= cc.LastYear+1; y++ {
		x := cc.yearX(y)
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, cc.MarginTop-10, x, bottom))
		if y <= cc.LastYear {
			svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="year-label" text-anchor="middle">%d</text>`,
				x+cc.yearWidth()/2, bottom+15, y))
		}
	}
}

// drawCommitments draws the build window of each expansion; zero build time
// expansions get an online marker only
func (cc *CapacityChart) drawCommitments(svg *strings.Builder, commitments []dto.Commitment) {
	for i, c := range commitments {
		rowY := cc.MarginTop + i*cc.RowHeight
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="label" text-anchor="end">%s</text>`,
			cc.MarginLeft-10, rowY+cc.RowHeight/2+4, html.EscapeString(string(c.Expansion))))

		barY := rowY + 4
		barH := cc.RowHeight - 8
		start := cc.yearX(c.CommitYear)
		end := cc.yearX(c.AvailableYear)
		if end > start {
			svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" class="build-bar"><title>%s built %d-%d</title></rect>`,
				start, barY, end-start, barH, html.EscapeString(string(c.Expansion)), c.CommitYear, c.AvailableYear-1))
		}
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" class="online-bar"><title>+%s units from %d</title></rect>`,
			end, barY, max(4, cc.yearWidth()/4), barH, humanize.Commaf(c.AddedCapacity), c.AvailableYear))
	}
}

// drawCapacityPanel draws available capacity as bars and demand as a line
func (cc *CapacityChart) drawCapacityPanel(svg *strings.Builder, result *dto.PlanResult, top int) {
	peak := 1.0
	for _, p := range result.Plans {
		peak = math.Max(peak, math.Max(p.AvailableCapacity, p.Demand))
	}
	bottom := top + cc.PanelHeight
	scale := func(v float64) int {
		return bottom - int(v/peak*float64(cc.PanelHeight))
	}

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="label" text-anchor="end">Capacity</text>`, cc.MarginLeft-10, top+12))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="year-label" text-anchor="end">%s</text>`,
		cc.MarginLeft-10, top+28, humanize.Commaf(math.Round(peak))))

	w := cc.yearWidth()
	var points []string
	for _, p := range result.Plans {
		x := cc.yearX(p.Year)
		y := scale(p.AvailableCapacity)
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" class="capacity-bar"><title>%d: capacity %s, demand %s</title></rect>`,
			x+w/6, y, w*2/3, bottom-y, p.Year, humanize.Commaf(p.AvailableCapacity), humanize.Commaf(p.Demand)))
		points = append(points, fmt.Sprintf("%d,%d", x+w/2, scale(p.Demand)))
	}
	svg.WriteString(fmt.Sprintf(`<polyline points="%s" class="demand-line"/>`, strings.Join(points, " ")))
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, cc.MarginLeft, bottom, cc.Width-cc.MarginRight, bottom))
}

func (cc *CapacityChart) drawLegend(svg *strings.Builder, height int) {
	legendY := height - 12
	items := []struct {
		class string
		label string
	}{
		{"build-bar", "Under construction"},
		{"online-bar", "Capacity online"},
		{"capacity-bar", "Available capacity"},
	}
	x := cc.MarginLeft
	for _, item := range items {
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="15" height="10" class="%s"/>`, x, legendY-9, item.class))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="label">%s</text>`, x+20, legendY, item.label))
		x += 170
	}
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="demand-line"/>`, x, legendY-4, x+15, legendY-4))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="label">Demand</text>`, x+20, legendY))
}

func (cc *CapacityChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="120" xmlns="http://www.w3.org/2000/svg">`+
		`<rect width="%d" height="120" fill="white"/>`+
		`<text x="%d" y="60" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" fill="#666">No planning years to display</text>`+
		`</svg>`, cc.Width, cc.Width, cc.Width/2)
}
