package resources

import (
	"time"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/sanitization/aws"
)

const (
	LOG_GROUP_TYPE = "log_group"
	DASHBOARD_TYPE = "cloudwatch_dashboard"

	// DASHBOARD_GRID_WIDTH is the number of columns in a dashboard row.
	DASHBOARD_GRID_WIDTH  = 24
	DEFAULT_WIDGET_WIDTH  = 6
	DEFAULT_WIDGET_HEIGHT = 6
)

type (
	LogGroup struct {
		Name            string
		Namespace       string
		LogGroupName    construct.Value
		RetentionInDays int
		RemovalPolicy   RemovalPolicy
	}

	Dashboard struct {
		Name          string
		Namespace     string
		DashboardName string
		Widgets       []*GraphWidget
	}

	GraphWidget struct {
		Title  string
		Width  int
		Height int
		// Period is the default period for all metrics of the widget, zero leaves it to each metric.
		Period     time.Duration
		Left       []Metric
		Right      []Metric
		LeftYAxis  *YAxis
		RightYAxis *YAxis
	}

	Metric struct {
		Namespace  string
		MetricName string
		Dimensions map[string]construct.Value
		// Statistic defaults to Average.
		Statistic string
		Period    time.Duration
	}

	YAxis struct {
		Min       *float64
		Max       *float64
		ShowUnits bool
	}
)

// RetentionOneWeek is the retention of the game server log groups.
const RetentionOneWeek = 7

func (lg *LogGroup) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      LOG_GROUP_TYPE,
		Namespace: lg.Namespace,
		Name:      lg.Name,
	}
}

func (d *Dashboard) Id() construct.ResourceId {
	return construct.ResourceId{
		Provider:  AWS_PROVIDER,
		Type:      DASHBOARD_TYPE,
		Namespace: d.Namespace,
		Name:      d.Name,
	}
}

func (d *Dashboard) SetDashboardName(name string) {
	d.DashboardName = aws.DashboardSanitizer.Apply(name)
}

func (d *Dashboard) AddWidgets(widgets ...*GraphWidget) {
	d.Widgets = append(d.Widgets, widgets...)
}

// WidgetPosition is the location of a widget on the dashboard grid.
type WidgetPosition struct {
	X, Y int
}

// Layout places the widgets left to right, wrapping to a new row when a widget would not fit in the
// remaining columns. A row is as tall as its tallest widget.
func (d *Dashboard) Layout() []WidgetPosition {
	positions := make([]WidgetPosition, len(d.Widgets))
	x, y, rowHeight := 0, 0, 0
	for i, w := range d.Widgets {
		width, height := w.Size()
		if x+width > DASHBOARD_GRID_WIDTH {
			x = 0
			y += rowHeight
			rowHeight = 0
		}
		positions[i] = WidgetPosition{X: x, Y: y}
		x += width
		if height > rowHeight {
			rowHeight = height
		}
	}
	return positions
}

// Size returns the width and height of the widget with defaults applied.
func (w *GraphWidget) Size() (width, height int) {
	width, height = w.Width, w.Height
	if width <= 0 {
		width = DEFAULT_WIDGET_WIDTH
	}
	if width > DASHBOARD_GRID_WIDTH {
		width = DASHBOARD_GRID_WIDTH
	}
	if height <= 0 {
		height = DEFAULT_WIDGET_HEIGHT
	}
	return width, height
}
