package cloudformation

import (
	"encoding/json"
	"slices"

	"github.com/talves/gameservers/pkg/construct"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
)

type (
	dashboardBody struct {
		Widgets []dashboardWidget `json:"widgets"`
	}

	dashboardWidget struct {
		Type       string          `json:"type"`
		X          int             `json:"x"`
		Y          int             `json:"y"`
		Width      int             `json:"width"`
		Height     int             `json:"height"`
		Properties graphProperties `json:"properties"`
	}

	graphProperties struct {
		View    string     `json:"view"`
		Title   string     `json:"title"`
		Region  string     `json:"region"`
		Stacked bool       `json:"stacked"`
		Metrics [][]any    `json:"metrics"`
		YAxis   *graphAxes `json:"yAxis,omitempty"`
		Period  int        `json:"period,omitempty"`
	}

	graphAxes struct {
		Left  *graphAxis `json:"left,omitempty"`
		Right *graphAxis `json:"right,omitempty"`
	}

	graphAxis struct {
		Min       *float64 `json:"min,omitempty"`
		Max       *float64 `json:"max,omitempty"`
		ShowUnits bool     `json:"showUnits"`
	}

	metricOptions struct {
		Stat   string `json:"stat"`
		Period int    `json:"period,omitempty"`
		YAxis  string `json:"yAxis,omitempty"`
	}
)

const defaultMetricStatistic = "Average"

func renderDashboard(sc *stackContext, r construct.Resource) (*Resource, error) {
	d := r.(*resources.Dashboard)
	vars := sc.newSubVariables()

	positions := d.Layout()
	body := dashboardBody{Widgets: make([]dashboardWidget, 0, len(d.Widgets))}
	for i, w := range d.Widgets {
		width, height := w.Size()
		props := graphProperties{
			View:    "timeSeries",
			Title:   escapeSub(w.Title),
			Region:  "${" + PSEUDO_REGION + "}",
			Metrics: [][]any{},
			Period:  seconds(w.Period),
		}
		for _, m := range w.Left {
			row, err := metricRow(vars, m, "")
			if err != nil {
				return nil, err
			}
			props.Metrics = append(props.Metrics, row)
		}
		for _, m := range w.Right {
			row, err := metricRow(vars, m, "right")
			if err != nil {
				return nil, err
			}
			props.Metrics = append(props.Metrics, row)
		}
		if w.LeftYAxis != nil || w.RightYAxis != nil {
			props.YAxis = &graphAxes{Left: axis(w.LeftYAxis), Right: axis(w.RightYAxis)}
		}
		body.Widgets = append(body.Widgets, dashboardWidget{
			Type:       "metric",
			X:          positions[i].X,
			Y:          positions[i].Y,
			Width:      width,
			Height:     height,
			Properties: props,
		})
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Type: "AWS::CloudWatch::Dashboard",
		Properties: map[string]any{
			"DashboardName": d.DashboardName,
			"DashboardBody": Sub(string(b), vars.vars),
		},
	}, nil
}

// metricRow renders a metric in the dashboard's array form:
// `[namespace, name, dimension name, dimension value, ..., options]`.
func metricRow(vars *subVariables, m resources.Metric, yAxis string) ([]any, error) {
	row := []any{escapeSub(m.Namespace), escapeSub(m.MetricName)}

	names := make([]string, 0, len(m.Dimensions))
	for name := range m.Dimensions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		value, err := vars.placeholder(m.Dimensions[name])
		if err != nil {
			return nil, err
		}
		row = append(row, escapeSub(name), value)
	}

	stat := m.Statistic
	if stat == "" {
		stat = defaultMetricStatistic
	}
	return append(row, metricOptions{Stat: stat, Period: seconds(m.Period), YAxis: yAxis}), nil
}

func axis(a *resources.YAxis) *graphAxis {
	if a == nil {
		return nil
	}
	return &graphAxis{Min: a.Min, Max: a.Max, ShowUnits: a.ShowUnits}
}
