// Package dashboard serves the customer-service desk cards and charts.
package dashboard

// Sheet statuses counted by the cards.
const (
	StatusDelivered  = "Delivered"
	StatusProcessing = "Processing"
	StatusCancelled  = "Cancelled"
	StatusDuplicate  = "Duplicate"
)

const (
	LabelGlobalDelivery = "Global Delivery %"
	LabelMTDDelivery    = "MTD Delivery %"

	ChartDatasetName = "Customer Service Sheets"
	ChartTypeBar     = "bar"
	NotSet           = "Not Set"
)

// Rate is a number card value.
type Rate struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Dataset is one chart series.
type Dataset struct {
	Name   string  `json:"name"`
	Values []int64 `json:"values"`
}

// ChartSeries holds labels and their datasets.
type ChartSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// ChartData is the desk chart payload.
type ChartData struct {
	Data ChartSeries `json:"data"`
	Type string      `json:"type"`
}

// MarketerCount is the number of sheets attributed to one digital marketer.
type MarketerCount struct {
	Marketer string
	Count    int64
}
