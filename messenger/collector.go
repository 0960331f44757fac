package messenger

import "github.com/prometheus/client_golang/prometheus"

var (
	sentDesc = prometheus.NewDesc(
		"courier_messenger_sent_total",
		"Envelopes emitted, including requests and replies.",
		[]string{"messenger"}, nil,
	)
	receivedDesc = prometheus.NewDesc(
		"courier_messenger_received_total",
		"Envelopes handed to the messenger by its receptor.",
		[]string{"messenger"}, nil,
	)
	requestsDesc = prometheus.NewDesc(
		"courier_messenger_requests_total",
		"Requests issued.",
		[]string{"messenger"}, nil,
	)
	repliesDesc = prometheus.NewDesc(
		"courier_messenger_replies_total",
		"Pending requests settled by a reply.",
		[]string{"messenger"}, nil,
	)
	timeoutsDesc = prometheus.NewDesc(
		"courier_messenger_timeouts_total",
		"Pending requests rejected by their timer.",
		[]string{"messenger"}, nil,
	)
	droppedDesc = prometheus.NewDesc(
		"courier_messenger_dropped_total",
		"Inbound envelopes that matched nothing, and replies that could not be sent.",
		[]string{"messenger"}, nil,
	)
	pendingDesc = prometheus.NewDesc(
		"courier_messenger_pending",
		"Requests awaiting a reply.",
		[]string{"messenger"}, nil,
	)
)

// Collector exposes messenger metrics to Prometheus.
type Collector struct {
	messengers []*Messenger
}

// NewCollector returns a Collector reporting every given messenger, labelled
// by name.
func NewCollector(messengers ...*Messenger) *Collector {
	return &Collector{messengers: messengers}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sentDesc
	ch <- receivedDesc
	ch <- requestsDesc
	ch <- repliesDesc
	ch <- timeoutsDesc
	ch <- droppedDesc
	ch <- pendingDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.messengers {
		s := m.Metrics()
		name := m.Name()

		ch <- prometheus.MustNewConstMetric(sentDesc, prometheus.CounterValue, float64(s.Sent), name)
		ch <- prometheus.MustNewConstMetric(receivedDesc, prometheus.CounterValue, float64(s.Received), name)
		ch <- prometheus.MustNewConstMetric(requestsDesc, prometheus.CounterValue, float64(s.Requests), name)
		ch <- prometheus.MustNewConstMetric(repliesDesc, prometheus.CounterValue, float64(s.Replies), name)
		ch <- prometheus.MustNewConstMetric(timeoutsDesc, prometheus.CounterValue, float64(s.Timeouts), name)
		ch <- prometheus.MustNewConstMetric(droppedDesc, prometheus.CounterValue, float64(s.Dropped), name)
		ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(s.Pending), name)
	}
}
