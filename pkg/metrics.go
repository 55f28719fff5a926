package pkg

import "github.com/prometheus/client_golang/prometheus"

var (
	SignalingSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_server_sessions",
		Help: "A gauge of websocket sessions connected to the signaling server.",
	})

	SignalingRoomsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_server_rooms",
		Help: "A gauge of rooms currently held in the registry.",
	})

	SignalingSignalsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_server_signals_relayed_total",
		Help: "A counter of signaling payloads relayed between peers.",
	})

	SignalingJoinRejectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_server_join_rejections_total",
		Help: "A counter of join requests refused by the room protocol.",
	})

	SignalingInFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_server_in_flight_requests",
		Help: "A gauge of requests being handled by the signaling server.",
	})

	SignalingRequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_server_requests_total",
		Help: "A counter for requests to the signaling server.",
	}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(
		SignalingSessionsGauge,
		SignalingRoomsGauge,
		SignalingSignalsCounter,
		SignalingJoinRejectionsCounter,
		SignalingInFlightGauge,
		SignalingRequestsCounter,
	)
}
