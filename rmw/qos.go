package rmw

// HistoryPolicy controls how many samples the middleware keeps per topic.
type HistoryPolicy int

const (
	HistoryKeepLast HistoryPolicy = iota
	HistoryKeepAll
)

// ReliabilityPolicy controls delivery guarantees.
type ReliabilityPolicy int

const (
	ReliabilityReliable ReliabilityPolicy = iota
	ReliabilityBestEffort
)

// DurabilityPolicy controls whether samples outlive their writer.
type DurabilityPolicy int

const (
	DurabilityVolatile DurabilityPolicy = iota
	DurabilityTransientLocal
)

// QoSProfile is the subset of DDS quality-of-service settings the client
// library exposes. Negotiation happens inside the middleware.
type QoSProfile struct {
	History     HistoryPolicy
	Depth       int
	Reliability ReliabilityPolicy
	Durability  DurabilityPolicy
}

// ProfileDefault matches the middleware defaults for plain topics.
var ProfileDefault = QoSProfile{
	History:     HistoryKeepLast,
	Depth:       10,
	Reliability: ReliabilityReliable,
	Durability:  DurabilityVolatile,
}

// ProfileParameterEvents is used for the per-node parameter_events topic.
var ProfileParameterEvents = QoSProfile{
	History:     HistoryKeepLast,
	Depth:       1000,
	Reliability: ReliabilityBestEffort,
	Durability:  DurabilityVolatile,
}

// ProfileServicesDefault is used for service clients and servers.
var ProfileServicesDefault = QoSProfile{
	History:     HistoryKeepLast,
	Depth:       10,
	Reliability: ReliabilityReliable,
	Durability:  DurabilityVolatile,
}
