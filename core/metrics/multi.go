package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSearchRun forwards the run to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSearchRun(run SearchRun) error {
	for _, s := range m.Sinks {
		if err := s.RecordSearchRun(run); err != nil {
			return err
		}
	}
	return nil
}

// RecordBid forwards bids to sinks implementing BidRecorder.
func (m *MultiSink) RecordBid(ev BidEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BidRecorder); ok {
			if err := rec.RecordBid(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAuctionResult forwards auction outcomes.
func (m *MultiSink) RecordAuctionResult(ev AuctionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AuctionRecorder); ok {
			if err := rec.RecordAuctionResult(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
