package recorder

// NoopRecorder is used when no recorder backend is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(_ *TradeRecord) error    { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *DaySnapshot) error { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
