package codec

import (
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/chainforms/contract-framework/metrics"
)

// LoggedDiagnostics reports unknown-type fallbacks through the component
// logger and the codec metrics, so permissive passthrough is never silent.
type LoggedDiagnostics struct {
	lggr    logger.SugaredLogger
	metrics metrics.CodecMetrics
}

var _ Diagnostics = &LoggedDiagnostics{}

func NewLoggedDiagnostics(lggr logger.Logger, m metrics.CodecMetrics) *LoggedDiagnostics {
	return &LoggedDiagnostics{
		lggr:    logger.Sugared(lggr).Named("Codec"),
		metrics: m,
	}
}

func (d *LoggedDiagnostics) UnknownType(parameter, typ string, value any) {
	d.lggr.Warnw("Unrecognized native type, passing value through", "parameter", parameter, "type", typ, "value", value)
	if d.metrics != nil {
		d.metrics.IncrementUnknownTypes(typ)
	}
}

// ParseError counts a rejected submission value. The error itself is
// surfaced to the caller; this only keeps the failure observable.
func (d *LoggedDiagnostics) ParseError(parameter, typ string) {
	d.lggr.Debugw("Rejected parameter value", "parameter", parameter, "type", typ)
	if d.metrics != nil {
		d.metrics.IncrementParseErrors()
	}
}
