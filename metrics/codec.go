package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promParameterParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_codec_parameter_parse_errors",
		Help: "The total number of submitted values that failed to convert to their native type",
	}, []string{"ecosystem"})
	promUnknownTypes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_codec_unknown_types",
		Help: "The total number of unrecognized native types passed through permissively",
	}, []string{"ecosystem", "type"})
)

// CodecMetrics records parse failures and permissive fallbacks. Unknown-type
// fallbacks are non-fatal but must stay observable.
type CodecMetrics interface {
	IncrementParseErrors()
	IncrementUnknownTypes(typ string)
}

var _ CodecMetrics = &codecMetrics{}

type codecMetrics struct {
	ecosystem string
}

func NewCodecMetrics(ecosystem string) CodecMetrics {
	return &codecMetrics{ecosystem: ecosystem}
}

func (m *codecMetrics) IncrementParseErrors() {
	promParameterParseErrors.WithLabelValues(m.ecosystem).Inc()
}

func (m *codecMetrics) IncrementUnknownTypes(typ string) {
	promUnknownTypes.WithLabelValues(m.ecosystem, typ).Inc()
}
