package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

type countingMetrics struct {
	parseErrors int
	unknown     int
	lastType    string
}

func (m *countingMetrics) IncrementParseErrors() { m.parseErrors++ }

func (m *countingMetrics) IncrementUnknownTypes(typ string) {
	m.unknown++
	m.lastType = typ
}

func TestLoggedDiagnostics(t *testing.T) {
	lggr, observed := logger.TestObserved(t, zapcore.DebugLevel)
	m := &countingMetrics{}
	d := NewLoggedDiagnostics(lggr, m)

	d.UnknownType("weird", "function", "0xab")
	assert.Equal(t, 1, m.unknown)
	assert.Equal(t, "function", m.lastType)

	d.ParseError("amount", "uint256")
	assert.Equal(t, 1, m.parseErrors)

	require.Equal(t, 2, observed.Len())
	assert.Contains(t, observed.All()[1].Message, "Rejected parameter value")
}
