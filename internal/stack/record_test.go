package stack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct{}

func (testStruct) record(opts ...RecordOption) string {
	return Record(0, opts...)
}

func TestRecord(t *testing.T) {
	for _, tt := range []struct {
		name   string
		act    string
		prefix string
		suffix string
	}{
		{
			name:   "Full",
			act:    testStruct{}.record(),
			prefix: "github.com/sqlkit/sqlcore/internal/stack.testStruct.record(",
			suffix: "record_test.go:13)",
		},
		{
			name:   "NoPackagePath",
			act:    testStruct{}.record(PackagePath(false)),
			prefix: "stack.testStruct.record(",
			suffix: "record_test.go:13)",
		},
		{
			name:   "FileOnly",
			act:    testStruct{}.record(FunctionName(false)),
			prefix: "record_test.go:13",
			suffix: "record_test.go:13",
		},
		{
			name:   "NoLine",
			act:    testStruct{}.record(Line(false)),
			prefix: "github.com/sqlkit/sqlcore/internal/stack.testStruct.record(",
			suffix: "record_test.go)",
		},
		{
			name:   "FunctionOnly",
			act:    testStruct{}.record(FileName(false)),
			prefix: "github.com/sqlkit/sqlcore/internal/stack.testStruct.record",
			suffix: "testStruct.record",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, strings.HasPrefix(tt.act, tt.prefix), tt.act)
			require.True(t, strings.HasSuffix(tt.act, tt.suffix), tt.act)
		})
	}
}

func staticCall() string {
	return FunctionID("").String()
}

func TestFunctionID(t *testing.T) {
	require.Equal(t, "explicit", FunctionID("explicit").String())
	require.Equal(t, "github.com/sqlkit/sqlcore/internal/stack.staticCall", staticCall())
}
