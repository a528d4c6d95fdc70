package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/merchstats/pkg/pagination"
)

type sampleInput struct {
	Path    string `validate:"required,filepath_ext"`
	Month   string `validate:"omitempty,monthtok"`
	JoinKey string `validate:"omitempty,joinkey"`
	Cursor  string `validate:"omitempty,cursor"`
	TopN    int    `validate:"omitempty,min=1,max=100"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tok, err := pagination.EncodeCursor(pagination.Cursor{Did: "ds", Ps: 10})
	require.NoError(t, err)

	msg := ValidateStruct(sampleInput{
		Path:    "/data/metrics.csv",
		Month:   "2025-06",
		JoinKey: "merchant",
		Cursor:  tok,
		TopN:    10,
	})
	require.Empty(t, msg)
}

func TestValidateStruct_Messages(t *testing.T) {
	msg := ValidateStruct(sampleInput{})
	require.Contains(t, msg, "VALIDATION: path is required")

	msg = ValidateStruct(sampleInput{Path: "/data/metrics.parquet"})
	require.Contains(t, msg, "supported file")

	msg = ValidateStruct(sampleInput{Path: "/d/m.csv", Month: "2025/06"})
	require.Contains(t, msg, "YYYY-MM")

	msg = ValidateStruct(sampleInput{Path: "/d/m.csv", JoinKey: "agent"})
	require.Contains(t, msg, "join_key")

	msg = ValidateStruct(sampleInput{Path: "/d/m.csv", Cursor: "@@@"})
	require.Contains(t, msg, "CURSOR_INVALID")

	msg = ValidateStruct(sampleInput{Path: "/d/m.csv", TopN: 500})
	require.Contains(t, msg, "max=100")
}

func TestMonthTok_Sentinel(t *testing.T) {
	msg := ValidateStruct(sampleInput{Path: "/d/m.csv", Month: "unspecified"})
	require.Empty(t, msg)
}
