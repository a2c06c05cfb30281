package validator

import (
	"errors"
	"os"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sheetQuery struct {
	Sheet string `form:"sheet" binding:"omitempty,sheet_variant"`
	Query string `json:"q" binding:"required,min=2"`
}

func TestMain(m *testing.M) {
	Setup()
	os.Exit(m.Run())
}

func TestSheetVariantTag(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		ok    bool
	}{
		{"empty", "", true},
		{"exact", "Toetsen", true},
		{"case insensitive", "associate degree", true},
		{"unknown", "Bijvakken", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(sheetQuery{Sheet: tt.sheet, Query: "bm"})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			fields := TranslateErrors(err)
			assert.Equal(t, "sheet must name a known sheet", fields["sheet"])
		})
	}
}

func TestTranslateErrors_UsesTagNames(t *testing.T) {
	err := binding.Validator.ValidateStruct(sheetQuery{Query: "b"})
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Contains(t, fields, "q")
	assert.NotContains(t, fields, "Query")
}

func TestTranslateErrors_PlainError(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	assert.Equal(t, map[string]string{"detail": "unexpected EOF"}, fields)
}
