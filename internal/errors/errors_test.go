package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsInnermostCode(t *testing.T) {
	base := NoData("sheet has no rows")
	wrapped := Wrap(fmt.Errorf("reading upload: %w", base), "parse failed")

	assert.Equal(t, CodeNoData, GetCode(wrapped))
	assert.Equal(t, "parse failed", Message(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	err := Wrapf(stderrors.New("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "step 3: boom", err.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestMissingColumns(t *testing.T) {
	err := Wrap(MissingColumns([]string{"Region", "Publisher_Norm"}, []string{"State", "School"}), "institutions upload rejected")

	assert.Equal(t, CodeMissingColumns, GetCode(err))
	mc, ok := AsMissingColumns(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Region", "Publisher_Norm"}, mc.Missing)
	assert.Equal(t, []string{"State", "School"}, mc.Found)
	assert.Equal(t, "Missing required columns: Region, Publisher_Norm. Found columns: State, School", mc.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unreadable", UnreadableInput("bad zip", nil), http.StatusBadRequest},
		{"missing columns", MissingColumns([]string{"A"}, nil), http.StatusBadRequest},
		{"not found", NotFound("section"), http.StatusNotFound},
		{"expired", UploadExpired("gone"), http.StatusGone},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"plain", stderrors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
