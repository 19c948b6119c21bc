package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const src = `package apierrors

import "net/http"

var (
	ErrFormNotFound = DefinedError{Code: 3201, StatusCode: http.StatusNotFound, Err: "form not found", RuErr: "Форма не найдена"}
	ErrBadRequest   = DefinedError{Code: 3205, Err: "bad " + "request"}
	notAnError      = 5
)
`

func TestGetRows(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "apierrors.go", src, 0)
	require.NoError(t, err)

	rows := getRows(f)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0][0], "3201")
	assert.Contains(t, rows[0][1], "404")
	assert.Contains(t, rows[0][2], "form not found")
	assert.Contains(t, rows[0][3], "Форма не найдена")

	assert.Contains(t, rows[1][1], "400")
	assert.Contains(t, rows[1][2], "bad request")
	assert.Empty(t, rows[1][3])
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, "409", getStatusCode("StatusConflict"))
	assert.Equal(t, "402", getStatusCode("StatusPaymentRequired"))
	assert.Equal(t, "413", getStatusCode("StatusRequestEntityTooLarge"))
	assert.Equal(t, "?", getStatusCode("StatusUnknown"))
}

func TestWriteDocs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDocs(&buf, [][]string{{"**1101**", "401 *StatusUnauthorized*", "`x`", "`y`"}}))
	assert.Contains(t, buf.String(), "# Перечень кодов ошибок")
	assert.Contains(t, buf.String(), "1101")
}
