package handler

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileHeader(name, contentType string) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: h}
}

func TestIsCSVUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"text/csv any name", "export", "text/csv", true},
		{"text/csv with charset", "a.csv", "text/csv; charset=utf-8", true},
		{"excel type csv name", "a.CSV", "application/vnd.ms-excel", true},
		{"octet stream csv name", "a.csv", "application/octet-stream", true},
		{"no type csv name", "a.csv", "", true},
		{"plain text txt name", "a.txt", "text/plain", false},
		{"xlsx", "a.xlsx", xlsxContentType, false},
		{"pdf named csv", "a.csv", "application/pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCSVUpload(fileHeader(tt.filename, tt.contentType)))
		})
	}
}
