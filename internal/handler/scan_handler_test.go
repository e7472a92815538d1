package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-qr-api/internal/dto"
	"github.com/noah-isme/absensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/absensi-qr-api/pkg/errors"
	"github.com/noah-isme/absensi-qr-api/pkg/response"
)

type scanServiceMock struct {
	resp    *dto.ScanResponse
	err     error
	payload string
}

func (m *scanServiceMock) ProcessScan(_ context.Context, payload string) (*dto.ScanResponse, error) {
	m.payload = payload
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func postScan(t *testing.T, handler *ScanHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/scan", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler.Scan(c)
	return w
}

func TestScanHandlerSuccess(t *testing.T) {
	mock := &scanServiceMock{resp: &dto.ScanResponse{
		PersonCode: "12345",
		PersonName: "Budi Santoso",
		Category:   models.PersonCategoryStudent,
		Kind:       models.AttendanceKindEntry,
		Status:     models.AttendanceStatusOnTime,
		Message:    "Absen masuk dicatat: Hadir",
	}}
	handler := NewScanHandler(mock)

	body, _ := json.Marshal(dto.ScanRequest{Payload: "S12345"})
	w := postScan(t, handler, body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "S12345", mock.payload)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestScanHandlerInvalidBody(t *testing.T) {
	handler := NewScanHandler(&scanServiceMock{})
	w := postScan(t, handler, []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanHandlerRefusalStatusPassthrough(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"outside window", appErrors.Clone(appErrors.ErrOutsideWindow, "Di luar jam absen"), http.StatusUnprocessableEntity},
		{"already recorded", appErrors.Clone(appErrors.ErrAlreadyRecorded, "Absen masuk sudah tercatat hari ini"), http.StatusConflict},
		{"unknown identity", appErrors.Clone(appErrors.ErrUnknownIdentity, "Kode QR tidak terdaftar"), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewScanHandler(&scanServiceMock{err: tc.err})
			body, _ := json.Marshal(dto.ScanRequest{Payload: "S12345"})
			w := postScan(t, handler, body)

			assert.Equal(t, tc.status, w.Code)
			var envelope response.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			require.NotNil(t, envelope.Error)
		})
	}
}
