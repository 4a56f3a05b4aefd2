package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/slides"
)

func TestProposalHandler_Create_PPTX(t *testing.T) {
	mockSvc := new(MockProposalService)
	handler := NewProposalHandler(mockSvc)

	deck := []byte("PK\x03\x04deck")
	mockSvc.On("Render", mock.Anything, []string{"t-1", "t-2"}).Return(deck, nil)

	w := httptest.NewRecorder()
	handler.Create(w, jsonRequest(http.MethodPost, "/proposals", `{"meetingIds":["t-1","t-2"]}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, slides.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="discovery-proposal.pptx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, deck, w.Body.Bytes())
	mockSvc.AssertNotCalled(t, "Outline", mock.Anything, mock.Anything)
}

func TestProposalHandler_Create_JSON(t *testing.T) {
	mockSvc := new(MockProposalService)
	handler := NewProposalHandler(mockSvc)

	outline := []slides.Slide{{Title: "Problem", Bullets: []string{"Checkout is slow"}}}
	mockSvc.On("Outline", mock.Anything, []string{"t-1"}).Return(outline, nil)

	w := httptest.NewRecorder()
	handler.Create(w, jsonRequest(http.MethodPost, "/proposals", `{"meetingIds":["t-1"],"format":"json"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ProposalOutlineResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, outline, resp.Slides)
}

func TestProposalHandler_Create_BadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"no ids":         `{"meetingIds":[]}`,
		"unknown format": `{"meetingIds":["t-1"],"format":"pdf"}`,
		"invalid json":   `[`,
	} {
		t.Run(name, func(t *testing.T) {
			handler := NewProposalHandler(new(MockProposalService))

			w := httptest.NewRecorder()
			handler.Create(w, jsonRequest(http.MethodPost, "/proposals", body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestProposalHandler_Create_NoTranscripts(t *testing.T) {
	mockSvc := new(MockProposalService)
	handler := NewProposalHandler(mockSvc)

	mockSvc.On("Render", mock.Anything, []string{"missing"}).Return(nil, domain.ErrTranscriptNotFound)

	w := httptest.NewRecorder()
	handler.Create(w, jsonRequest(http.MethodPost, "/proposals", `{"meetingIds":["missing"]}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
