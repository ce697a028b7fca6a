package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet-relay/internal/profiles"
	"tweet-relay/internal/profiles/writer"
)

func Test_GetProfile(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		reader *fakeReader
		chk    func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			desc:   "Happy path - stored fields returned",
			reader: &fakeReader{rec: testProfile()},
			chk: func(t *testing.T, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, rr.Code)

				var rec profiles.Record
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
				assert.Equal(t, *testProfile(), rec)
			},
		},
		{
			desc:   "Missing profile - 404",
			reader: &fakeReader{err: profiles.ErrNotFound},
			chk: func(t *testing.T, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, rr.Code)

				var resp detailResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "Profile not found", resp.Detail)
			},
		},
		{
			desc:   "Datastore failure - 500, detail withheld",
			reader: &fakeReader{err: errors.New("cluster unreachable")},
			chk: func(t *testing.T, rr *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, rr.Code)

				var resp detailResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "Internal Server Error", resp.Detail)
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			router := newTestRouter(t, tc.reader, &fakeWriter{}, &fakeTweets{})

			req := httptest.NewRequest(http.MethodGet, "/api/profile/user-1", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			tc.chk(t, rr)
		})
	}
}

func Test_UpdateProfile(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		body   string
		writer func(rec *profiles.Record) *fakeWriter
		chk    func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter)
	}{
		{
			desc: "Happy path - only present fields written",
			body: `{"bio":"new bio","location":"berlin"}`,
			chk: func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter) {
				require.Equal(t, http.StatusOK, rr.Code)

				require.Len(t, w.updateCalls, 1)
				assert.ElementsMatch(t, []writer.Update{
					{Field: "bio", Value: "new bio"},
					{Field: "location", Value: "berlin"},
				}, w.updateCalls[0])

				var rec profiles.Record
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
				assert.Equal(t, "new bio", rec.Bio)
				assert.Equal(t, "berlin", rec.Location)
				// untouched fields keep their stored values
				assert.Equal(t, testProfile().Username, rec.Username)
				assert.Equal(t, testProfile().Website, rec.Website)
			},
		},
		{
			desc: "Present-but-empty field overwrites",
			body: `{"bio":""}`,
			chk: func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter) {
				require.Equal(t, http.StatusOK, rr.Code)

				require.Len(t, w.updateCalls, 1)
				assert.Equal(t, []writer.Update{{Field: "bio", Value: ""}}, w.updateCalls[0])
			},
		},
		{
			desc: "Empty patch - no-op",
			body: `{}`,
			chk: func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter) {
				require.Equal(t, http.StatusOK, rr.Code)
				require.Len(t, w.updateCalls, 1)
				assert.Empty(t, w.updateCalls[0])
			},
		},
		{
			desc: "Malformed body - 400",
			body: `{"bio":`,
			chk: func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter) {
				require.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Empty(t, w.updateCalls)
			},
		},
		{
			desc: "Datastore write failure - 400 with message",
			body: `{"bio":"new bio"}`,
			writer: func(rec *profiles.Record) *fakeWriter {
				return &fakeWriter{rec: rec, updateErr: errors.New("update rejected")}
			},
			chk: func(t *testing.T, rr *httptest.ResponseRecorder, w *fakeWriter) {
				require.Equal(t, http.StatusBadRequest, rr.Code)

				var resp detailResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "update rejected", resp.Detail)
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			rec := testProfile()

			w := &fakeWriter{rec: rec}
			if tc.writer != nil {
				w = tc.writer(rec)
			}

			router := newTestRouter(t, &fakeReader{rec: rec}, w, &fakeTweets{})

			req := httptest.NewRequest(http.MethodPatch, "/api/profile/user-1", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			tc.chk(t, rr, w)
		})
	}
}

// applying the same partial update twice yields the same final state
func Test_UpdateProfile_Idempotent(t *testing.T) {
	rec := testProfile()
	router := newTestRouter(t, &fakeReader{rec: rec}, &fakeWriter{rec: rec}, &fakeTweets{})

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPatch, "/api/profile/user-1", strings.NewReader(`{"bio":"same bio"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		bodies = append(bodies, rr.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, "same bio", rec.Bio)
}
