package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobRequestSkills(t *testing.T) {
	cases := []struct {
		name string
		body string
		set  bool
		want []string
	}{
		{"absent", `{}`, false, nil},
		{"comma separated", `{"skills":"React, Node.js ,, Go"}`, true, []string{"React", "Node.js", "Go"}},
		{"list", `{"skills":["React","Go"]}`, true, []string{"React", "Go"}},
		{"null clears", `{"skills":null}`, true, []string{}},
		{"empty string", `{"skills":""}`, true, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req jobRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			require.Equal(t, tc.set, req.Skills.set)
			require.Equal(t, tc.want, req.Skills.values)
		})
	}

	var req jobRequest
	err := json.Unmarshal([]byte(`{"skills":42}`), &req)
	var fe *fieldError
	require.ErrorAs(t, err, &fe)
}

func TestJobRequestDeadline(t *testing.T) {
	var req jobRequest
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2030-01-31"}`), &req))
	require.Equal(t, time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC), *req.input().Deadline)

	req = jobRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2030-01-31T10:00:00+02:00"}`), &req))
	require.Equal(t, time.Date(2030, 1, 31, 8, 0, 0, 0, time.UTC), *req.patch().Deadline)

	for _, body := range []string{`{"deadline":null}`, `{"deadline":""}`} {
		req = jobRequest{}
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		patch := req.patch()
		require.True(t, patch.ClearDeadline)
		require.Nil(t, patch.Deadline)
	}

	req = jobRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Go dev"}`), &req))
	patch := req.patch()
	require.False(t, patch.ClearDeadline)
	require.Nil(t, patch.Skills)
	require.Equal(t, "Go dev", *patch.Title)
	require.Nil(t, patch.Location)

	req = jobRequest{}
	err := json.Unmarshal([]byte(`{"deadline":"next week"}`), &req)
	var fe *fieldError
	require.ErrorAs(t, err, &fe)
}
