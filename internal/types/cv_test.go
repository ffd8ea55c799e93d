package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCV_DefaultShape(t *testing.T) {
	cv := NewCV("abc123", "CV Software Developer")

	assert.Equal(t, "abc123", cv.ID)
	assert.Equal(t, "CV Software Developer", cv.FileName)
	assert.NotNil(t, cv.EducationHistory)
	assert.NotNil(t, cv.WorkExperience)
	assert.NotNil(t, cv.Certifications)
	assert.NotNil(t, cv.Awards)

	data, err := json.Marshal(cv)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"educationHistory":[]`)
	assert.Contains(t, string(data), `"namaLengkap":""`)
}

func TestCV_DecodeRemotePayload(t *testing.T) {
	payload := `{
		"id": "abc123",
		"fileName": "My CV",
		"createdAt": "2024-03-01T10:00:00Z",
		"updatedAt": 1714557600000,
		"personalInfo": {"namaLengkap": "Budi", "email": "budi@example.com"},
		"objective": "<p>Hello</p>",
		"educationHistory": [{"institution": "ITB", "currentlyStudying": true, "endYear": "2020"}],
		"workExperience": null,
		"skills": {"hardSkills": "Go, SQL"}
	}`

	var cv CV
	require.NoError(t, json.Unmarshal([]byte(payload), &cv))
	cv.Normalize()

	assert.Equal(t, "Budi", cv.PersonalInfo.NamaLengkap)
	assert.Equal(t, "<p>Hello</p>", cv.Objective)
	require.Len(t, cv.EducationHistory, 1)
	assert.Equal(t, "", cv.EducationHistory[0].EffectiveEndYear())
	assert.Equal(t, "2020", cv.EducationHistory[0].EndYear)
	assert.NotNil(t, cv.WorkExperience)
	assert.Equal(t, "Go, SQL", cv.Skills.HardSkills)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), cv.CreatedAt.Time.UTC())
	assert.Equal(t, time.UnixMilli(1714557600000).UTC(), cv.UpdatedAt.Time)
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339", input: `"2024-05-01T08:30:00Z"`, want: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)},
		{name: "no zone", input: `"2024-05-01T08:30:00.123"`, want: time.Date(2024, 5, 1, 8, 30, 0, 123000000, time.UTC)},
		{name: "date only", input: `"2024-05-01"`, want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "epoch millis", input: `1714552200000`, want: time.UnixMilli(1714552200000).UTC()},
		{name: "empty string", input: `""`},
		{name: "null", input: `null`},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_MarshalZero(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))
}

func TestCV_LastModified(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	cv := CV{CreatedAt: NewTimestamp(created)}
	assert.Equal(t, created, cv.LastModified())

	cv.UpdatedAt = NewTimestamp(updated)
	assert.Equal(t, updated, cv.LastModified())

	summary := cv.Summary()
	assert.Equal(t, updated, summary.LastModified)
}

func TestCV_CloneIsIndependent(t *testing.T) {
	cv := NewCV("id", "name")
	cv.Awards = append(cv.Awards, Award{Name: "Best"})

	clone := cv.Clone()
	clone.Awards[0].Name = "Changed"

	assert.Equal(t, "Best", cv.Awards[0].Name)
}
